// Package roms bundles programs shipped with the interpreter.
package roms

import _ "embed"

// Demo draws the 16 font glyphs in two rows, waits for a key and starts over.
//
//go:embed demo.ch8
var Demo []byte
