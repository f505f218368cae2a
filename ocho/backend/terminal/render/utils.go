package render

// GetHalfBlockChar returns the character that draws two vertically stacked
// pixels in a single terminal cell, painted with the foreground color.
func GetHalfBlockChar(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
