package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/go-ocho/ocho"
	"github.com/valerio/go-ocho/ocho/backend"
	"github.com/valerio/go-ocho/ocho/backend/headless"
	"github.com/valerio/go-ocho/ocho/backend/sdl2"
	"github.com/valerio/go-ocho/ocho/backend/terminal"
	"github.com/valerio/go-ocho/ocho/cpu"
	"github.com/valerio/go-ocho/ocho/display"
	"github.com/valerio/go-ocho/ocho/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "Ocho"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "ocho [options] [ROM file]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file (default: built-in demo)",
			EnvVar: "OCHO_ROM",
		},
		cli.BoolFlag{
			Name:   "headless",
			Usage:  "Run the emulator without a display, same as --backend headless",
			EnvVar: "OCHO_HEADLESS",
		},
		cli.IntFlag{
			Name:   "frames",
			Usage:  "Number of frames to run in headless mode (required for headless)",
			Value:  0,
			EnvVar: "OCHO_FRAMES",
		},
		cli.IntFlag{
			Name:   "snapshot-interval",
			Usage:  "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value:  0,
			EnvVar: "OCHO_SNAPSHOT_INTERVAL",
		},
		cli.StringFlag{
			Name:   "snapshot-dir",
			Usage:  "Directory to save frame snapshots (default: temp directory)",
			EnvVar: "OCHO_SNAPSHOT_DIR",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "Display backend: terminal, sdl2 or headless",
			Value:  "terminal",
			EnvVar: "OCHO_BACKEND",
		},
		cli.IntFlag{
			Name:   "hz",
			Usage:  "Instructions executed per second",
			Value:  timing.DefaultInstructionsPerSecond,
			EnvVar: "OCHO_HZ",
		},
		cli.StringFlag{
			Name:   "limiter",
			Usage:  "Frame pacing: ticker, adaptive or none",
			Value:  "ticker",
			EnvVar: "OCHO_LIMITER",
		},
		cli.Uint64Flag{
			Name:   "seed",
			Usage:  "Seed for the random number instruction (0 = random)",
			EnvVar: "OCHO_SEED",
		},
		cli.BoolFlag{
			Name:   "trace",
			Usage:  "Log every executed instruction (needs --debug)",
			EnvVar: "OCHO_TRACE",
		},
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "Enable debug logging and the debug panels",
			EnvVar: "OCHO_DEBUG",
		},
		cli.BoolTFlag{
			Name:   "quirk-load-store",
			Usage:  "Fx55/Fx65 advance I past the copied registers",
			EnvVar: "OCHO_QUIRK_LOAD_STORE",
		},
		cli.BoolFlag{
			Name:   "quirk-shift-vy",
			Usage:  "8xy6/8xyE shift Vy into Vx",
			EnvVar: "OCHO_QUIRK_SHIFT_VY",
		},
		cli.BoolFlag{
			Name:   "quirk-clip",
			Usage:  "Clip sprites at the screen edges instead of wrapping",
			EnvVar: "OCHO_QUIRK_CLIP",
		},
		cli.BoolFlag{
			Name:   "skip-unknown",
			Usage:  "Skip unknown instructions instead of halting",
			EnvVar: "OCHO_SKIP_UNKNOWN",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().Get(0)
	}

	config := configFromFlags(c)

	var emu *ocho.Chip8
	var err error
	if romPath == "" {
		slog.Info("No ROM given, running the demo")
		emu, err = ocho.New(config)
	} else {
		emu, err = ocho.NewWithFile(romPath, config)
	}
	if err != nil {
		return err
	}

	b, limiter, err := selectBackend(c, romPath)
	if err != nil {
		return err
	}

	err = b.Init(backend.BackendConfig{
		Title:         "Ocho",
		Scale:         display.DefaultPixelScale,
		ShowDebug:     c.Bool("debug"),
		DebugProvider: emu,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	emu.SetBeeper(ocho.BeeperFor(b))

	return ocho.Run(context.Background(), emu, b, limiter)
}

func configFromFlags(c *cli.Context) ocho.Config {
	config := ocho.DefaultConfig()
	config.InstructionsPerSecond = c.Int("hz")
	config.Seed = c.Uint64("seed")
	config.Trace = c.Bool("trace")
	config.Quirks.LoadStoreIncrementsI = c.BoolT("quirk-load-store")
	config.Quirks.ShiftUsesVY = c.Bool("quirk-shift-vy")
	config.Quirks.ClipSprites = c.Bool("quirk-clip")
	if c.Bool("skip-unknown") {
		config.Quirks.UnknownOpcode = cpu.UnknownOpcodeSkip
	}
	return config
}

func selectBackend(c *cli.Context, romPath string) (backend.Backend, timing.Limiter, error) {
	name := c.String("backend")
	if c.Bool("headless") {
		name = "headless"
	}

	limiter, ok := timing.New(c.String("limiter"))
	if !ok {
		return nil, nil, fmt.Errorf("unknown limiter %q", c.String("limiter"))
	}

	switch name {
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}

		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshotConfig), timing.NewNoOpLimiter(), nil
	case "terminal":
		return terminal.New(), limiter, nil
	case "sdl2":
		return sdl2.New(), limiter, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}
