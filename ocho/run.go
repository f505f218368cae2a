package ocho

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/valerio/go-ocho/ocho/audio"
	"github.com/valerio/go-ocho/ocho/backend"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/timing"
)

// errStop ends the run without reporting an error.
var errStop = errors.New("stop requested")

// Run drives emu one frame at a time: run the frame, hand a copy to b, apply the
// input events it returns, then wait for the limiter. It returns nil when the
// backend asks to quit, on SIGINT/SIGTERM, or when ctx is cancelled, and the
// emulation error otherwise.
func Run(ctx context.Context, emu Emulator, b backend.Backend, limiter timing.Limiter) error {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watchSignals(ctx)
	})
	g.Go(func() error {
		return loop(ctx, emu, b, limiter)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStop) {
		return err
	}
	return nil
}

func watchSignals(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case <-ctx.Done():
		return nil
	case sig := <-signals:
		slog.Info("Received signal, shutting down", "signal", sig)
		return errStop
	}
}

func loop(ctx context.Context, emu Emulator, b backend.Backend, limiter timing.Limiter) error {
	handler, _ := b.(backend.ActionHandler)
	limiter.Reset()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := emu.RunUntilFrame(); err != nil {
			return fmt.Errorf("emulation stopped: %w", err)
		}

		events, err := b.Update(emu.GetCurrentFrame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}

		for _, evt := range events {
			if evt.Action == action.EmulatorQuit {
				return errStop
			}

			emu.HandleAction(evt.Action, evt.Type)

			if _, isKey := action.KeyValue(evt.Action); !isKey && handler != nil && evt.Type == event.Press {
				handler.HandleAction(evt.Action)
			}
		}

		limiter.WaitForNextFrame()
	}
}

// BeeperFor returns the backend's own buzzer when it has one, or a beeper that
// logs each beep.
func BeeperFor(b backend.Backend) audio.Beeper {
	if beeper, ok := b.(audio.Beeper); ok {
		return beeper
	}
	return audio.NewLogBeeper(nil)
}
