package ocho

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ocho/ocho/audio"
	"github.com/valerio/go-ocho/ocho/backend"
	"github.com/valerio/go-ocho/ocho/backend/headless"
	"github.com/valerio/go-ocho/ocho/cpu"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/video"
)

// recordingBackend is a headless backend that also handles backend actions.
type recordingBackend struct {
	*headless.Backend
	actions []action.Action
	beeps   int
}

func (r *recordingBackend) HandleAction(act action.Action) {
	r.actions = append(r.actions, act)
}

func (r *recordingBackend) Beep() {
	r.beeps++
}

type failingBackend struct {
	*headless.Backend
}

var errDisplayGone = errors.New("display gone")

func (f *failingBackend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, errDisplayGone
}

func newHeadless(t *testing.T, frames int) *headless.Backend {
	t.Helper()
	h := headless.New(frames, headless.SnapshotConfig{})
	require.NoError(t, h.Init(backend.BackendConfig{Title: "test"}))
	return h
}

func TestRun_HeadlessFrames(t *testing.T) {
	e := newTestEmulator(t, 0x7001, 0x1200)
	h := newHeadless(t, 5)

	err := Run(context.Background(), e, h, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, h.FrameCount())
	assert.Equal(t, uint64(5), e.FrameCount())
	assert.Equal(t, uint8(25), e.machine.V(0))
}

func TestRun_StopsOnEmulationError(t *testing.T) {
	e := newTestEmulator(t, 0xFFFF)
	h := newHeadless(t, 0)

	err := Run(context.Background(), e, h, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, cpu.ErrUnknownOpcode)
	assert.Equal(t, 0, h.FrameCount())
}

func TestRun_StopsOnBackendError(t *testing.T) {
	e := newTestEmulator(t, 0x1200)
	b := &failingBackend{Backend: newHeadless(t, 0)}

	err := Run(context.Background(), e, b, nil)

	assert.ErrorIs(t, err, errDisplayGone)
}

func TestRun_ContextCancelled(t *testing.T) {
	e := newTestEmulator(t, 0x1200)
	h := newHeadless(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, e, h, nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, h.FrameCount())
}

func TestRun_ForwardsEvents(t *testing.T) {
	// LD V3, K ; JP 202
	e := newTestEmulator(t, 0xF30A, 0x1202)
	b := &recordingBackend{Backend: newHeadless(t, 3)}
	b.Script(1,
		backend.InputEvent{Action: action.Key7, Type: event.Press},
		backend.InputEvent{Action: action.EmulatorDebugToggle, Type: event.Press},
	)

	err := Run(context.Background(), e, b, nil)
	require.NoError(t, err)

	assert.Equal(t, uint8(7), e.machine.V(3), "keypad events reach the machine")
	assert.Equal(t, []action.Action{action.EmulatorDebugToggle}, b.actions, "only emulator actions reach the backend")
}

// tappingBackend reports a keypad key going down and up within the same poll.
type tappingBackend struct {
	*headless.Backend
	keys  *backend.KeyTracker
	tapAt int
	key   action.Action
}

func (b *tappingBackend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	quit, err := b.Backend.Update(frame)
	if b.FrameCount() == b.tapAt {
		b.keys.Down(b.key, false)
		b.keys.Up(b.key)
	}
	return append(b.keys.Flush(), quit...), err
}

func TestRun_ShortTapReachesKeyWait(t *testing.T) {
	// LD V3, K ; JP 202
	e := newTestEmulator(t, 0xF30A, 0x1202)
	b := &tappingBackend{
		Backend: newHeadless(t, 3),
		keys:    backend.NewKeyTracker(),
		tapAt:   1,
		key:     action.Key9,
	}

	require.NoError(t, Run(context.Background(), e, b, nil))

	assert.Equal(t, uint8(9), e.machine.V(3))
	assert.Equal(t, uint16(0x202), e.machine.PC())
	assert.False(t, e.machine.Keypad().IsPressed(9), "the tap is released a frame later")
}

func TestRun_QuitEventStopsBeforeRemainingEvents(t *testing.T) {
	e := newTestEmulator(t, 0x1200)
	b := &recordingBackend{Backend: newHeadless(t, 0)}
	b.Script(2,
		backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press},
		backend.InputEvent{Action: action.EmulatorSnapshot, Type: event.Press},
	)

	require.NoError(t, Run(context.Background(), e, b, nil))

	assert.Equal(t, 2, b.FrameCount())
	assert.Empty(t, b.actions)
}

func TestBeeperFor(t *testing.T) {
	b := &recordingBackend{Backend: newHeadless(t, 1)}
	BeeperFor(b).Beep()
	assert.Equal(t, 1, b.beeps)

	_, isLog := BeeperFor(newHeadless(t, 1)).(*audio.LogBeeper)
	assert.True(t, isLog)
}
