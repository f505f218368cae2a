//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-ocho/ocho/backend"
	"github.com/valerio/go-ocho/ocho/debug"
	"github.com/valerio/go-ocho/ocho/display"
	"github.com/valerio/go-ocho/ocho/input"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig
	keys     *backend.KeyTracker
	pixels   []byte

	// Snapshot state
	currentFrame *video.FrameBuffer
}

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.ActionHandler = (*Backend)(nil)
)

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{
		pixels: make([]byte, video.FramebufferSize*display.RGBABytesPerPixel),
		keys:   backend.NewKeyTracker(),
	}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	scale := int32(config.Scale)
	if scale <= 0 {
		scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.running = true
	slog.Info("SDL2 backend initialized", "scale", scale)

	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	events := s.keys.Flush()
	if !s.running {
		return events, nil
	}

	s.currentFrame = frame
	if frame.NeedsRedraw() {
		if err := s.renderFrame(frame); err != nil {
			return events, err
		}
	}

	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// HandleAction processes backend-specific actions
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame)
	case action.EmulatorDebugToggle:
		slog.Info("Debug panels are only available in the terminal backend")
	}
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
		s.keys.Queue(backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

	case *sdl.WindowEvent:
		// key up events stop arriving once the window is in the background
		if e.Event == sdl.WINDOWEVENT_FOCUS_LOST {
			s.keys.ReleaseAll()
		}

	case *sdl.KeyboardEvent:
		act, exists := keyMapping[e.Keysym.Sym]
		if !exists {
			return
		}

		if action.GetInfo(act).Category == action.CategoryGameInput {
			switch e.Type {
			case sdl.KEYDOWN:
				s.keys.Down(act, e.Repeat != 0)
			case sdl.KEYUP:
				s.keys.Up(act)
			}
			return
		}

		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return
		}
		if act == action.EmulatorQuit {
			s.running = false
		}
		s.keys.Queue(backend.InputEvent{Action: act, Type: event.Press})
	}
}

// buildKeyMapping creates the SDL key mapping from default mappings.
// SDL keycodes of printable keys are their lowercase characters.
func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := map[sdl.Keycode]action.Action{}

	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[sdl.Keycode(r[0])] = act
		}
	}

	named := map[string]sdl.Keycode{
		"Space":  sdl.K_SPACE,
		"Escape": sdl.K_ESCAPE,
		"F5":     sdl.K_F5,
		"F9":     sdl.K_F9,
		"F10":    sdl.K_F10,
	}
	for keyName, code := range named {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[code] = act
		}
	}

	return mapping
}

// keyMapping maps SDL2 keys to actions
var keyMapping = buildKeyMapping()

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			color := uint32(frame.ColorAt(uint(x), uint(y)))
			dstIdx := (y*video.FramebufferWidth + x) * display.RGBABytesPerPixel

			// ABGR byte order for little-endian RGBA8888
			s.pixels[dstIdx] = byte(color >> display.RGBAAShift & display.RGBAColorMask)
			s.pixels[dstIdx+1] = byte(color >> display.RGBABShift & display.RGBAColorMask)
			s.pixels[dstIdx+2] = byte(color >> display.RGBAGShift & display.RGBAColorMask)
			s.pixels[dstIdx+3] = byte(color >> display.RGBARShift & display.RGBAColorMask)
		}
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}
