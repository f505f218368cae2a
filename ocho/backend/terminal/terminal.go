package terminal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-ocho/ocho/audio"
	"github.com/valerio/go-ocho/ocho/backend"
	"github.com/valerio/go-ocho/ocho/backend/terminal/render"
	"github.com/valerio/go-ocho/ocho/debug"
	"github.com/valerio/go-ocho/ocho/display"
	"github.com/valerio/go-ocho/ocho/input"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	screenRows     = display.TerminalScreenRows
	registerHeight = 9
	disasmHeight   = 11
	minTermWidth   = width + 2 + display.TerminalSidebarWidth
	minTermHeight  = screenRows + display.TerminalLogRows + 3
)

// Key expiry timeout. Terminals only report key presses, a key counts as held
// while its auto-repeat keeps arriving within this window.
const keyTimeout = 150 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	prevLogger *slog.Logger
	config     backend.BackendConfig
	eventQueue []backend.InputEvent // Collect events to return

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame

	// For accessing emulator state
	debugProvider backend.DebugDataProvider

	// Snapshot state
	currentFrame *video.FrameBuffer
	now          func() time.Time
}

var (
	_ backend.Backend       = (*Backend)(nil)
	_ backend.ActionHandler = (*Backend)(nil)
	_ audio.Beeper          = (*Backend)(nil)
)

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		logLevel: slog.LevelInfo,
		now:      time.Now,
	}
}

// NewWithScreen creates a terminal backend drawing on an existing screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	t := New()
	t.screen = screen
	return t
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.eventQueue = make([]backend.InputEvent, 0)
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}

	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Logs go to the log panel from now on, stderr belongs to the screen
	t.logBuffer = render.NewLogBuffer(200)
	t.prevLogger = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		t.logLevel = slog.LevelDebug
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := t.now()

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keys are currently active this frame
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if !t.activeKeys[act] {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}

	// Check for released keys (were active last frame but not this frame)
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	// Add non-game input events (pause, debug, etc)
	events = append(events, t.eventQueue...)
	t.eventQueue = t.eventQueue[:0]

	if !t.running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	if t.prevLogger != nil {
		slog.SetDefault(t.prevLogger)
		t.prevLogger = nil
	}
	return nil
}

// Beep rings the terminal bell.
func (t *Backend) Beep() {
	if t.screen == nil {
		return
	}
	if err := t.screen.Beep(); err != nil {
		slog.Debug("Terminal bell unavailable", "error", err)
	}
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if act, exists := keyMapping[ev.Key()]; exists {
		t.trigger(act, now)
		return
	}

	if ev.Key() == tcell.KeyRune {
		if act, exists := runeMapping[unicode.ToLower(ev.Rune())]; exists {
			t.trigger(act, now)
		}
	}
}

// trigger records a keypad key as held, or queues any other action as a press.
func (t *Backend) trigger(act action.Action, now time.Time) {
	info := action.GetInfo(act)
	if info.Category == action.CategoryGameInput {
		t.keyStates[act] = now
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping maps every single character key name of the default
// mappings to its rune.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	dividerX := width + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawScreen(frame)

	if t.config.ShowDebug && t.debugProvider != nil {
		data := t.debugProvider.ExtractDebugData()
		t.drawRegisters(data, rightPanelX, 1, rightPanelWidth)
		t.drawDisassembly(data, rightPanelX, registerHeight+3, rightPanelWidth)
	}

	logsY := screenRows + 3
	t.drawLogs(1, logsY, dividerX-1, termHeight-1-logsY)
}

// drawText writes s at (x, y), truncated to maxWidth cells.
func (t *Backend) drawText(x, y, maxWidth int, s string, style tcell.Style) {
	i := 0
	for _, ch := range s {
		if i >= maxWidth {
			break
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := 0; x < dividerX; x++ {
		t.screen.SetContent(x, screenRows+1, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, screenRows+1, '┤', nil, borderStyle)

	t.drawText(1, 0, dividerX-1, fmt.Sprintf(" %s ", t.config.Title), titleStyle)
	t.drawText(1, screenRows+2, dividerX-1, fmt.Sprintf(" Logs [%s] (-/+ filter) ", strings.ToUpper(t.logLevel.String())), titleStyle)

	if t.config.ShowDebug {
		startX := dividerX + 2
		t.drawText(startX, 0, termWidth-startX, " Registers ", titleStyle)
		t.drawText(startX, registerHeight+2, termWidth-startX, " Disassembly ", titleStyle)
	}

	help := " F10=debug SPACE=pause N=step O=frame F5=reset F9=snapshot ESC=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

// drawScreen packs two pixel rows into each terminal row with half blocks.
func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.GetPixel(uint(x), uint(y)) != 0
			bottom := frame.GetPixel(uint(x), uint(y+1)) != 0
			t.screen.SetContent(x, y/2+1, render.GetHalfBlockChar(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || width <= 0 {
		return
	}
	cpu := data.CPU

	lines := []string{
		fmt.Sprintf("Status: %s", strings.ToUpper(data.DebuggerState.String())),
	}
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", r, cpu.V[r])
		}
		lines = append(lines, sb.String())
	}
	lines = append(lines,
		fmt.Sprintf("PC:%03X  I:%03X  SP:%d", cpu.PC, cpu.I, cpu.SP),
		fmt.Sprintf("DT:%02X  ST:%02X  OP:%04X", cpu.DelayTimer, cpu.SoundTimer, cpu.Opcode),
		fmt.Sprintf("Cycles: %d", cpu.Cycles),
	)
	if cpu.WaitingForKey {
		lines = append(lines, "Waiting for key")
	} else if data.LastError != nil {
		lines = append(lines, data.LastError.Error())
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		if i >= registerHeight {
			break
		}
		t.drawText(startX, startY+i, width, line, style)
	}
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || data.Memory == nil || width <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		text := fmt.Sprintf("  %03X: %s", line.Address, line.Instruction)
		useStyle := style
		if line.IsCurrent {
			text = "→" + text[1:]
			useStyle = currentStyle
		}
		t.drawText(startX, startY+i, width, text, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, width, availableHeight int) {
	if width <= 0 || availableHeight <= 0 {
		return
	}

	allLogs := t.logBuffer.GetRecent(availableHeight * 4)
	logs := make([]render.LogEntry, 0, availableHeight)
	for _, entry := range allLogs {
		if entry.Level >= t.logLevel {
			logs = append(logs, entry)
			if len(logs) >= availableHeight {
				break
			}
		}
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, logEntry := range logs {
		style := infoStyle
		switch logEntry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		logText := render.FormatLogEntry(logEntry)
		if len(logText) > width && width > 3 {
			logText = logText[:width-3] + "..."
		}
		t.drawText(startX, startY+i, width, logText, style)
	}
}
