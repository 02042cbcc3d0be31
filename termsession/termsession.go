// Package termsession owns one terminal's emulator state, PTY child, and
// event loop (spec.md §4.6, the Terminal Backend). It wraps
// github.com/danielgatis/go-headless-term's Terminal as the VTE/grid
// collaborator spec.md §1 names, mirroring the goroutine-per-session
// shape of the teacher's tab.Tab but replacing its direct blocking calls
// with a bounded, backpressure-aware event channel.
package termsession

import (
	"fmt"
	"os"
	"sync"
	"time"

	headlessterm "github.com/danielgatis/go-headless-term"

	"github.com/simpleterm/simpleterm/config"
	"github.com/simpleterm/simpleterm/keyenc"
	"github.com/simpleterm/simpleterm/mouseenc"
	"github.com/simpleterm/simpleterm/procinfo"
	"github.com/simpleterm/simpleterm/ptyproc"
)

const eventChannelCapacity = 256

const forcedTermEnv = "xterm-256color"

const maxScrollbackHardCap = 100000

// EventKind discriminates the outbound event union.
type EventKind int

const (
	EventWakeup EventKind = iota
	EventBell
	EventTitleChanged
	EventExit
)

// Event is what the UI thread drains from a Session's outbound channel.
type Event struct {
	Kind     EventKind
	Title    string
	ExitCode int
}

// Session owns the emulator, the PTY child, and the goroutines that bridge
// them to the outbound event channel.
type Session struct {
	Terminal *headlessterm.Terminal
	proc     *ptyproc.Process
	procInfo *procinfo.Getter

	mu sync.Mutex // guards Terminal access from outside the read loop

	events chan Event

	shutdownOnce sync.Once
	done         chan struct{}
}

// Start spawns the configured shell under a PTY and wires it to a fresh
// emulator instance. The child's initial working directory follows
// settings.WorkingDirectoryPolicy's "home" value (or an empty policy); for
// "last_session" the caller resolves the directory itself and calls
// StartIn.
func Start(settings *config.Settings, cols, rows uint16) (*Session, error) {
	return StartIn(settings, cols, rows, "")
}

// StartIn is Start with an explicit initial working directory override,
// used when settings.WorkingDirectoryPolicy is "last_session": the caller
// resolves that directory from the previously active tab's foreground
// process (procinfo, spec.md §4.5) and passes it here. A policy of
// "home"/"" ignores lastSessionDir; an explicit-path policy value
// overrides it.
func StartIn(settings *config.Settings, cols, rows uint16, lastSessionDir string) (*Session, error) {
	env := buildEnv(settings.Env)

	shellCfg := ptyproc.Shell{
		SourceRC: true,
		Dir:      resolveStartDir(settings.WorkingDirectoryPolicy, lastSessionDir),
	}
	switch settings.Shell.Kind {
	case config.ShellProgram, config.ShellWithArguments:
		shellCfg.Path = settings.Shell.Program
		shellCfg.Args = settings.Shell.Args
	}

	proc, err := ptyproc.Start(shellCfg, env, cols, rows)
	if err != nil {
		return nil, fmt.Errorf("termsession: start pty: %w", err)
	}

	s := &Session{
		proc:     proc,
		procInfo: procinfo.New(proc),
		events:   make(chan Event, eventChannelCapacity),
		done:     make(chan struct{}),
	}

	s.Terminal = headlessterm.New(
		headlessterm.WithSize(int(rows), int(cols)),
		headlessterm.WithResponse(proc),
		headlessterm.WithBell(s),
		headlessterm.WithTitle(s),
	)
	s.Terminal.SetMaxScrollback(clampScrollback(settings.ScrollbackCap))

	go s.readLoop()

	return s, nil
}

// resolveStartDir turns a config.Settings.WorkingDirectoryPolicy value into
// the directory ptyproc.Shell.Dir should carry. "" and "home" mean "let
// ptyproc default to the user's home"; "last_session" uses the caller's
// resolved previous-session directory; anything else is taken as an
// explicit path.
func resolveStartDir(policy, lastSessionDir string) string {
	switch policy {
	case "", "home":
		return ""
	case "last_session":
		return lastSessionDir
	default:
		return policy
	}
}

func clampScrollback(n int) int {
	if n <= 0 {
		return 10000
	}
	if n > maxScrollbackHardCap {
		return maxScrollbackHardCap
	}
	return n
}

// buildEnv merges the user-configured environment over the process
// environment, then unconditionally enforces TERM=xterm-256color.
func buildEnv(userEnv map[string]string) []string {
	merged := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				merged[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	for k, v := range userEnv {
		merged[k] = v
	}
	merged["TERM"] = forcedTermEnv

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	return env
}

// readLoop feeds PTY bytes to the emulator and posts a Wakeup after each
// chunk. When the PTY read fails (child exited or was closed), it reads
// the exit code and posts Exit.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.proc.Read(buf)
		if err != nil || n == 0 {
			// The PTY read can fail a moment before ptyproc's Wait goroutine
			// has recorded the exit status, so give it up to a second.
			exited, code := s.proc.HasExited()
			for i := 0; !exited && i < 200; i++ {
				time.Sleep(5 * time.Millisecond)
				exited, code = s.proc.HasExited()
			}
			s.postExit(code)
			return
		}

		s.mu.Lock()
		s.Terminal.Write(buf[:n])
		s.mu.Unlock()

		s.postWakeup()
	}
}

// postWakeup enqueues a Wakeup, dropping it if the channel is full — the
// next Wakeup conveys the same "something changed" information.
func (s *Session) postWakeup() {
	select {
	case s.events <- Event{Kind: EventWakeup}:
	default:
	}
}

// postKeepLatest enqueues ev, force-overwriting the oldest queued event if
// the channel is full, so title changes and the exit notice are never lost.
func (s *Session) postKeepLatest(ev Event) {
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *Session) postExit(code int) {
	s.postKeepLatest(Event{Kind: EventExit, ExitCode: code})
}

// Ring implements headlessterm.BellProvider.
func (s *Session) Ring() {
	s.postWakeup()
	select {
	case s.events <- Event{Kind: EventBell}:
	default:
	}
}

// SetTitle implements headlessterm.TitleProvider.
func (s *Session) SetTitle(title string) {
	s.postKeepLatest(Event{Kind: EventTitleChanged, Title: title})
}

// PushTitle implements headlessterm.TitleProvider. The title stack is not
// user-observable in this emulator's event surface; nothing to post.
func (s *Session) PushTitle() {}

// PopTitle implements headlessterm.TitleProvider.
func (s *Session) PopTitle() {}

// Events returns the channel the UI thread drains.
func (s *Session) Events() <-chan Event {
	return s.events
}

// PostWakeup lets other components (the cursor-blink timer in interaction)
// share this session's Wakeup channel instead of each owning one.
func (s *Session) PostWakeup() {
	s.postWakeup()
}

// Write enqueues bytes to be sent to the PTY.
func (s *Session) Write(data []byte) error {
	_, err := s.proc.Write(data)
	return err
}

// WriteString enqueues a string to be sent to the PTY.
func (s *Session) WriteString(str string) error {
	return s.Write([]byte(str))
}

// Resize updates both the PTY window size and the emulator's grid
// dimensions.
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	s.Terminal.Resize(int(rows), int(cols))
	s.mu.Unlock()
	return s.proc.Resize(cols, rows)
}

// KillForegroundProcess sends SIGKILL to this session's foreground process
// group (spec.md §4.5's kill_current_process) — e.g. to stop a runaway job
// without tearing down the shell that launched it.
func (s *Session) KillForegroundProcess() error {
	return s.procInfo.KillCurrentProcess()
}

// KillChildProcess kills the spawned shell directly, regardless of which
// process is currently in the foreground (spec.md §4.5's
// kill_child_process).
func (s *Session) KillChildProcess() error {
	return s.procInfo.KillChildProcess()
}

// Shutdown terminates the PTY child and stops the read loop. Safe to call
// more than once.
func (s *Session) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.proc.Close()
		close(s.done)
	})
	return err
}

// Done is closed once Shutdown has run.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// KeyEncMode translates the emulator's live mode bitset into keyenc.Mode,
// the GUI-agnostic subset the keyboard encoder reads (spec.md §4.2).
func (s *Session) KeyEncMode() keyenc.Mode {
	var mode keyenc.Mode
	s.WithLock(func(t *headlessterm.Terminal) {
		if t.HasMode(headlessterm.ModeCursorKeys) {
			mode |= keyenc.AppCursor
		}
		if t.HasMode(headlessterm.ModeSwapScreenAndSetRestoreCursor) {
			mode |= keyenc.AltScreen
		}
	})
	return mode
}

// MouseEncMode translates the emulator's live mode bitset into
// mouseenc.Mode, the GUI-agnostic subset the mouse encoder reads
// (spec.md §4.3).
func (s *Session) MouseEncMode() mouseenc.Mode {
	var mode mouseenc.Mode
	s.WithLock(func(t *headlessterm.Terminal) {
		if t.HasMode(headlessterm.ModeReportMouseClicks) {
			mode |= mouseenc.MouseMode
		}
		if t.HasMode(headlessterm.ModeReportCellMouseMotion) {
			mode |= mouseenc.MouseDrag
		}
		if t.HasMode(headlessterm.ModeReportAllMouseMotion) {
			mode |= mouseenc.MouseMotion
		}
		if t.HasMode(headlessterm.ModeSGRMouse) {
			mode |= mouseenc.SGRMouse
		}
		if t.HasMode(headlessterm.ModeUTF8Mouse) {
			mode |= mouseenc.UTF8Mouse
		}
		if t.HasMode(headlessterm.ModeSwapScreenAndSetRestoreCursor) {
			mode |= mouseenc.AltScreen
		}
		if t.HasMode(headlessterm.ModeAlternateScroll) {
			mode |= mouseenc.AlternateScroll
		}
	})
	return mode
}

// SelectionText returns the live selection's text and whether one is
// active, used by copy-on-select and Cmd/Ctrl+C.
func (s *Session) SelectionText() (string, bool) {
	var text string
	var active bool
	s.WithLock(func(t *headlessterm.Terminal) {
		sel := t.GetSelection()
		active = sel.Active
		if active {
			text = t.GetSelectedText()
		}
	})
	return text, active
}

// SetSelection writes a resolved selection range into the emulator.
func (s *Session) SetSelection(start, end headlessterm.Position) {
	s.WithLock(func(t *headlessterm.Terminal) {
		t.SetSelection(start, end)
	})
}

// ClearSelection drops the emulator's current selection.
func (s *Session) ClearSelection() {
	s.WithLock(func(t *headlessterm.Terminal) {
		t.ClearSelection()
	})
}

// SelectAll selects the entire live grid.
func (s *Session) SelectAll() {
	s.WithLock(func(t *headlessterm.Terminal) {
		rows, cols := t.Rows(), t.Cols()
		t.SetSelection(headlessterm.Position{Row: 0, Col: 0}, headlessterm.Position{Row: rows - 1, Col: cols})
	})
}

// HistorySize returns the current scrollback line count, for scrollbar
// geometry.
func (s *Session) HistorySize() int {
	var n int
	s.WithLock(func(t *headlessterm.Terminal) { n = t.ScrollbackLen() })
	return n
}

// CursorBlinking reports whether the emulator's current cursor style
// blinks, for BlinkMode == BlinkTerminalControlled.
func (s *Session) CursorBlinking() bool {
	return cursorBlinkingFor2(s)
}

func cursorBlinkingFor2(s *Session) bool {
	var blinking bool
	s.WithLock(func(t *headlessterm.Terminal) {
		style := t.CursorStyle()
		blinking = style == headlessterm.CursorStyleBlinkingBlock ||
			style == headlessterm.CursorStyleBlinkingUnderline ||
			style == headlessterm.CursorStyleBlinkingBar
	})
	return blinking
}

// Title returns the emulator's current window title.
func (s *Session) Title() string {
	var title string
	s.WithLock(func(t *headlessterm.Terminal) { title = t.Title() })
	return title
}

// ProcessInfo returns the foreground-process tracker (spec.md §4.5)
// wrapping this session's PTY.
func (s *Session) ProcessInfo() *procinfo.Getter {
	return s.procInfo
}

// RefreshProcessInfo refreshes the cached foreground-process snapshot from
// the system process table, then layers in any OSC-7 working directory the
// shell itself has reported (which take precedence, since the shell knows
// its own logical cwd even across su/sshfs-style indirection that gopsutil
// can't see). Cheap enough to call on demand (tab title fallback, new-tab
// cwd inheritance) but deliberately not on every frame.
func (s *Session) RefreshProcessInfo() {
	s.procInfo.Load()
	var cwd string
	s.WithLock(func(t *headlessterm.Terminal) { cwd = t.WorkingDirectoryPath() })
	if cwd != "" {
		s.procInfo.SetShellCwd(cwd)
	}
}

// WithLock runs fn with the emulator locked, for callers (snapshot) that
// need a consistent read of cells/cursor/selection alongside the read
// loop's writes. fn must not block or call back into the UI.
func (s *Session) WithLock(fn func(t *headlessterm.Terminal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Terminal)
}
