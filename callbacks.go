package main

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/simpleterm/simpleterm/appwindow"
	"github.com/simpleterm/simpleterm/hyperlink"
	"github.com/simpleterm/simpleterm/interaction"
	"github.com/simpleterm/simpleterm/keyenc"
	"github.com/simpleterm/simpleterm/mouseenc"
	"github.com/simpleterm/simpleterm/snapshot"
)

// registerCallbacks wires every GLFW input event to the keyboard/mouse
// encoders and the interaction package's chrome dispatch, grounded on the
// teacher's main.go SetKeyCallback/SetCharCallback/SetScrollCallback/
// SetMouseButtonCallback/SetCursorPosCallback/SetFramebufferSizeCallback
// registration shape.
func (a *app) registerCallbacks() {
	win := a.win.GLFW()

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		a.onKey(appwindow.Keystroke(key, mods, ""))
	})

	win.SetCharCallback(func(w *glfw.Window, char rune) {
		a.onChar(char)
	})

	win.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.onScroll(yoff)
	})

	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		a.onMouseButton(button, action, mods)
	})

	win.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		a.mouseX, a.mouseY = xpos, ypos
		a.onCursorMove(xpos, ypos)
	})

	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.win.SetViewport(width, height)
	})
}

// chromeOverrides resolves any configured custom hotkeys into the extra
// table interaction.Dispatch consults first. The pin/global hotkeys
// (spec.md §6) are OS-level shortcuts delivered outside window focus and
// have no Dispatch Action of their own, so no entries exist yet — kept as
// the hook for future per-binding customization.
func (a *app) chromeOverrides() map[interaction.Keybind]interaction.Action {
	return nil
}

func (a *app) onKey(k keyenc.Keystroke) {
	t := a.activeTab()
	if t == nil {
		return
	}

	findOpen := t.frame.Find.Open
	action, tabIdx := interaction.Dispatch(k, findOpen, a.chromeOverrides())
	if a.dispatchChrome(t, action, tabIdx) {
		return
	}

	optionAsMeta := a.settings.OptionAsMeta || !appwindow.IsMacPlatform()
	bytes, ok := keyenc.Encode(k, t.session.KeyEncMode(), optionAsMeta)
	if !ok {
		return
	}
	t.session.Write(bytes)
	t.frame.Blink.OnInput(time.Now())
	t.frame.Suppression.OnTerminalInput(time.Now(), t.offset != 0)
	t.offset = 0
}

// dispatchChrome executes a resolved chrome Action. It returns true when
// the keystroke was fully handled and must not also reach keyenc.Encode.
func (a *app) dispatchChrome(t *tab, action interaction.Action, tabIdx int) bool {
	switch action {
	case interaction.ActionNone:
		return false
	case interaction.ActionCopy:
		if text, ok := t.session.SelectionText(); ok {
			appwindow.ClipboardWrite(text)
			if !a.settings.KeepSelectionOnCopy {
				t.session.ClearSelection()
			}
			t.frame.Toast.Show("Copied to clipboard", time.Now())
		}
	case interaction.ActionPaste:
		t.session.WriteString(appwindow.ClipboardRead())
	case interaction.ActionSelectAll:
		t.session.SelectAll()
	case interaction.ActionFindOpen:
		t.frame.Find.OpenWith(nil)
	case interaction.ActionFindClose:
		t.frame.Find.Close()
	case interaction.ActionFindNext:
		t.frame.Find.Next()
	case interaction.ActionFindPrev:
		t.frame.Find.Prev()
	case interaction.ActionNewTab:
		a.openTab()
	case interaction.ActionCloseTab:
		for i, id := range a.manager.IDs() {
			if id == t.id {
				a.closeTab(i)
				break
			}
		}
	case interaction.ActionNextTab:
		a.manager.Next()
		a.syncWindowTitle()
	case interaction.ActionPrevTab:
		a.manager.Prev()
		a.syncWindowTitle()
	case interaction.ActionSwitchToTab:
		a.manager.Select(tabIdx - 1)
		a.syncWindowTitle()
	default:
		return false
	}
	return true
}

// onChar handles plain text input: printable characters arrive here, not
// through onKey, so control/navigation keys never double-deliver bytes.
func (a *app) onChar(char rune) {
	t := a.activeTab()
	if t == nil {
		return
	}
	t.session.WriteString(string(char))
	t.frame.Blink.OnInput(time.Now())
	t.frame.Suppression.OnTerminalInput(time.Now(), t.offset != 0)
	t.offset = 0
}

// onScroll converts a wheel event into lines scrolled, honoring mouse
// reporting (when active) ahead of the scrollback viewport, and the
// alternate-scroll arrow-key fallback in the alternate screen.
func (a *app) onScroll(yoff float64) {
	t := a.activeTab()
	if t == nil {
		return
	}

	ev := t.frame.Suppression.Apply(time.Now(), interaction.PhaseMoved, false)
	if ev.Ignore {
		if ev.ZeroAccum {
			t.frame.Scroll.Reset()
		}
		return
	}

	lines := interaction.LinesFromDelta(yoff, false, float64(a.cellH), a.settings.ScrollMultiplier)
	delta := t.frame.Scroll.Consume(lines)
	if delta == 0 {
		return
	}

	mode := t.session.MouseEncMode()
	if mode&mouseenc.MouseMode != 0 {
		for _, report := range mouseenc.EncodeScroll(mode, delta, mouseenc.Modifiers{}) {
			t.session.Write(report)
		}
		return
	}
	if escapes := mouseenc.EncodeAlternateScrollArrows(mode, delta, a.settings.AlternateScroll, false); escapes != nil {
		for _, esc := range escapes {
			t.session.Write(esc)
		}
		return
	}

	t.offset = clampOffset(t.offset+delta, t.session.HistorySize())
}

func (a *app) onMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	t := a.activeTab()
	if t == nil {
		return
	}

	fbw, fbh := a.win.GetFramebufferSize()
	point := mouseenc.HitTest(a.mouseX, a.mouseY, float64(a.cellW), float64(a.cellH), t.cols, t.rows, t.offset)
	mode := t.session.MouseEncMode()

	if mode&mouseenc.MouseMode != 0 && !hasShift(mods) {
		if b, ok := mouseenc.EncodeButton(mode, mouseButtonFor(button), action == glfw.Press, point.Col, point.Line, modifiersFor(mods)); ok {
			t.session.Write(b)
			return
		}
	}

	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		scrollGeom := interaction.ComputeScrollbarGeometry(float64(fbh), t.rows, t.session.HistorySize(), t.offset, false)
		if scrollGeom.Visible && a.mouseX >= float64(fbw-interaction.ScrollbarWidth) {
			t.frame.ScrollDrag.Begin(a.mouseY, scrollGeom)
			return
		}
		if mods&glfw.ModControl != 0 {
			a.openURLAt(t, point.Line, point.Col)
			return
		}
		t.frame.Selection.Begin(time.Now(), point.Line, point.Col)
		return
	}

	t.frame.ScrollDrag.End()
	if a.settings.CopyOnSelect {
		if text, ok := t.session.SelectionText(); ok {
			appwindow.ClipboardWrite(text)
		}
	}
}

func (a *app) onCursorMove(xpos, ypos float64) {
	t := a.activeTab()
	if t == nil {
		return
	}

	if t.frame.ScrollDrag.Active {
		_, fbh := a.win.GetFramebufferSize()
		geom := interaction.ComputeScrollbarGeometry(float64(fbh), t.rows, t.session.HistorySize(), t.offset, false)
		newTop := t.frame.ScrollDrag.Drag(ypos)
		t.offset = interaction.DisplayOffsetForThumbTop(geom, newTop, t.session.HistorySize())
		return
	}

	point := mouseenc.HitTest(xpos, ypos, float64(a.cellW), float64(a.cellH), t.cols, t.rows, t.offset)
	mode := t.session.MouseEncMode()
	if mode&(mouseenc.MouseMotion|mouseenc.MouseDrag) != 0 {
		if b, ok := mouseenc.EncodeMotion(mode, mouseenc.ButtonLeft, point.Col, point.Line, mouseenc.Modifiers{}); ok {
			t.session.Write(b)
		}
		return
	}

	t.frame.Selection.Drag(point.Line, point.Col)
}

func mouseButtonFor(b glfw.MouseButton) mouseenc.Button {
	switch b {
	case glfw.MouseButtonLeft:
		return mouseenc.ButtonLeft
	case glfw.MouseButtonMiddle:
		return mouseenc.ButtonMiddle
	case glfw.MouseButtonRight:
		return mouseenc.ButtonRight
	default:
		return mouseenc.ButtonOther
	}
}

func modifiersFor(mods glfw.ModifierKey) mouseenc.Modifiers {
	return mouseenc.Modifiers{
		Shift:   hasShift(mods),
		Alt:     mods&glfw.ModAlt != 0,
		Control: mods&glfw.ModControl != 0,
	}
}

func hasShift(mods glfw.ModifierKey) bool {
	return mods&glfw.ModShift != 0
}

// snapLineSource adapts a snapshot's resolved rows to hyperlink.LineSource.
// It has no OSC-8 URI to offer (snapshot.Cell doesn't carry one), so the
// resolver's explicit-hyperlink step always misses here and falls through
// to URL/path-regex detection, which covers the common case.
type snapLineSource struct {
	snap *snapshot.Snapshot
}

func (s snapLineSource) Cell(line, col int) (hyperlink.Cell, bool) {
	if line < 0 || line >= len(s.snap.Rows) {
		return hyperlink.Cell{}, false
	}
	row := s.snap.Rows[line]
	if col < 0 || col >= len(row) {
		return hyperlink.Cell{}, false
	}
	c := row[col]
	return hyperlink.Cell{Char: c.Char, WideSpacer: c.Flags&snapshot.FlagWideCharSpacer != 0}, true
}

func (s snapLineSource) NumCols() int { return s.snap.NumCols }

func (s snapLineSource) Wrapped(line int) bool { return false }

// openURLAt resolves the hyperlink under (line, col) in the tab's last
// painted frame and opens it via the OS's URL handler.
func (a *app) openURLAt(t *tab, line, col int) {
	if t.prev == nil {
		return
	}
	res, ok := hyperlink.Resolve(snapLineSource{snap: t.prev}, line, col, nil, 0)
	if !ok || !res.IsURL {
		return
	}
	appwindow.OpenURL(res.Target)
}
