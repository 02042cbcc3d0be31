package interaction

import "github.com/simpleterm/simpleterm/keyenc"

// Action identifies a chrome-level command a keystroke can trigger,
// independent of the keyboard encoder's terminal-input byte sequences
// (spec.md §4.9's keybinding table sits above keyenc, not instead of it:
// a keystroke that doesn't match any Action here falls through to
// keyenc.Encode as ordinary terminal input).
type Action int

const (
	ActionNone Action = iota
	ActionCopy
	ActionPaste
	ActionSelectAll
	ActionFindOpen
	ActionFindClose
	ActionFindNext
	ActionFindPrev
	ActionNewTab
	ActionCloseTab
	ActionNextTab
	ActionPrevTab
	ActionSwitchToTab // Tab index carried separately, see Dispatch's return
)

// Dispatch resolves a keystroke to a chrome Action. findOpen changes the
// meaning of Enter/Shift+Enter/Escape while the find panel has focus.
// extra lets a caller-supplied table of custom bindings to the Actions above
// override or extend the built-in table; it is consulted first. The global
// and pin-window hotkeys have no Action here.
//
// The second return value is the 1-based tab index for ActionSwitchToTab,
// zero otherwise.
func Dispatch(k keyenc.Keystroke, findOpen bool, extra map[Keybind]Action) (Action, int) {
	bind := Keybind{Key: k.Key, Shift: k.Shift, Control: k.Control, Alt: k.Alt, Platform: k.Platform}
	if extra != nil {
		if action, ok := extra[bind]; ok {
			return action, 0
		}
	}

	if findOpen {
		switch {
		case bind == (Keybind{Key: "escape"}):
			return ActionFindClose, 0
		case bind == (Keybind{Key: "enter", Shift: true}):
			return ActionFindPrev, 0
		case bind == (Keybind{Key: "enter"}):
			return ActionFindNext, 0
		}
	}

	switch {
	case bind == (Keybind{Key: "c", Platform: true}):
		return ActionCopy, 0
	case bind == (Keybind{Key: "v", Platform: true}):
		return ActionPaste, 0
	case bind == (Keybind{Key: "a", Platform: true}):
		return ActionSelectAll, 0
	case bind == (Keybind{Key: "f", Platform: true}):
		return ActionFindOpen, 0
	case bind == (Keybind{Key: "t", Platform: true}):
		return ActionNewTab, 0
	case bind == (Keybind{Key: "w", Platform: true}):
		return ActionCloseTab, 0
	case bind == (Keybind{Key: "]", Platform: true}):
		return ActionNextTab, 0
	case bind == (Keybind{Key: "[", Platform: true}):
		return ActionPrevTab, 0
	case bind == (Keybind{Key: "tab", Control: true}):
		return ActionNextTab, 0
	case bind == (Keybind{Key: "tab", Control: true, Shift: true}):
		return ActionPrevTab, 0
	}

	if k.Platform && !k.Control && !k.Alt && !k.Shift && len(k.Key) == 1 && k.Key[0] >= '1' && k.Key[0] <= '9' {
		return ActionSwitchToTab, int(k.Key[0] - '0')
	}

	return ActionNone, 0
}

// Keybind is a hashable, comparable subset of keyenc.Keystroke suitable for
// use as a map key in configured keybinding overrides.
type Keybind struct {
	Key      string
	Shift    bool
	Control  bool
	Alt      bool
	Platform bool
}
