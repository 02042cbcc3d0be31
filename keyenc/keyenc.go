// Package keyenc implements the keyboard encoder (spec.md §4.2): a pure
// function mapping a keystroke and terminal mode flags to the byte
// sequence to write to the PTY, honoring xterm's PC-style modifier
// encoding and the DEC application-cursor mode switch.
package keyenc

import "fmt"

// Mode is the subset of terminal mode flags the keyboard encoder reads.
// Kept independent of any specific emulator library so Encode stays a pure
// function; termsession/interaction translate the library's mode bitset
// into this one.
type Mode uint8

const (
	AppCursor Mode = 1 << iota
	AltScreen
)

// Keystroke describes one key event in GUI-toolkit-agnostic terms.
type Keystroke struct {
	Shift    bool
	Control  bool
	Alt      bool
	Platform bool // Cmd on macOS, Win/Super elsewhere
	Function bool
	// Key is the lowercase canonical key name ("up", "left", "f5", "tab",
	// "enter", ...) or a single printable character ("a", "[", ...).
	Key string
	// KeyChar is the text the platform's IME/layout produced for this key,
	// if any. Used only by callers falling back when Encode returns none.
	KeyChar string
}

// modCode is xterm's PC-style modifier parameter:
// 1 + shift + 2*alt + 4*ctrl (spec.md §4.2 step 3, §8 property 2).
func modCode(k Keystroke) int {
	code := 1
	if k.Shift {
		code++
	}
	if k.Alt {
		code += 2
	}
	if k.Control {
		code += 4
	}
	return code
}

func hasAnyModifier(k Keystroke) bool {
	return k.Shift || k.Control || k.Alt || k.Platform
}

// Encode maps a keystroke to the bytes it should produce on the wire, or
// (nil, false) when no mapping applies — callers should then fall back to
// inserting k.KeyChar verbatim, if any. Encode is total and deterministic:
// it never panics and always returns the same bytes for the same inputs.
func Encode(k Keystroke, mode Mode, optionAsMeta bool) ([]byte, bool) {
	appCursor := mode&AppCursor != 0
	altScreen := mode&AltScreen != 0

	// Step 1: macOS Option+Arrow word motion, independent of APP_CURSOR,
	// and independent of the manual table below (it must win over the
	// plain-arrow mapping).
	if !k.Control && !k.Platform && !optionAsMeta {
		if k.Alt {
			switch k.Key {
			case "left", "d":
				return []byte{0x1b, 'b'}, true
			case "right", "c", "s":
				return []byte{0x1b, 'f'}, true
			}
		}
		// Fallback for layouts that drop the alt bit and present only the
		// bare final CSI byte, with no KeyChar to distinguish it from a
		// plain letter.
		if k.KeyChar == "" {
			switch k.Key {
			case "d":
				return []byte{0x1b, 'b'}, true
			case "c", "s":
				return []byte{0x1b, 'f'}, true
			}
		}
	}

	if b, ok := manualTable(k, appCursor, altScreen); ok {
		return b, true
	}

	if b, ok := modifierParameterizedCSI(k); ok {
		return b, true
	}

	// Step 4: Alt as meta. optionAsMeta is the sole switch here: callers on
	// a platform with no macOS-style Option key (see appwindow) always
	// pass optionAsMeta=true, which is exactly spec.md §4.2's "outside
	// macOS, or when option_as_meta=true" condition collapsed into one
	// bool, since this package has no notion of "which OS" on its own.
	if optionAsMeta && k.Alt && !k.Control && !k.Platform {
		if b, ok := altAsMeta(k); ok {
			return b, true
		}
	}

	return nil, false
}

var ctrlLetterCodes = map[string]byte{
	"a": 0x01, "b": 0x02, "c": 0x03, "d": 0x04, "e": 0x05, "f": 0x06,
	"g": 0x07, "h": 0x08, "i": 0x09, "j": 0x0a, "k": 0x0b, "l": 0x0c,
	"m": 0x0d, "n": 0x0e, "o": 0x0f, "p": 0x10, "q": 0x11, "r": 0x12,
	"s": 0x13, "t": 0x14, "u": 0x15, "v": 0x16, "w": 0x17, "x": 0x18,
	"y": 0x19, "z": 0x1a,
}

var ctrlPunctCodes = map[string]byte{
	"[": 0x1b, "\\": 0x1c, "]": 0x1d, "^": 0x1e, "_": 0x1f, "?": 0x7f,
}

// manualTable is the fixed (key, modifier-class) -> escape mapping of
// spec.md §4.2 step 2.
func manualTable(k Keystroke, appCursor, altScreen bool) ([]byte, bool) {
	switch k.Key {
	case "tab":
		if k.Shift {
			return []byte("\x1b[Z"), true
		}
		if !k.Control && !k.Alt && !k.Platform {
			return []byte{0x09}, true
		}
	case "enter":
		switch {
		case k.Alt:
			return []byte{0x1b, 0x0d}, true
		case k.Shift:
			return []byte{0x0a}, true
		case !k.Control && !k.Platform:
			return []byte{0x0d}, true
		}
	case "backspace":
		switch {
		case k.Alt:
			return []byte{0x1b, 0x7f}, true
		case k.Control:
			return []byte{0x08}, true
		case !k.Shift && !k.Platform:
			return []byte{0x7f}, true
		}
	case "space":
		if k.Control && !k.Shift && !k.Alt {
			return []byte{0x00}, true
		}
	case "up", "down", "left", "right", "home", "end", "pageup", "pagedown":
		if hasAnyModifier(k) {
			if k.Shift && !k.Control && !k.Alt && !k.Platform {
				switch k.Key {
				case "home", "end", "pageup", "pagedown":
					if altScreen {
						return []byte(fmt.Sprintf("\x1b[1;2%c", shiftNavFinal(k.Key))), true
					}
					return nil, false
				}
				// Shift+Arrow has no manual-table mapping, and the
				// modifier-parameterized CSI step skips shift-only code 2,
				// so Encode reports no mapping for it.
			}
			return nil, false
		}
		return arrowOrNavBytes(k.Key, appCursor), true
	case "insert":
		if !hasAnyModifier(k) {
			return []byte("\x1b[2~"), true
		}
	case "delete":
		if !hasAnyModifier(k) {
			return []byte("\x1b[3~"), true
		}
	case "f1", "f2", "f3", "f4":
		if !hasAnyModifier(k) {
			return []byte{0x1b, 'O', "PQRS"[fnIndex(k.Key)]}, true
		}
	case "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
		"f13", "f14", "f15", "f16", "f17", "f18", "f19", "f20":
		if !hasAnyModifier(k) {
			return []byte(fmt.Sprintf("\x1b[%d~", fKeyParam(k.Key))), true
		}
	}

	if k.Control && !k.Alt && !k.Platform {
		key := k.Key
		if code, ok := ctrlLetterCodes[key]; ok {
			return []byte{code}, true
		}
		if code, ok := ctrlPunctCodes[key]; ok {
			return []byte{code}, true
		}
	}

	return nil, false
}

func shiftNavFinal(key string) byte {
	switch key {
	case "home":
		return 'H'
	case "end":
		return 'F'
	case "pageup":
		return '5'
	case "pagedown":
		return '6'
	}
	return '~'
}

func arrowOrNavBytes(key string, appCursor bool) []byte {
	var final byte
	switch key {
	case "up":
		final = 'A'
	case "down":
		final = 'B'
	case "right":
		final = 'C'
	case "left":
		final = 'D'
	case "home":
		return []byte("\x1b[H")
	case "end":
		return []byte("\x1b[F")
	case "pageup":
		return []byte("\x1b[5~")
	case "pagedown":
		return []byte("\x1b[6~")
	}
	if appCursor {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

func fnIndex(key string) int {
	switch key {
	case "f1":
		return 0
	case "f2":
		return 1
	case "f3":
		return 2
	case "f4":
		return 3
	}
	return 0
}

func fKeyParam(key string) int {
	params := map[string]int{
		"f5": 15, "f6": 17, "f7": 18, "f8": 19, "f9": 20, "f10": 21,
		"f11": 23, "f12": 24, "f13": 25, "f14": 26, "f15": 28, "f16": 29,
		"f17": 31, "f18": 32, "f19": 33, "f20": 34,
	}
	return params[key]
}

// csiArrowFinal, csiNavFinal, csiF1to4Final and csiTildeParam map the keys
// eligible for modifier-parameterized CSI to their final byte /
// tilde-parameter form.
var csiArrowFinal = map[string]byte{"up": 'A', "down": 'B', "right": 'C', "left": 'D'}
var csiNavFinal = map[string]byte{"home": 'H', "end": 'F'}
var csiF1to4Final = map[string]byte{"f1": 'P', "f2": 'Q', "f3": 'R', "f4": 'S'}
var csiTildeParam = map[string]int{
	"insert": 2, "delete": 3, "pageup": 5, "pagedown": 6,
	"f5": 15, "f6": 17, "f7": 18, "f8": 19, "f9": 20, "f10": 21,
	"f11": 23, "f12": 24,
}

// modifierParameterizedCSI implements spec.md §4.2 step 3: arrow/F-keys/
// home/end/insert/pgup/pgdn gain an explicit modifier parameter when any
// modifier is held, except modifier code 2 (shift alone): the manual table
// covers Shift+Home/End/PgUp/PgDn on the alternate screen, and every other
// shift-only combination of these keys gets no mapping.
func modifierParameterizedCSI(k Keystroke) ([]byte, bool) {
	if !hasAnyModifier(k) || k.Platform {
		return nil, false
	}
	code := modCode(k)
	if code == 2 {
		return nil, false
	}

	if final, ok := csiArrowFinal[k.Key]; ok {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", code, final)), true
	}
	if final, ok := csiNavFinal[k.Key]; ok {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", code, final)), true
	}
	if final, ok := csiF1to4Final[k.Key]; ok {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", code, final)), true
	}
	if param, ok := csiTildeParam[k.Key]; ok {
		return []byte(fmt.Sprintf("\x1b[%d;%d~", param, code)), true
	}
	return nil, false
}

func altAsMeta(k Keystroke) ([]byte, bool) {
	if len(k.Key) != 1 {
		return nil, false
	}
	c := k.Key[0]
	if c < 0x20 || c > 0x7e {
		return nil, false
	}
	if k.Shift && c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return []byte{0x1b, c}, true
}

