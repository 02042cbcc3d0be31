package appwindow

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/simpleterm/simpleterm/keyenc"
)

func isPlatformMac() bool {
	return runtime.GOOS == "darwin"
}

// IsMacPlatform reports whether keyenc.Encode's macOS-specific behavior
// (Option+Arrow word motion) should be active.
func IsMacPlatform() bool {
	return isPlatformMac()
}

// Keystroke translates a GLFW key callback's parameters into a
// keyenc.Keystroke. scancode/action are not needed: callers only invoke
// this for glfw.Press and glfw.Repeat actions. GLFW reports both macOS's
// Cmd key and Windows/Linux's Super/Win key as ModSuper, which is exactly
// keyenc.Keystroke.Platform's "Cmd on macOS, Win/Super elsewhere" role —
// no OS branching needed here.
func Keystroke(key glfw.Key, mods glfw.ModifierKey, keyChar string) keyenc.Keystroke {
	k := keyenc.Keystroke{
		Shift:    mods&glfw.ModShift != 0,
		Control:  mods&glfw.ModControl != 0,
		Alt:      mods&glfw.ModAlt != 0,
		Platform: mods&glfw.ModSuper != 0,
		KeyChar:  keyChar,
	}
	name, isFn := keyName(key)
	k.Key = name
	k.Function = isFn
	return k
}

// keyName maps a GLFW key constant to keyenc's lowercase canonical key
// name, and reports whether it is a function key (F1-F20).
func keyName(key glfw.Key) (string, bool) {
	switch key {
	case glfw.KeyTab:
		return "tab", false
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return "enter", false
	case glfw.KeyBackspace:
		return "backspace", false
	case glfw.KeySpace:
		return "space", false
	case glfw.KeyUp:
		return "up", false
	case glfw.KeyDown:
		return "down", false
	case glfw.KeyLeft:
		return "left", false
	case glfw.KeyRight:
		return "right", false
	case glfw.KeyHome:
		return "home", false
	case glfw.KeyEnd:
		return "end", false
	case glfw.KeyPageUp:
		return "pageup", false
	case glfw.KeyPageDown:
		return "pagedown", false
	case glfw.KeyInsert:
		return "insert", false
	case glfw.KeyDelete:
		return "delete", false
	case glfw.KeyEscape:
		return "escape", false
	case glfw.KeyF1:
		return "f1", true
	case glfw.KeyF2:
		return "f2", true
	case glfw.KeyF3:
		return "f3", true
	case glfw.KeyF4:
		return "f4", true
	case glfw.KeyF5:
		return "f5", true
	case glfw.KeyF6:
		return "f6", true
	case glfw.KeyF7:
		return "f7", true
	case glfw.KeyF8:
		return "f8", true
	case glfw.KeyF9:
		return "f9", true
	case glfw.KeyF10:
		return "f10", true
	case glfw.KeyF11:
		return "f11", true
	case glfw.KeyF12:
		return "f12", true
	case glfw.KeyF13:
		return "f13", true
	case glfw.KeyF14:
		return "f14", true
	case glfw.KeyF15:
		return "f15", true
	case glfw.KeyF16:
		return "f16", true
	case glfw.KeyF17:
		return "f17", true
	case glfw.KeyF18:
		return "f18", true
	case glfw.KeyF19:
		return "f19", true
	case glfw.KeyF20:
		return "f20", true
	}
	if name, ok := printableKeyName(key); ok {
		return name, false
	}
	return "", false
}

// printableKeyName covers the letter, digit, and punctuation keys keyenc
// and interaction.Dispatch compare against by their unshifted character
// ("a".."z", "[", etc.), independent of what the char callback reports,
// so Ctrl/Alt/Cmd combinations resolve even though GLFW's char callback
// never fires for them.
func printableKeyName(key glfw.Key) (string, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return string(rune('a' + (key - glfw.KeyA))), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return string(rune('0' + (key - glfw.Key0))), true
	}
	switch key {
	case glfw.KeyLeftBracket:
		return "[", true
	case glfw.KeyRightBracket:
		return "]", true
	case glfw.KeyBackslash:
		return "\\", true
	case glfw.KeyGraveAccent:
		return "`", true
	case glfw.KeyMinus:
		return "-", true
	case glfw.KeyEqual:
		return "=", true
	case glfw.KeySemicolon:
		return ";", true
	case glfw.KeyApostrophe:
		return "'", true
	case glfw.KeyComma:
		return ",", true
	case glfw.KeyPeriod:
		return ".", true
	case glfw.KeySlash:
		return "/", true
	}
	return "", false
}
