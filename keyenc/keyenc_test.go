package keyenc

import (
	"bytes"
	"testing"
)

func TestEncodePlainArrows(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "up"}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[A")) {
		t.Errorf("up: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "left"}, AppCursor, true)
	if !ok || !bytes.Equal(b, []byte("\x1bOD")) {
		t.Errorf("app-cursor left: got %q, %v", b, ok)
	}
}

func TestEncodeCtrlLetters(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "c", Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x03}) {
		t.Errorf("ctrl+c: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "[", Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x1b}) {
		t.Errorf("ctrl+[: got %q, %v", b, ok)
	}
}

func TestEncodeEnterVariants(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "enter"}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x0d}) {
		t.Errorf("enter: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "enter", Alt: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x1b, 0x0d}) {
		t.Errorf("alt+enter: got %q, %v", b, ok)
	}
}

func TestEncodeModifierParameterizedArrow(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "up", Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[1;5A")) {
		t.Errorf("ctrl+up: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "right", Alt: true, Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[1;7C")) {
		t.Errorf("ctrl+alt+right: got %q, %v", b, ok)
	}
}

func TestEncodeShiftHomeEndOnAltScreen(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "home", Shift: true}, AltScreen, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[1;2H")) {
		t.Errorf("shift+home on alt screen: got %q, %v", b, ok)
	}

	_, ok = Encode(Keystroke{Key: "home", Shift: true}, 0, true)
	if ok {
		t.Error("shift+home off alt screen should have no mapping")
	}
}

func TestEncodeFunctionKeys(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "f1"}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x1b, 'O', 'P'}) {
		t.Errorf("f1: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "f5"}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[15~")) {
		t.Errorf("f5: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "f5", Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[15;5~")) {
		t.Errorf("ctrl+f5: got %q, %v", b, ok)
	}
}

func TestEncodeMacWordMotion(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "left", Alt: true}, 0, false)
	if !ok || !bytes.Equal(b, []byte{0x1b, 'b'}) {
		t.Errorf("alt+left word motion: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "right", Alt: true}, 0, false)
	if !ok || !bytes.Equal(b, []byte{0x1b, 'f'}) {
		t.Errorf("alt+right word motion: got %q, %v", b, ok)
	}

	// With optionAsMeta true, word motion is skipped and alt+left falls
	// through to the modifier-parameterized CSI table instead.
	b, ok = Encode(Keystroke{Key: "left", Alt: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[1;3D")) {
		t.Errorf("alt+left with optionAsMeta: got %q, %v", b, ok)
	}
}

func TestEncodeAltAsMeta(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "a", Alt: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x1b, 'a'}) {
		t.Errorf("alt+a as meta: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "a", Alt: true, Shift: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x1b, 'A'}) {
		t.Errorf("alt+shift+a as meta: got %q, %v", b, ok)
	}
}

func TestEncodeNoMapping(t *testing.T) {
	_, ok := Encode(Keystroke{Key: "a"}, 0, true)
	if ok {
		t.Error("plain 'a' should have no mapping, caller falls back to KeyChar")
	}
}

func TestEncodeTabSpace(t *testing.T) {
	b, ok := Encode(Keystroke{Key: "tab"}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x09}) {
		t.Errorf("tab: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "tab", Shift: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte("\x1b[Z")) {
		t.Errorf("shift+tab: got %q, %v", b, ok)
	}

	b, ok = Encode(Keystroke{Key: "space", Control: true}, 0, true)
	if !ok || !bytes.Equal(b, []byte{0x00}) {
		t.Errorf("ctrl+space: got %q, %v", b, ok)
	}
}

func TestModCode(t *testing.T) {
	tests := []struct {
		k    Keystroke
		want int
	}{
		{Keystroke{}, 1},
		{Keystroke{Shift: true}, 2},
		{Keystroke{Alt: true}, 3},
		{Keystroke{Control: true}, 5},
		{Keystroke{Shift: true, Alt: true, Control: true}, 8},
	}
	for _, tt := range tests {
		if got := modCode(tt.k); got != tt.want {
			t.Errorf("modCode(%+v) = %d, want %d", tt.k, got, tt.want)
		}
	}
}
