package interaction

import (
	"testing"
	"time"
)

func TestBlinkOffIsAlwaysVisible(t *testing.T) {
	b := NewBlink()
	now := time.Now()
	for i := 0; i < 3; i++ {
		now = now.Add(blinkInterval)
		if !b.Visible(now, BlinkOff, true) {
			t.Fatal("BlinkOff should always report visible")
		}
	}
}

func TestBlinkTerminalControlledNotBlinkingStaysVisible(t *testing.T) {
	b := NewBlink()
	now := time.Now().Add(2 * blinkInterval)
	if !b.Visible(now, BlinkTerminalControlled, false) {
		t.Error("terminal-controlled with emulator blinking=false should stay visible")
	}
}

func TestBlinkOnTogglesOverTime(t *testing.T) {
	b := NewBlink()
	start := time.Now().Add(2 * time.Second) // well past any input suppression
	b.lastToggle = start
	b.lastInput = time.Time{}

	v1 := b.Visible(start.Add(blinkInterval+time.Millisecond), BlinkOn, false)
	v2 := b.Visible(start.Add(2*blinkInterval+2*time.Millisecond), BlinkOn, false)
	if v1 == v2 {
		t.Errorf("visibility should toggle every blinkInterval, got %v then %v", v1, v2)
	}
}

func TestBlinkSuppressedAfterInput(t *testing.T) {
	b := NewBlink()
	now := time.Now()
	b.OnInput(now)
	if !b.Visible(now.Add(blinkInterval+time.Millisecond), BlinkOn, false) {
		t.Error("cursor should stay forced visible within the 800ms post-input window")
	}
}

func TestBlinkResumesAfterSuppressionWindow(t *testing.T) {
	b := NewBlink()
	now := time.Now()
	b.OnInput(now)
	// Past the 800ms suppression window and past one toggle interval
	// (measured from lastToggle, which OnInput also resets).
	v := b.Visible(now.Add(blinkInputSuppressWait+blinkInterval+time.Millisecond), BlinkOn, false)
	if v {
		t.Error("expected the cursor to have toggled off once suppression lifted and an interval elapsed")
	}
}

func TestBlinkResetRestoresVisible(t *testing.T) {
	b := NewBlink()
	now := time.Now().Add(2 * time.Second)
	b.lastToggle = now.Add(-2 * blinkInterval)
	b.Visible(now, BlinkOn, false) // toggles off
	b.Reset()
	if !b.visible {
		t.Error("Reset should restore the visible state")
	}
}
