package interaction

import "time"

const (
	blinkInterval          = 530 * time.Millisecond
	blinkInputSuppressWait = 800 * time.Millisecond
)

// BlinkMode selects what drives cursor blinking (spec.md §4.9f).
type BlinkMode int

const (
	BlinkOff BlinkMode = iota
	BlinkOn
	BlinkTerminalControlled
)

// Blink tracks cursor blink visibility. Any terminal input resets it to
// visible and holds it visible for blinkInputSuppressWait, so the cursor
// doesn't appear to vanish mid-keystroke.
type Blink struct {
	visible    bool
	lastToggle time.Time
	lastInput  time.Time
}

// NewBlink returns a Blink starting in the visible state.
func NewBlink() Blink {
	return Blink{visible: true}
}

// OnInput records terminal input at now, forcing the cursor visible and
// restarting the post-input suppression window.
func (b *Blink) OnInput(now time.Time) {
	b.lastInput = now
	b.visible = true
	b.lastToggle = now
}

// Visible reports whether the cursor should currently be drawn. mode
// BlinkOff, or BlinkTerminalControlled with emulatorBlinking false, always
// returns true (steady cursor). Otherwise it advances the 530ms toggle
// clock, except within 800ms of the last input, when it stays forced
// visible.
func (b *Blink) Visible(now time.Time, mode BlinkMode, emulatorBlinking bool) bool {
	blinkingEnabled := mode == BlinkOn || (mode == BlinkTerminalControlled && emulatorBlinking)
	if !blinkingEnabled {
		return true
	}
	if now.Sub(b.lastInput) < blinkInputSuppressWait {
		return true
	}
	if now.Sub(b.lastToggle) >= blinkInterval {
		b.visible = !b.visible
		b.lastToggle = now
	}
	return b.visible
}

// Reset returns the blink state to its initial visible state, used on tab
// switch so a newly focused tab's cursor doesn't inherit a stale phase.
func (b *Blink) Reset() {
	*b = NewBlink()
}
