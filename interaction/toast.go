package interaction

import "time"

const toastDuration = 1800 * time.Millisecond

// Toast tracks a transient notification message (the "Copied to clipboard"
// confirmation after an explicit Cmd/Ctrl+C copy; copy-on-select does not
// show one), shown for toastDuration after it's set and then cleared
// automatically.
type Toast struct {
	message string
	shownAt time.Time
}

// Show sets message to be displayed starting at now.
func (t *Toast) Show(message string, now time.Time) {
	t.message = message
	t.shownAt = now
}

// Text returns the current toast message, or "" once toastDuration has
// elapsed since Show.
func (t *Toast) Text(now time.Time) string {
	if t.message == "" {
		return ""
	}
	if now.Sub(t.shownAt) >= toastDuration {
		return ""
	}
	return t.message
}
