// Package interaction fuses the stateful parts of the UI: the scroll
// accumulator and inertial-scroll suppression, the selection state
// machine, the scrollbar drag, find, cursor blink, and tabs. It is the
// largest and trickiest component (spec.md §4.9) because each of these
// touches the same per-tab frame state and must reset together on tab
// switch.
//
// Grounded on main.go's scroll/mouse-button/cursor-pos GLFW callbacks
// (teacher) for the overall shape — a handful of package-level/struct
// fields mutated directly from input callbacks, no event bus — generalized
// into the richer state machines the spec calls for (click-count
// selection types, scrollbar drag, find, suppression).
package interaction

import (
	"math"
	"time"
)

const scrollEpsilon = 1e-4

// ScrollAccumulator converts line or pixel scroll deltas into an integer
// number of lines to scroll, preserving the fractional remainder across
// events (spec.md §4.9a).
type ScrollAccumulator struct {
	pending float64
}

// Consume folds deltaLines (already unit-converted and multiplier-scaled)
// into the pending accumulator and returns the integer part to act on now,
// truncating toward zero with a small epsilon so near-integer deltas
// don't get stuck just below a whole line.
func (a *ScrollAccumulator) Consume(deltaLines float64) int {
	a.pending += deltaLines
	whole := math.Trunc(a.pending + math.Copysign(scrollEpsilon, a.pending))
	a.pending -= whole
	return int(whole)
}

// Reset zeroes the pending fractional amount.
func (a *ScrollAccumulator) Reset() {
	a.pending = 0
}

// LinesFromDelta converts a raw scroll event into line units: pixelUnits
// divides by cellHeight, then both unit kinds are scaled by multiplier
// (a non-finite multiplier becomes 1; one below 0.01 is raised to 0.01).
func LinesFromDelta(delta float64, pixelUnits bool, cellHeight, multiplier float64) float64 {
	if pixelUnits && cellHeight > 0 {
		delta /= cellHeight
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = 1
	} else if multiplier < 0.01 {
		multiplier = 0.01
	}
	return delta * multiplier
}

// TouchPhase mirrors the phases a trackpad precise-scroll gesture reports.
type TouchPhase int

const (
	PhaseStarted TouchPhase = iota
	PhaseMoved
	PhaseEnded
)

const suppressionWindow = 180 * time.Millisecond

// Suppression implements spec.md §4.9b: after the user types while
// scrolled back, inertial "precise" scroll events that keep arriving
// after the finger lifted must not bounce the view back up.
//
// Three fields are tracked, not two, because a single inertial gesture
// can outlive the 180ms window: once a Moved event within one gesture has
// been suppressed, that gesture keeps being suppressed until its own
// Ended arrives, even past the deadline — otherwise a gesture would stop
// mid-flight and jump the view.
type Suppression struct {
	until             time.Time
	untilEnded        bool
	gestureSuppressed bool
}

// OnTerminalInput is called whenever a keystroke produces terminal input.
// If the view is currently scrolled back, it arms the suppression window;
// called again while already at the bottom, it is a no-op (typing a word
// must not re-arm or extend an unrelated window).
func (s *Suppression) OnTerminalInput(now time.Time, displayOffsetNonZero bool) {
	if !displayOffsetNonZero || s.untilEnded {
		return
	}
	s.until = now.Add(suppressionWindow)
	s.untilEnded = true
}

// ScrollEvent reports whether a scroll event should be ignored (swallowed
// as stale inertial motion) and whether the scroll accumulator should be
// zeroed as a side effect.
type ScrollEvent struct {
	Ignore    bool
	ZeroAccum bool
}

var ignoreAndZero = ScrollEvent{Ignore: true, ZeroAccum: true}

// Apply runs one scroll event through the suppression state machine.
func (s *Suppression) Apply(now time.Time, phase TouchPhase, precise bool) ScrollEvent {
	switch phase {
	case PhaseStarted:
		if !precise {
			s.clear()
		}
		return ignoreAndZero

	case PhaseEnded:
		if precise {
			s.clear()
		}
		return ignoreAndZero

	default: // PhaseMoved
		if !precise {
			s.untilEnded = false
			s.gestureSuppressed = false
			return ScrollEvent{}
		}
		if s.untilEnded || now.Before(s.until) || s.gestureSuppressed {
			s.gestureSuppressed = true
			return ignoreAndZero
		}
		return ScrollEvent{}
	}
}

func (s *Suppression) clear() {
	s.until = time.Time{}
	s.untilEnded = false
	s.gestureSuppressed = false
}
