package interaction

// Scrollbar geometry and drag state, per spec.md §4.9d. Pixel math only;
// ComputeScrollbarGeometry folds the alt-screen state into Visible, and the
// painting itself is the composer's, since this package has no GL dependency.
const (
	ScrollbarWidth    = 10
	ScrollbarPadding  = 1
	ScrollbarMinThumb = 24
)

// ScrollbarGeometry is the resolved pixel geometry for one frame, derived
// from the viewport's content height, the number of live rows, and how
// much scrollback exists above them.
type ScrollbarGeometry struct {
	TrackHeight float64
	ThumbHeight float64
	ThumbTop    float64
	Visible     bool
}

// ComputeScrollbarGeometry resolves thumb size and position. historySize is
// the scrollback line count; displayOffset is how many lines back the view
// is currently scrolled (0 = live bottom). altScreen hides the bar
// entirely, matching full-screen TUI apps that manage their own chrome.
func ComputeScrollbarGeometry(contentHeight float64, numLines, historySize, displayOffset int, altScreen bool) ScrollbarGeometry {
	if altScreen || historySize <= 0 {
		return ScrollbarGeometry{TrackHeight: contentHeight, Visible: false}
	}

	total := numLines + historySize
	ratio := float64(numLines) / float64(total)
	thumbHeight := contentHeight * ratio
	if thumbHeight < ScrollbarMinThumb {
		thumbHeight = ScrollbarMinThumb
	}
	if thumbHeight > contentHeight {
		thumbHeight = contentHeight
	}

	travel := contentHeight - thumbHeight
	// displayOffset 0 (live bottom) puts the thumb at the bottom of the
	// track; displayOffset == historySize (scrolled to the very top) puts
	// it at the top.
	var frac float64
	if historySize > 0 {
		frac = float64(displayOffset) / float64(historySize)
	}
	thumbTop := travel * (1 - frac)

	return ScrollbarGeometry{
		TrackHeight: contentHeight,
		ThumbHeight: thumbHeight,
		ThumbTop:    thumbTop,
		Visible:     true,
	}
}

// DisplayOffsetForThumbTop inverts ComputeScrollbarGeometry's thumb-top
// mapping, used when the user drags the thumb directly.
func DisplayOffsetForThumbTop(g ScrollbarGeometry, thumbTop float64, historySize int) int {
	travel := g.TrackHeight - g.ThumbHeight
	if travel <= 0 || historySize <= 0 {
		return 0
	}
	if thumbTop < 0 {
		thumbTop = 0
	}
	if thumbTop > travel {
		thumbTop = travel
	}
	frac := 1 - thumbTop/travel
	offset := int(frac*float64(historySize) + 0.5)
	if offset < 0 {
		offset = 0
	}
	if offset > historySize {
		offset = historySize
	}
	return offset
}

// ScrollbarDrag tracks an in-progress thumb drag: the pointer's offset
// from the thumb's own top edge at grab time, so subsequent pointer
// positions can be translated back into a thumb-top without the thumb
// jumping to center on the cursor.
type ScrollbarDrag struct {
	Active    bool
	GrabDelta float64
}

// Begin starts a drag given the pointer's y position and the current
// thumb geometry; clicking the track above/below the thumb (rather than on
// it) jumps the thumb so its center lands under the pointer, matching
// common scrollbar click-to-jump behavior.
func (d *ScrollbarDrag) Begin(pointerY float64, g ScrollbarGeometry) (thumbTop float64) {
	d.Active = true
	if pointerY >= g.ThumbTop && pointerY <= g.ThumbTop+g.ThumbHeight {
		d.GrabDelta = pointerY - g.ThumbTop
		return g.ThumbTop
	}
	d.GrabDelta = g.ThumbHeight / 2
	return pointerY - d.GrabDelta
}

// Drag returns the new thumb-top for a pointer move mid-drag.
func (d *ScrollbarDrag) Drag(pointerY float64) float64 {
	return pointerY - d.GrabDelta
}

// End clears drag state.
func (d *ScrollbarDrag) End() {
	d.Active = false
	d.GrabDelta = 0
}
