// Package snapshot takes a locked, self-contained copy of a terminal's
// visible grid and diffs it against the previous frame. It is the only
// package that reads github.com/danielgatis/go-headless-term's Cell,
// ScrollbackLine, CursorPos, and IsSelected accessors directly (termsession
// also reads GetSelection, for SelectionText); every
// other package downstream of it (rowcache, interaction, composer) works
// off the Snapshot value instead.
//
// go-headless-term has no concept of a scrolled-back viewport offset —
// it only exposes the live grid plus a flat scrollback buffer — so this
// package owns display_offset itself and does the line-to-viewport-row
// arithmetic that a library with a built-in "display iterator" would
// otherwise do.
package snapshot

import (
	"image/color"
	"math"
	"time"

	headlessterm "github.com/danielgatis/go-headless-term"

	"github.com/simpleterm/simpleterm/config"
	"github.com/simpleterm/simpleterm/termsession"
)

// CellFlags mirrors the subset of headlessterm.CellFlags a rendered cell
// needs downstream, already resolved to "what to draw" (inverse has been
// applied to Fg/Bg by the time a Cell reaches here).
type CellFlags uint8

const (
	FlagBold CellFlags = 1 << iota
	FlagUnderline
	FlagWideChar
	FlagWideCharSpacer
)

// Cell is one grid position's fully resolved paint state.
type Cell struct {
	Char  rune
	Fg    color.RGBA
	Bg    color.RGBA
	Flags CellFlags
}

// CursorShape is the emulator-reported cursor rendering style. Composer
// draws a hollow block in place of CursorBlock itself on focus loss; this
// package has no hollow shape.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// Cursor records the cursor's viewport position and rendering state.
// Row/Col are only meaningful when Visible is true.
type Cursor struct {
	Row      int
	Col      int
	Shape    CursorShape
	Blinking bool
	Visible  bool
}

// Snapshot is a self-contained copy of one frame's visible grid.
type Snapshot struct {
	NumLines      int
	NumCols       int
	DisplayOffset int
	Palette       config.Palette
	Rows          [][]Cell
	Cursor        Cursor
}

// Timing reports how long TakeSnapshot spent overall and how long it held
// the emulator lock, so callers can alarm on lock contention.
type Timing struct {
	Total    time.Duration
	LockHold time.Duration
}

// defaultCell is what an out-of-range (no live row, no scrollback line)
// viewport position renders as.
func defaultCell(pal config.Palette) Cell {
	return Cell{Char: ' ', Fg: pal.Foreground, Bg: pal.Background}
}

// TakeSnapshot copies sess's visible rows, cursor, and selection into a
// value that outlives the lock. displayOffset is the UI-owned scroll
// position (0 = bottom); numLines/numCols are the viewport size, which
// normally equal the emulator's Rows()/Cols().
func TakeSnapshot(sess *termsession.Session, displayOffset, numLines, numCols int, pal config.Palette, minContrast float64) (*Snapshot, Timing) {
	start := time.Now()

	snap := &Snapshot{
		NumLines:      numLines,
		NumCols:       numCols,
		DisplayOffset: displayOffset,
		Palette:       pal,
		Rows:          make([][]Cell, numLines),
	}
	for r := range snap.Rows {
		row := make([]Cell, numCols)
		for c := range row {
			row[c] = defaultCell(pal)
		}
		snap.Rows[r] = row
	}

	var lockStart time.Time
	sess.WithLock(func(term *headlessterm.Terminal) {
		lockStart = time.Now()

		rows := term.Rows()
		scrollbackLen := term.ScrollbackLen()
		selection := term.GetSelection()

		for vr := 0; vr < numLines; vr++ {
			line := vr - displayOffset
			var src []headlessterm.Cell
			var liveRow int
			useLive := false

			switch {
			case line >= 0 && line < rows:
				liveRow = line
				useLive = true
			case line < 0:
				idx := line + scrollbackLen
				if idx >= 0 && idx < scrollbackLen {
					src = term.ScrollbackLine(idx)
				}
			}

			for col := 0; col < numCols; col++ {
				var hc headlessterm.Cell
				haveCell := false
				if useLive {
					if cp := term.Cell(liveRow, col); cp != nil {
						hc = *cp
						haveCell = true
					}
				} else if col < len(src) {
					hc = src[col]
					haveCell = true
				}
				if !haveCell {
					continue
				}

				cell := resolveCell(hc, pal, minContrast)

				if useLive && selection.Active && term.IsSelected(liveRow, col) {
					cell.Bg = blendTint(cell.Bg, pal.Cursor, 0.3)
				}

				snap.Rows[vr][col] = cell
			}
		}

		curRow, curCol := term.CursorPos()
		style := term.CursorStyle()
		viewportRow := curRow + displayOffset
		inView := viewportRow >= 0 && viewportRow < numLines
		snap.Cursor = Cursor{
			Row:      viewportRow,
			Col:      curCol,
			Shape:    cursorShapeFor(style),
			Blinking: cursorBlinkingFor(style),
			Visible:  inView && term.CursorVisible(),
		}
	})

	return snap, Timing{Total: time.Since(start), LockHold: time.Since(lockStart)}
}

func resolveCell(hc headlessterm.Cell, pal config.Palette, minContrast float64) Cell {
	ch := hc.Char
	if ch == 0 {
		ch = ' '
	}

	fg := resolveColor(hc.Fg, true, pal)
	bg := resolveColor(hc.Bg, false, pal)
	if hc.Flags&headlessterm.CellFlagReverse != 0 {
		fg, bg = bg, fg
	}
	fg = ensureMinimumContrast(fg, bg, minContrast)

	var flags CellFlags
	if hc.Flags&headlessterm.CellFlagBold != 0 {
		flags |= FlagBold
	}
	if hc.Flags&headlessterm.CellFlagUnderline != 0 {
		flags |= FlagUnderline
	}
	if hc.Flags&headlessterm.CellFlagWideChar != 0 {
		flags |= FlagWideChar
	}
	if hc.Flags&headlessterm.CellFlagWideCharSpacer != 0 {
		flags |= FlagWideCharSpacer
	}

	return Cell{Char: ch, Fg: fg, Bg: bg, Flags: flags}
}

// resolveColor reproduces go-headless-term's unexported resolveDefaultColor
// switch (colors.go), parameterized on our own theme-derived palette
// instead of its package-level DefaultPalette/DefaultForeground globals.
func resolveColor(c color.Color, fg bool, pal config.Palette) color.RGBA {
	if c == nil {
		if fg {
			return pal.Foreground
		}
		return pal.Background
	}
	switch v := c.(type) {
	case color.RGBA:
		return v
	case *headlessterm.IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return pal.Entries[v.Index]
		}
		if fg {
			return pal.Foreground
		}
		return pal.Background
	case *headlessterm.NamedColor:
		return resolveNamedColor(v.Name, fg, pal)
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
}

func resolveNamedColor(name int, fg bool, pal config.Palette) color.RGBA {
	switch {
	case name >= 0 && name < 16:
		return pal.Entries[name]
	case name == headlessterm.NamedColorForeground:
		return pal.Foreground
	case name == headlessterm.NamedColorBackground:
		return pal.Background
	case name == headlessterm.NamedColorCursor:
		return pal.Cursor
	case name >= headlessterm.NamedColorDimBlack && name <= headlessterm.NamedColorDimWhite:
		return dim(pal.Entries[name-headlessterm.NamedColorDimBlack])
	case name == headlessterm.NamedColorBrightForeground:
		return pal.Entries[15]
	case name == headlessterm.NamedColorDimForeground:
		return dim(pal.Foreground)
	default:
		if fg {
			return pal.Foreground
		}
		return pal.Background
	}
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: 255,
	}
}

// blendTint applies standard alpha-over compositing of overlay onto base
// at the given alpha, the selection-tint formula spec.md §4.7 names.
func blendTint(base, overlay color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: blendChannel(base.R, overlay.R, alpha),
		G: blendChannel(base.G, overlay.G, alpha),
		B: blendChannel(base.B, overlay.B, alpha),
		A: 255,
	}
}

func blendChannel(base, overlay uint8, alpha float64) uint8 {
	return uint8(float64(base)*(1-alpha) + float64(overlay)*alpha + 0.5)
}

// relativeLuminance is the WCAG relative luminance of c, in [0,1].
func relativeLuminance(c color.RGBA) float64 {
	linear := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

// contrastRatio is the WCAG contrast ratio between two colors (always
// >= 1; identical colors give 1).
func contrastRatio(a, b color.RGBA) float64 {
	la, lb := relativeLuminance(a), relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// ensureMinimumContrast is config.Settings.MinimumContrast's effect (spec.md
// §4.1's "minimum contrast", carried from the original implementation's
// `minimum_contrast` setting): if fg already contrasts bg by at least
// minContrast, it's returned unchanged; otherwise fg is nudged toward
// whichever of black/white contrasts bg more, just far enough to reach
// minContrast. minContrast <= 1 disables the adjustment entirely.
func ensureMinimumContrast(fg, bg color.RGBA, minContrast float64) color.RGBA {
	if minContrast <= 1 || contrastRatio(fg, bg) >= minContrast {
		return fg
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	target := white
	if contrastRatio(black, bg) > contrastRatio(white, bg) {
		target = black
	}
	if contrastRatio(target, bg) <= minContrast {
		return target
	}

	result := target
	lo, hi := 0.0, 1.0
	for i := 0; i < 12; i++ {
		mid := (lo + hi) / 2
		candidate := blendTint(fg, target, mid)
		if contrastRatio(candidate, bg) >= minContrast {
			result = candidate
			hi = mid
		} else {
			lo = mid
		}
	}
	return result
}

func cursorShapeFor(style headlessterm.CursorStyle) CursorShape {
	switch style {
	case headlessterm.CursorStyleBlinkingUnderline, headlessterm.CursorStyleSteadyUnderline:
		return CursorUnderline
	case headlessterm.CursorStyleBlinkingBar, headlessterm.CursorStyleSteadyBar:
		return CursorBar
	default:
		return CursorBlock
	}
}

func cursorBlinkingFor(style headlessterm.CursorStyle) bool {
	switch style {
	case headlessterm.CursorStyleBlinkingBlock, headlessterm.CursorStyleBlinkingUnderline, headlessterm.CursorStyleBlinkingBar:
		return true
	default:
		return false
	}
}

// DirtyRows compares current against previous and reports which viewport
// rows need repainting. previous == nil means every row is dirty (first
// frame).
func DirtyRows(current, previous *Snapshot) []bool {
	dirty := make([]bool, current.NumLines)

	if previous == nil || current.NumLines != previous.NumLines || current.NumCols != previous.NumCols || current.Palette != previous.Palette {
		for i := range dirty {
			dirty[i] = true
		}
		return dirty
	}

	deltaOffset := current.DisplayOffset - previous.DisplayOffset
	if abs(deltaOffset) >= current.NumLines {
		for i := range dirty {
			dirty[i] = true
		}
		return dirty
	}

	for r := 0; r < current.NumLines; r++ {
		oldR := r - deltaOffset
		if oldR < 0 || oldR >= current.NumLines || !rowsEqual(current.Rows[r], previous.Rows[oldR]) {
			dirty[r] = true
		}
	}

	if cursorChanged(current.Cursor, previous.Cursor) {
		if previous.Cursor.Visible && previous.Cursor.Row >= 0 && previous.Cursor.Row < len(dirty) {
			dirty[previous.Cursor.Row] = true
		}
		if current.Cursor.Visible && current.Cursor.Row >= 0 && current.Cursor.Row < len(dirty) {
			dirty[current.Cursor.Row] = true
		}
	}

	return dirty
}

func cursorChanged(a, b Cursor) bool {
	return a.Visible != b.Visible || a.Row != b.Row || a.Col != b.Col || a.Shape != b.Shape
}

func rowsEqual(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ShiftForDisplayOffset applies current.DisplayOffset-previous.DisplayOffset
// to cache, a per-row cache slice owned by the caller (rowcache's cached
// rows, or anything else indexed by viewport row). Rows that shift off an
// edge are dropped; rows with no surviving source become the zero value.
// Only valid when dimensions are unchanged and the shift is smaller than
// the viewport; callers must already have checked that (DirtyRows's
// all-dirty cases double as "don't bother shifting, just rebuild").
func ShiftForDisplayOffset[T any](cache []T, deltaOffset int) []T {
	shifted := make([]T, len(cache))
	for newIdx := range shifted {
		oldIdx := newIdx - deltaOffset
		if oldIdx >= 0 && oldIdx < len(cache) {
			shifted[newIdx] = cache[oldIdx]
		}
	}
	return shifted
}
