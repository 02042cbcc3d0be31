// Package rowcache builds the per-row paint primitives a frame needs —
// background spans and shaped text runs — and keeps them around across
// frames for rows a snapshot diff marks clean. The scan that produces
// them is the same left-to-right cell walk the teacher's renderer does
// immediate-mode every frame (render.renderGridAt); here it is split into
// a two-pass builder whose output is cached instead of redrawn.
package rowcache

import (
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/simpleterm/simpleterm/snapshot"
)

// BackgroundSpan is a run of contiguous columns sharing one non-default
// background color.
type BackgroundSpan struct {
	StartCol int
	Len      int
	Color    color.RGBA
}

// TextRun is a run of contiguous, same-styled, non-blank glyphs.
type TextRun struct {
	StartCol int
	EndCol   int
	Fg       color.RGBA
	Bg       color.RGBA
	Bold     bool
	Chars    []rune
}

// PositionedGlyph is one shaped glyph, offset from its run's start column
// in pixels (26.6 fixed point, the x/image/font convention).
type PositionedGlyph struct {
	Rune rune
	X    fixed.Int26_6
}

// ShapedTextRun pairs a TextRun with its shaped glyph positions.
type ShapedTextRun struct {
	TextRun
	Glyphs []PositionedGlyph
}

// BuildRow scans cells left to right and produces background spans and
// (unshaped) text runs, per spec.md §4.8's two scans.
func BuildRow(cells []snapshot.Cell, defaultBg color.RGBA) ([]BackgroundSpan, []TextRun) {
	spans := buildBackgroundSpans(cells, defaultBg)
	runs := buildTextRuns(cells)
	return spans, runs
}

func buildBackgroundSpans(cells []snapshot.Cell, defaultBg color.RGBA) []BackgroundSpan {
	var spans []BackgroundSpan
	start := -1
	var cur color.RGBA

	flush := func(end int) {
		if start >= 0 {
			spans = append(spans, BackgroundSpan{StartCol: start, Len: end - start, Color: cur})
			start = -1
		}
	}

	for col, c := range cells {
		if c.Bg == defaultBg {
			flush(col)
			continue
		}
		if start >= 0 && c.Bg == cur {
			continue
		}
		flush(col)
		start = col
		cur = c.Bg
	}
	flush(len(cells))
	return spans
}

func buildTextRuns(cells []snapshot.Cell) []TextRun {
	var runs []TextRun
	var pending *TextRun

	flush := func() {
		if pending != nil {
			runs = append(runs, *pending)
			pending = nil
		}
	}

	for col, c := range cells {
		if c.Flags&snapshot.FlagWideCharSpacer != 0 {
			continue
		}
		if c.Char == ' ' || c.Char == 0 {
			flush()
			continue
		}
		width := 1
		if c.Flags&snapshot.FlagWideChar != 0 {
			width = 2
		}
		endCol := col + width
		bold := c.Flags&snapshot.FlagBold != 0
		if pending != nil && pending.Fg == c.Fg && pending.Bg == c.Bg && pending.Bold == bold && pending.EndCol == col {
			pending.Chars = append(pending.Chars, c.Char)
			pending.EndCol = endCol
			continue
		}
		flush()
		pending = &TextRun{StartCol: col, EndCol: endCol, Fg: c.Fg, Bg: c.Bg, Bold: bold, Chars: []rune{c.Char}}
	}
	flush()
	return runs
}

// Shaper positions a text run's glyphs using a real font face for glyph
// existence/metrics, but overrides each glyph's advance to the terminal's
// fixed cell width so proportional (or fallback) glyphs still land on the
// grid. Only one face is carried: the embedded fonts this ships with have
// no distinct bold weight, so bold text reuses the regular face's metrics
// and is drawn with a synthetic emphasis by the composer.
type Shaper struct {
	Face font.Face
}

// NewShaper wraps an already-opened font face.
func NewShaper(face font.Face) *Shaper {
	return &Shaper{Face: face}
}

// ShapeRun returns one positioned glyph per rune in run, each advanced by
// exactly cellWidth from the run's start.
func (s *Shaper) ShapeRun(run TextRun, cellWidth fixed.Int26_6) []PositionedGlyph {
	glyphs := make([]PositionedGlyph, len(run.Chars))
	for i, r := range run.Chars {
		if s.Face != nil {
			if _, _, _, _, ok := s.Face.Glyph(fixed.Point26_6{}, r); !ok {
				r = '�'
			}
		}
		glyphs[i] = PositionedGlyph{Rune: r, X: fixed.Int26_6(i) * cellWidth}
	}
	return glyphs
}

// Stats tallies cache reuse for a frame.
type Stats struct {
	TextHits, TextMisses int
	BgHits, BgMisses     int
}

// CachedRow is one row's reusable paint primitives.
type CachedRow struct {
	Initialized bool
	Spans       []BackgroundSpan
	Runs        []ShapedTextRun
}

// Cache owns one CachedRow per viewport row and the shaper used to
// (re)build dirty ones.
type Cache struct {
	rows   []CachedRow
	shaper *Shaper
	stats  Stats
}

// NewCache creates an empty, uninitialized cache for numLines rows.
func NewCache(shaper *Shaper, numLines int) *Cache {
	return &Cache{rows: make([]CachedRow, numLines), shaper: shaper}
}

// Rebuild re-scans every row dirty marks true (or whose cached entry was
// never initialized), reusing the rest. Rows past the end of dirty count as
// dirty. When the cache's row count differs from len(snap.Rows), the cache
// is resized and every row rebuilt, mirroring DirtyRows's own "mismatched
// dimensions => all dirty" rule.
func (c *Cache) Rebuild(snap *snapshot.Snapshot, dirty []bool, cellWidth fixed.Int26_6, defaultBg color.RGBA) {
	if len(c.rows) != len(snap.Rows) {
		c.rows = make([]CachedRow, len(snap.Rows))
	}

	for r := range snap.Rows {
		isDirty := r >= len(dirty) || dirty[r]
		if !isDirty && c.rows[r].Initialized {
			c.stats.BgHits++
			c.stats.TextHits++
			continue
		}
		c.stats.BgMisses++
		c.stats.TextMisses++

		spans, runs := BuildRow(snap.Rows[r], defaultBg)
		shaped := make([]ShapedTextRun, len(runs))
		for i, run := range runs {
			shaped[i] = ShapedTextRun{TextRun: run, Glyphs: c.shaper.ShapeRun(run, cellWidth)}
		}
		c.rows[r] = CachedRow{Initialized: true, Spans: spans, Runs: shaped}
	}
}

// Shift applies a pure-scroll Δoffset to the cache, dropping rows that
// fall off an edge and leaving newly exposed rows uninitialized.
func (c *Cache) Shift(deltaOffset int) {
	c.rows = snapshot.ShiftForDisplayOffset(c.rows, deltaOffset)
}

// Row returns row i's cached primitives.
func (c *Cache) Row(i int) CachedRow {
	return c.rows[i]
}

// Len returns the number of rows the cache is sized for.
func (c *Cache) Len() int {
	return len(c.rows)
}

// Stats returns this frame's hit/miss tally.
func (c *Cache) Stats() Stats {
	return c.stats
}

// ResetStats zeroes the tally; callers call this once per frame before Rebuild.
func (c *Cache) ResetStats() {
	c.stats = Stats{}
}
