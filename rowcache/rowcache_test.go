package rowcache

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/simpleterm/simpleterm/snapshot"
)

var defaultBg = color.RGBA{0, 0, 0, 255}
var defaultFg = color.RGBA{255, 255, 255, 255}
var red = color.RGBA{200, 0, 0, 255}

func cellsFromString(s string, bg color.RGBA) []snapshot.Cell {
	cells := make([]snapshot.Cell, len(s))
	for i, r := range s {
		cells[i] = snapshot.Cell{Char: rune(r), Fg: defaultFg, Bg: bg}
	}
	return cells
}

func TestBuildBackgroundSpansMergesAdjacent(t *testing.T) {
	cells := cellsFromString("ab cd", defaultBg)
	cells[0].Bg = red
	cells[1].Bg = red
	spans, _ := BuildRow(cells, defaultBg)
	if len(spans) != 1 {
		t.Fatalf("expected 1 merged span, got %d: %+v", len(spans), spans)
	}
	if spans[0].StartCol != 0 || spans[0].Len != 2 || spans[0].Color != red {
		t.Errorf("got %+v", spans[0])
	}
}

func TestBuildBackgroundSpansBreaksOnColorChange(t *testing.T) {
	blue := color.RGBA{0, 0, 200, 255}
	cells := cellsFromString("abcd", defaultBg)
	cells[0].Bg = red
	cells[1].Bg = red
	cells[2].Bg = blue
	cells[3].Bg = blue
	spans, _ := BuildRow(cells, defaultBg)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Color != red || spans[1].Color != blue {
		t.Errorf("got %+v", spans)
	}
}

func TestBuildTextRunsBreaksOnBlank(t *testing.T) {
	cells := cellsFromString("ab cd", defaultBg)
	_, runs := BuildRow(cells, defaultBg)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs split by the blank, got %d: %+v", len(runs), runs)
	}
	if string(runs[0].Chars) != "ab" || string(runs[1].Chars) != "cd" {
		t.Errorf("got %q and %q", string(runs[0].Chars), string(runs[1].Chars))
	}
	if runs[1].StartCol != 3 || runs[1].EndCol != 5 {
		t.Errorf("expected second run at cols [3,5), got [%d,%d)", runs[1].StartCol, runs[1].EndCol)
	}
}

func TestBuildTextRunsSkipsWideCharSpacer(t *testing.T) {
	cells := []snapshot.Cell{
		{Char: '中', Fg: defaultFg, Bg: defaultBg, Flags: snapshot.FlagWideChar},
		{Char: 0, Fg: defaultFg, Bg: defaultBg, Flags: snapshot.FlagWideCharSpacer},
		{Char: 'x', Fg: defaultFg, Bg: defaultBg},
	}
	_, runs := BuildRow(cells, defaultBg)
	if len(runs) != 1 {
		t.Fatalf("expected the spacer to merge into one run, got %d: %+v", len(runs), runs)
	}
	if string(runs[0].Chars) != "中x" {
		t.Errorf("got %q", string(runs[0].Chars))
	}
}

func TestBuildTextRunsBreaksOnFgChange(t *testing.T) {
	cells := cellsFromString("ab", defaultBg)
	cells[1].Fg = red
	_, runs := BuildRow(cells, defaultBg)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, fg changed mid-run, got %d", len(runs))
	}
}

func TestBuildTextRunsBreaksOnBoldChange(t *testing.T) {
	cells := cellsFromString("ab", defaultBg)
	cells[1].Flags |= snapshot.FlagBold
	_, runs := BuildRow(cells, defaultBg)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, bold changed mid-run, got %d", len(runs))
	}
}

type fakeFace struct{}

func (fakeFace) Close() error { return nil }
func (fakeFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return image.Rectangle{}, nil, image.Point{}, 0, r != '?'
}
func (fakeFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return fixed.Rectangle26_6{}, 0, true
}
func (fakeFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) { return fixed.I(8), true }
func (fakeFace) Kern(r0, r1 rune) fixed.Int26_6            { return 0 }
func (fakeFace) Metrics() font.Metrics                     { return font.Metrics{} }

func TestShapeRunConstrainsAdvanceToCellWidth(t *testing.T) {
	shaper := NewShaper(fakeFace{})
	run := TextRun{Chars: []rune("abc")}
	glyphs := shaper.ShapeRun(run, fixed.I(10))
	for i, g := range glyphs {
		if g.X != fixed.I(10*i) {
			t.Errorf("glyph %d: expected x=%v, got %v", i, fixed.I(10*i), g.X)
		}
	}
}

func TestShapeRunSubstitutesMissingGlyph(t *testing.T) {
	shaper := NewShaper(fakeFace{})
	run := TextRun{Chars: []rune{'?'}}
	glyphs := shaper.ShapeRun(run, fixed.I(10))
	if glyphs[0].Rune != '�' {
		t.Errorf("expected replacement glyph for a missing rune, got %q", glyphs[0].Rune)
	}
}

func emptySnap(numLines, numCols int) *snapshot.Snapshot {
	s := &snapshot.Snapshot{NumLines: numLines, NumCols: numCols, Rows: make([][]snapshot.Cell, numLines)}
	for i := range s.Rows {
		row := make([]snapshot.Cell, numCols)
		for c := range row {
			row[c] = snapshot.Cell{Char: ' ', Fg: defaultFg, Bg: defaultBg}
		}
		s.Rows[i] = row
	}
	return s
}

func allDirty(n int) []bool {
	d := make([]bool, n)
	for i := range d {
		d[i] = true
	}
	return d
}

func TestCacheRebuildReusesCleanRows(t *testing.T) {
	cache := NewCache(NewShaper(fakeFace{}), 3)
	snap := emptySnap(3, 4)
	snap.Rows[0][0].Char = 'x'

	cache.ResetStats()
	cache.Rebuild(snap, allDirty(3), fixed.I(8), defaultBg)
	if stats := cache.Stats(); stats.TextMisses != 3 {
		t.Fatalf("first build should miss every row, got %+v", stats)
	}

	cache.ResetStats()
	dirty := []bool{false, false, false}
	cache.Rebuild(snap, dirty, fixed.I(8), defaultBg)
	stats := cache.Stats()
	if stats.TextHits != 3 || stats.TextMisses != 0 {
		t.Errorf("second build with nothing dirty should hit every row, got %+v", stats)
	}
	if len(cache.Row(0).Runs) != 1 {
		t.Errorf("expected the cached row 0 to keep its 'x' run")
	}
}

func TestCacheRebuildRebuildsDirtyRowOnly(t *testing.T) {
	cache := NewCache(NewShaper(fakeFace{}), 2)
	snap := emptySnap(2, 4)
	cache.Rebuild(snap, allDirty(2), fixed.I(8), defaultBg)

	snap.Rows[1][0].Char = 'y'
	cache.ResetStats()
	cache.Rebuild(snap, []bool{false, true}, fixed.I(8), defaultBg)
	stats := cache.Stats()
	if stats.TextHits != 1 || stats.TextMisses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", stats)
	}
	if len(cache.Row(1).Runs) != 1 || string(cache.Row(1).Runs[0].Chars) != "y" {
		t.Errorf("row 1 should have rebuilt to contain 'y', got %+v", cache.Row(1).Runs)
	}
}

func TestCacheShiftDropsAndUninitializesRows(t *testing.T) {
	cache := NewCache(NewShaper(fakeFace{}), 3)
	snap := emptySnap(3, 2)
	snap.Rows[1][0].Char = 'z'
	cache.Rebuild(snap, allDirty(3), fixed.I(8), defaultBg)

	cache.Shift(1)
	if cache.Row(0).Initialized {
		t.Error("row 0 has no surviving source after a +1 shift, should be uninitialized")
	}
	if !cache.Row(1).Initialized {
		t.Error("row 1 should hold old row 0's surviving content")
	}
	if !cache.Row(2).Initialized || len(cache.Row(2).Runs) == 0 {
		t.Error("row 2 should hold old row 1's content ('z')")
	}
}
