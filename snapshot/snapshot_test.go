package snapshot

import (
	"image/color"
	"testing"

	headlessterm "github.com/danielgatis/go-headless-term"

	"github.com/simpleterm/simpleterm/config"
	"github.com/simpleterm/simpleterm/termsession"
)

func testSettings(args ...string) *config.Settings {
	s := config.Default()
	s.Shell.Kind = config.ShellWithArguments
	s.Shell.Program = "/bin/sh"
	s.Shell.Args = args
	return s
}

func waitForExit(t *testing.T, sess *termsession.Session) {
	t.Helper()
	for ev := range sess.Events() {
		if ev.Kind == termsession.EventExit {
			return
		}
	}
}

func TestTakeSnapshotCopiesVisibleText(t *testing.T) {
	sess, err := termsession.Start(testSettings("-c", "printf hi"), 10, 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Shutdown()
	waitForExit(t, sess)

	pal := config.FallbackPalette()
	snap, timing := TakeSnapshot(sess, 0, 3, 10, pal, 1.0)
	if timing.LockHold <= 0 {
		t.Error("expected non-zero lock-hold timing")
	}
	if snap.Rows[0][0].Char != 'h' || snap.Rows[0][1].Char != 'i' {
		t.Errorf("expected \"hi\" at row 0, got %q%q", snap.Rows[0][0].Char, snap.Rows[0][1].Char)
	}
	if snap.Rows[0][2].Char != ' ' {
		t.Errorf("expected blank padding, got %q", snap.Rows[0][2].Char)
	}
}

func TestTakeSnapshotCursorOutOfViewWhenScrolledUp(t *testing.T) {
	sess, err := termsession.Start(testSettings("-c", "sleep 5"), 10, 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sess.Shutdown()

	pal := config.FallbackPalette()
	snap, _ := TakeSnapshot(sess, 5, 3, 10, pal, 1.0)
	if snap.Cursor.Visible {
		t.Error("cursor 5 rows below a 3-line viewport should be scrolled out of view")
	}
}

func TestDirtyRowsNoPreviousMeansAllDirty(t *testing.T) {
	cur := &Snapshot{NumLines: 3, NumCols: 2, Rows: make([][]Cell, 3)}
	for i := range cur.Rows {
		cur.Rows[i] = make([]Cell, 2)
	}
	dirty := DirtyRows(cur, nil)
	for i, d := range dirty {
		if !d {
			t.Errorf("row %d should be dirty with no previous frame", i)
		}
	}
}

func TestDirtyRowsDimensionMismatch(t *testing.T) {
	cur := emptySnapshot(2, 2)
	prev := emptySnapshot(3, 2)
	dirty := DirtyRows(cur, prev)
	for i, d := range dirty {
		if !d {
			t.Errorf("row %d should be dirty on dimension mismatch", i)
		}
	}
}

func TestDirtyRowsUnchangedContentIsClean(t *testing.T) {
	cur := emptySnapshot(3, 2)
	prev := emptySnapshot(3, 2)
	dirty := DirtyRows(cur, prev)
	for i, d := range dirty {
		if d {
			t.Errorf("row %d should be clean, identical default content", i)
		}
	}
}

func TestDirtyRowsDetectsChangedCell(t *testing.T) {
	cur := emptySnapshot(3, 2)
	prev := emptySnapshot(3, 2)
	cur.Rows[1][0].Char = 'x'
	dirty := DirtyRows(cur, prev)
	if !dirty[1] {
		t.Error("row 1 changed, should be dirty")
	}
	if dirty[0] || dirty[2] {
		t.Error("rows 0 and 2 unchanged, should be clean")
	}
}

func TestDirtyRowsLargeOffsetDeltaMarksAllDirty(t *testing.T) {
	cur := emptySnapshot(3, 2)
	cur.DisplayOffset = 10
	prev := emptySnapshot(3, 2)
	dirty := DirtyRows(cur, prev)
	for i, d := range dirty {
		if !d {
			t.Errorf("row %d should be dirty, offset delta exceeds viewport", i)
		}
	}
}

func TestDirtyRowsShiftMapsSurvivingRows(t *testing.T) {
	prev := emptySnapshot(4, 2)
	prev.Rows[2][0].Char = 'z'
	cur := emptySnapshot(4, 2)
	cur.DisplayOffset = 1
	// row r in cur maps to old row r-1. cur is all blank ('z' was not
	// carried over to row 3), so row 3 (old index 2) should be dirty since
	// cur.Rows[3] is blank but prev.Rows[2] has 'z'.
	dirty := DirtyRows(cur, prev)
	if !dirty[3] {
		t.Error("row 3 maps to old row 2 which had different content, should be dirty")
	}
}

func TestDirtyRowsCursorMoveMarksBothRows(t *testing.T) {
	cur := emptySnapshot(3, 2)
	prev := emptySnapshot(3, 2)
	prev.Cursor = Cursor{Row: 0, Col: 0, Visible: true}
	cur.Cursor = Cursor{Row: 2, Col: 0, Visible: true}
	dirty := DirtyRows(cur, prev)
	if !dirty[0] || !dirty[2] {
		t.Errorf("expected source row 0 and destination row 2 dirty, got %v", dirty)
	}
	if dirty[1] {
		t.Error("row 1 uninvolved in the cursor move, should be clean")
	}
}

func TestShiftForDisplayOffsetDropsAndBlanks(t *testing.T) {
	cache := []int{10, 20, 30, 40}
	shifted := ShiftForDisplayOffset(cache, 1)
	want := []int{0, 10, 20, 30}
	for i := range want {
		if shifted[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, shifted[i], want[i])
		}
	}

	shifted = ShiftForDisplayOffset(cache, -1)
	want = []int{20, 30, 40, 0}
	for i := range want {
		if shifted[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, shifted[i], want[i])
		}
	}
}

func TestBlendTintHalfAlpha(t *testing.T) {
	base := color.RGBA{0, 0, 0, 255}
	overlay := color.RGBA{200, 200, 200, 255}
	got := blendTint(base, overlay, 0.5)
	if got.R != 100 || got.G != 100 || got.B != 100 {
		t.Errorf("expected 50%% blend to 100, got %+v", got)
	}
}

func TestEnsureMinimumContrastLeavesGoodContrastUnchanged(t *testing.T) {
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 255}
	got := ensureMinimumContrast(fg, bg, 4.5)
	if got != fg {
		t.Errorf("expected white-on-black to pass unchanged, got %+v", got)
	}
}

func TestEnsureMinimumContrastDisabledAtOrBelowOne(t *testing.T) {
	fg := color.RGBA{10, 10, 10, 255}
	bg := color.RGBA{12, 12, 12, 255}
	got := ensureMinimumContrast(fg, bg, 1.0)
	if got != fg {
		t.Errorf("minContrast<=1 should disable adjustment, got %+v", got)
	}
}

func TestEnsureMinimumContrastBoostsLowContrastPair(t *testing.T) {
	fg := color.RGBA{20, 20, 20, 255}
	bg := color.RGBA{10, 10, 10, 255}
	const want = 4.5
	got := ensureMinimumContrast(fg, bg, want)
	if got == fg {
		t.Fatal("expected fg to be adjusted for near-identical colors")
	}
	if ratio := contrastRatio(got, bg); ratio < want-0.05 {
		t.Errorf("contrastRatio(adjusted, bg) = %v, want >= %v", ratio, want)
	}
}

func TestResolveColorNamedAndIndexed(t *testing.T) {
	pal := config.FallbackPalette()

	fg := resolveColor(&headlessterm.NamedColor{Name: headlessterm.NamedColorForeground}, true, pal)
	if fg != pal.Foreground {
		t.Errorf("expected NamedColorForeground to resolve to palette foreground, got %+v", fg)
	}

	idx := resolveColor(&headlessterm.IndexedColor{Index: 1}, false, pal)
	if idx != pal.Entries[1] {
		t.Errorf("expected IndexedColor(1) to resolve to palette entry 1, got %+v", idx)
	}

	nilColor := resolveColor(nil, false, pal)
	if nilColor != pal.Background {
		t.Errorf("expected nil color to fall back to background, got %+v", nilColor)
	}
}

func emptySnapshot(numLines, numCols int) *Snapshot {
	s := &Snapshot{NumLines: numLines, NumCols: numCols, Rows: make([][]Cell, numLines)}
	for i := range s.Rows {
		row := make([]Cell, numCols)
		for c := range row {
			row[c] = Cell{Char: ' '}
		}
		s.Rows[i] = row
	}
	return s
}
