package composer

import (
	"image/color"
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestClampF(t *testing.T) {
	cases := []struct {
		v, lo, hi, want float32
	}{
		{0.5, 1, 2, 1},
		{3, 1, 2, 2},
		{1.5, 1, 2, 1.5},
	}
	for _, c := range cases {
		if got := clampF(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("clampF(%v,%v,%v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestMinF(t *testing.T) {
	if minF(3, 5) != 3 {
		t.Errorf("minF(3,5) should be 3")
	}
	if minF(5, 3) != 3 {
		t.Errorf("minF(5,3) should be 3")
	}
}

func TestToRGBAf(t *testing.T) {
	got := toRGBAf(color.RGBA{R: 255, G: 0, B: 128, A: 255})
	if got[0] != 1 || got[1] != 0 || got[3] != 1 {
		t.Errorf("toRGBAf mismatched channels: %v", got)
	}
}

func TestFixedToFloat(t *testing.T) {
	if got := fixedToFloat(fixed.I(4)); got != 4 {
		t.Errorf("fixedToFloat(I(4)) = %v, want 4", got)
	}
}

func TestOrthoMatrixMapsCorners(t *testing.T) {
	m := orthoMatrix(0, 800, 600, 0)
	// top-left (0,0) should map to clip-space (-1, 1).
	x := m[0]*0 + m[4]*0 + m[12]
	y := m[1]*0 + m[5]*0 + m[13]
	if x != -1 || y != 1 {
		t.Errorf("origin mapped to (%v,%v), want (-1,1)", x, y)
	}
	// bottom-right (800,600) should map to clip-space (1, -1), since the
	// matrix flips Y for a top-left pixel origin.
	x = m[0]*800 + m[4]*600 + m[12]
	y = m[1]*800 + m[5]*600 + m[13]
	if x != 1 || y != -1 {
		t.Errorf("bottom-right mapped to (%v,%v), want (1,-1)", x, y)
	}
}

func TestCursorHollowStrokeClampsUpToOnePixel(t *testing.T) {
	c := &Composer{CellWidth: 4, CellHeight: 4}
	// cellWidth*0.1 = 0.4, clamps up to the 1px floor, well under the
	// min(cw,ch)/2 = 2px ceiling.
	stroke := clampF(c.CellWidth*0.1, 1, minF(c.CellWidth, c.CellHeight)/2)
	if stroke != 1 {
		t.Errorf("stroke = %v, want 1", stroke)
	}
}
