package mouseenc

import (
	"bytes"
	"testing"
)

func TestEncodeButtonSGR(t *testing.T) {
	b, ok := EncodeButton(MouseMode|SGRMouse, ButtonLeft, true, 4, 2, Modifiers{})
	if !ok || !bytes.Equal(b, []byte("\x1b[<0;5;3M")) {
		t.Errorf("sgr press: got %q, %v", b, ok)
	}

	b, ok = EncodeButton(MouseMode|SGRMouse, ButtonLeft, false, 4, 2, Modifiers{})
	if !ok || !bytes.Equal(b, []byte("\x1b[<0;5;3m")) {
		t.Errorf("sgr release: got %q, %v", b, ok)
	}
}

func TestEncodeButtonModifiers(t *testing.T) {
	b, ok := EncodeButton(MouseMode|SGRMouse, ButtonRight, true, 0, 0, Modifiers{Shift: true, Control: true})
	if !ok || !bytes.Equal(b, []byte("\x1b[<22;1;1M")) {
		t.Errorf("modified button: got %q, %v", b, ok)
	}
}

func TestEncodeButtonOtherSuppressed(t *testing.T) {
	_, ok := EncodeButton(MouseMode|SGRMouse, ButtonOther, true, 0, 0, Modifiers{})
	if ok {
		t.Error("ButtonOther should suppress the report")
	}
}

func TestEncodeButtonRequiresMouseMode(t *testing.T) {
	_, ok := EncodeButton(SGRMouse, ButtonLeft, true, 0, 0, Modifiers{})
	if ok {
		t.Error("without MouseMode the report should be suppressed")
	}
}

func TestEncodeButtonLegacyNormal(t *testing.T) {
	b, ok := EncodeButton(MouseMode, ButtonLeft, true, 0, 0, Modifiers{})
	if !ok || !bytes.Equal(b, []byte{0x1b, '[', 'M', 32, 33, 33}) {
		t.Errorf("legacy normal: got %v, %v", b, ok)
	}
}

func TestEncodeButtonLegacyCapacity(t *testing.T) {
	_, ok := EncodeButton(MouseMode, ButtonLeft, true, 300, 0, Modifiers{})
	if ok {
		t.Error("legacy normal beyond capacity 223 should be suppressed")
	}
}

func TestEncodeButtonUTF8NormalWide(t *testing.T) {
	b, ok := EncodeButton(MouseMode|UTF8Mouse, ButtonLeft, true, 200, 0, Modifiers{})
	if !ok {
		t.Fatal("utf8 normal should encode wide columns")
	}
	if len(b) != 3+1+2+1 {
		t.Errorf("expected two-byte wide column encoding, got %v", b)
	}
}

func TestEncodeButtonUTF8NormalBoundaryColumn(t *testing.T) {
	// col=94 -> pos=95 -> v=127, the last value that must stay single-byte;
	// col=95 -> pos=96 -> v=128, the first that must switch to two bytes.
	b, ok := EncodeButton(MouseMode|UTF8Mouse, ButtonLeft, true, 94, 0, Modifiers{})
	if !ok {
		t.Fatal("expected encode to succeed at col=94")
	}
	if len(b) != 3+1+1+1 {
		t.Errorf("expected single-byte column at the v=127 boundary, got %v", b)
	}

	b, ok = EncodeButton(MouseMode|UTF8Mouse, ButtonLeft, true, 95, 0, Modifiers{})
	if !ok {
		t.Fatal("expected encode to succeed at col=95")
	}
	if len(b) != 3+1+2+1 {
		t.Errorf("expected two-byte column at the v=128 boundary, got %v", b)
	}
}

func TestEncodeMotionRequiresMotionOrDragMode(t *testing.T) {
	_, ok := EncodeMotion(SGRMouse, ButtonNone, 0, 0, Modifiers{})
	if ok {
		t.Error("motion without MOUSE_MOTION|MOUSE_DRAG should be suppressed")
	}
}

func TestEncodeMotionDragOnlySuppressesNoButton(t *testing.T) {
	_, ok := EncodeMotion(MouseDrag|SGRMouse, ButtonNone, 0, 0, Modifiers{})
	if ok {
		t.Error("MOUSE_DRAG mode should suppress no-button motion")
	}

	b, ok := EncodeMotion(MouseDrag|SGRMouse, ButtonLeft, 1, 1, Modifiers{})
	if !ok || !bytes.Equal(b, []byte("\x1b[<32;2;2M")) {
		t.Errorf("drag motion: got %q, %v", b, ok)
	}
}

func TestEncodeMotionFullReportsNoButton(t *testing.T) {
	b, ok := EncodeMotion(MouseMotion|SGRMouse, ButtonNone, 0, 0, Modifiers{})
	if !ok || !bytes.Equal(b, []byte("\x1b[<35;1;1M")) {
		t.Errorf("no-button motion under MOUSE_MOTION: got %q, %v", b, ok)
	}
}

func TestEncodeScroll(t *testing.T) {
	reports := EncodeScroll(MouseMode|SGRMouse, 3, Modifiers{})
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for _, r := range reports {
		if !bytes.Equal(r, []byte("\x1b[<64;1;1M")) {
			t.Errorf("scroll up report: got %q", r)
		}
	}

	down := EncodeScroll(MouseMode|SGRMouse, -1, Modifiers{})
	if len(down) != 1 || !bytes.Equal(down[0], []byte("\x1b[<65;1;1M")) {
		t.Errorf("scroll down report: got %v", down)
	}
}

func TestEncodeScrollRequiresMouseMode(t *testing.T) {
	reports := EncodeScroll(SGRMouse, 3, Modifiers{})
	if reports != nil {
		t.Error("scroll without MouseMode should produce no reports")
	}
}

func TestEncodeAlternateScrollArrows(t *testing.T) {
	mode := AltScreen | AlternateScroll
	out := EncodeAlternateScrollArrows(mode, 2, true, false)
	if len(out) != 2 {
		t.Fatalf("expected 2 arrow escapes, got %d", len(out))
	}
	for _, b := range out {
		if !bytes.Equal(b, []byte("\x1bOA")) {
			t.Errorf("up arrow fallback: got %q", b)
		}
	}

	out = EncodeAlternateScrollArrows(mode, -1, true, false)
	if len(out) != 1 || !bytes.Equal(out[0], []byte("\x1bOB")) {
		t.Errorf("down arrow fallback: got %v", out)
	}
}

func TestEncodeAlternateScrollArrowsSuppressedCases(t *testing.T) {
	mode := AltScreen | AlternateScroll
	if out := EncodeAlternateScrollArrows(mode, 2, true, true); out != nil {
		t.Error("shift held should suppress the arrow fallback")
	}
	if out := EncodeAlternateScrollArrows(mode, 2, false, false); out != nil {
		t.Error("alternate scroll setting off should suppress the fallback")
	}
	if out := EncodeAlternateScrollArrows(AlternateScroll, 2, true, false); out != nil {
		t.Error("outside alt screen should suppress the fallback")
	}
	if out := EncodeAlternateScrollArrows(mode|MouseMode, 2, true, false); out != nil {
		t.Error("in mouse mode the mouse report takes over, fallback suppressed")
	}
}

func TestHitTestBasic(t *testing.T) {
	p := HitTest(25, 10, 10, 20, 80, 24, 0)
	if p.Col != 2 || p.Line != 0 {
		t.Errorf("got %+v", p)
	}
}

func TestHitTestSideMidpoint(t *testing.T) {
	p := HitTest(24, 0, 10, 20, 80, 24, 0)
	if p.Col != 2 || p.Side != SideLeft {
		t.Errorf("just left of midpoint should be Left, got %+v", p)
	}
	p = HitTest(26, 0, 10, 20, 80, 24, 0)
	if p.Col != 2 || p.Side != SideRight {
		t.Errorf("past midpoint should be Right, got %+v", p)
	}
}

func TestHitTestClampColumn(t *testing.T) {
	p := HitTest(10000, 0, 10, 20, 80, 24, 0)
	if p.Col != 79 || p.Side != SideRight {
		t.Errorf("past last column should clamp to last col with Side Right, got %+v", p)
	}
}

func TestHitTestClampLines(t *testing.T) {
	p := HitTest(0, 100000, 10, 20, 80, 24, 0)
	if p.Line != 23 || p.Side != SideRight {
		t.Errorf("below bottommost should clamp with Side Right, got %+v", p)
	}

	p = HitTest(0, 0, 10, 20, 80, 24, 5)
	if p.Line != 0 || p.Side != SideLeft {
		t.Errorf("scrolled-back negative line should clamp to 0 with Side Left, got %+v", p)
	}
}
