package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/fkolbe/jigsaw/pkg/mask"
	"github.com/fkolbe/jigsaw/pkg/puzzle"
)

// testSource builds an image whose pixel colors encode their coordinates.
func testSource(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func TestPieceDimensions(t *testing.T) {
	geom := puzzle.NewTabGeometry(8)
	src := testSource(100, 80)
	box := image.Rect(0, 0, 50, 40)
	m := mask.Render(box.Dx(), box.Dy(), puzzle.Edges{}, geom)

	out := Piece(src, box, m, geom.Pad)
	if out.Rect.Dx() != m.Rect.Dx() || out.Rect.Dy() != m.Rect.Dy() {
		t.Errorf("output %dx%d, want mask size %dx%d", out.Rect.Dx(), out.Rect.Dy(), m.Rect.Dx(), m.Rect.Dy())
	}
}

func TestPieceCornerClamping(t *testing.T) {
	// The top-left piece's crop window is clamped at the image origin;
	// the paste offset must shift so source (0,0) lands at canvas
	// (pad,pad), exactly under the mask's rectangle corner.
	geom := puzzle.NewTabGeometry(8)
	pad := geom.Pad
	src := testSource(100, 80)
	box := image.Rect(0, 0, 50, 40)
	m := mask.Render(box.Dx(), box.Dy(), puzzle.Edges{}, geom)

	out := Piece(src, box, m, pad)

	got := out.NRGBAAt(pad, pad)
	if got.R != 0 || got.G != 0 || got.A != 255 {
		t.Errorf("canvas (pad,pad) = %+v, want source (0,0) opaque", got)
	}
	got = out.NRGBAAt(pad+10, pad+20)
	if got.R != 10 || got.G != 20 {
		t.Errorf("canvas (pad+10,pad+20) = %+v, want source (10,20)", got)
	}

	// Clamped margin has no image content and the mask keeps it
	// transparent.
	if a := out.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("clamped corner alpha = %d, want 0", a)
	}
}

func TestPieceInteriorWindow(t *testing.T) {
	// An interior piece's window is not clamped, so canvas (pad,pad)
	// shows the box's own top-left source pixel.
	geom := puzzle.NewTabGeometry(8)
	pad := geom.Pad
	src := testSource(100, 80)
	box := image.Rect(50, 40, 100, 80)
	m := mask.Render(box.Dx(), box.Dy(), puzzle.Edges{}, geom)

	out := Piece(src, box, m, pad)

	got := out.NRGBAAt(pad, pad)
	if got.R != 50 || got.G != 40 {
		t.Errorf("canvas (pad,pad) = %+v, want source (50,40)", got)
	}

	// The padding band carries image content here, but the flat mask
	// still hides it.
	if a := out.NRGBAAt(pad-5, pad+10).A; a != 0 {
		t.Errorf("padding alpha = %d, want 0", a)
	}
}

func TestPieceMaskControlsAlpha(t *testing.T) {
	geom := puzzle.NewTabGeometry(8)
	pad := geom.Pad
	src := testSource(100, 80)
	box := image.Rect(0, 0, 50, 40)
	m := mask.Render(box.Dx(), box.Dy(), puzzle.Edges{Right: puzzle.Bump}, geom)

	out := Piece(src, box, m, pad)

	// The bump pokes past the box into the padding band; there the
	// pixels stay opaque and show source content from beyond the box.
	cy := pad + box.Dy()/2
	bumpX := pad + box.Dx() + geom.Offset
	got := out.NRGBAAt(bumpX, cy)
	if got.A != 255 {
		t.Fatalf("bump pixel alpha = %d, want 255", got.A)
	}
	if want := uint8(box.Dx() + geom.Offset); got.R != want {
		t.Errorf("bump pixel R = %d, want %d (source column)", got.R, want)
	}
}
