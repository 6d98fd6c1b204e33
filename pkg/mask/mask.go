// Package mask renders the opaque/transparent silhouette of a single
// puzzle piece.
//
// The silhouette is built from an ordered sequence of primitive fills
// on a drawing context: the piece's base rectangle first, then one tab
// per non-flat edge. A bump is a filled neck rectangle plus a filled
// disk protruding past the seam; a hole is the same neck-and-disk shape
// erased from the interior. Later fills override earlier ones inside
// their footprint, so operation order matters and is fixed: base, top,
// right, bottom, left.
package mask

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/fkolbe/jigsaw/pkg/puzzle"
)

// Render draws the silhouette of a piece with the given nominal size
// and edge orientations, returning an 8-bit alpha mask. The canvas is
// the nominal rectangle padded by geom.Pad on every side so bumps fit.
func Render(width, height int, edges puzzle.Edges, geom puzzle.TabGeometry) *image.Alpha {
	pad := geom.Pad
	c := newCanvas(width+2*pad, height+2*pad)

	c.rect(pad, pad, pad+width-1, pad+height-1, true)

	addTopBottom(c, width, height, pad, edges.Top, true, geom)
	addLeftRight(c, width, height, pad, edges.Right, false, geom)
	addTopBottom(c, width, height, pad, edges.Bottom, false, geom)
	addLeftRight(c, width, height, pad, edges.Left, true, geom)

	return c.alpha()
}

// Size returns the canvas dimensions Render will produce for a piece
// of the given nominal size.
func Size(width, height int, geom puzzle.TabGeometry) (int, int) {
	return width + 2*geom.Pad, height + 2*geom.Pad
}

// addTopBottom draws the tab crossing a horizontal seam. The neck and
// disk run along the vertical axis, centered at the piece's horizontal
// midpoint. sign conventions flip between top and bottom so "outward"
// always points away from the interior.
func addTopBottom(c canvas, width, height, pad int, o puzzle.Orientation, top bool, geom puzzle.TabGeometry) {
	if o == puzzle.Flat {
		return
	}
	cx := pad + width/2
	boundaryY := pad
	insideY := pad
	signOut := -1
	if !top {
		boundaryY = pad + height
		insideY = boundaryY - 1
		signOut = 1
	}
	signIn := -signOut

	if o == puzzle.Bump {
		c.rect(cx-geom.Neck, insideY, cx+geom.Neck, boundaryY+signOut*geom.Offset, true)
		c.disk(cx, boundaryY+signOut*geom.Offset, geom.Radius, true)
	} else {
		c.rect(cx-geom.Neck, insideY, cx+geom.Neck, insideY+signIn*geom.Offset, false)
		c.disk(cx, boundaryY+signIn*geom.Offset, geom.Radius, false)
	}
}

// addLeftRight draws the tab crossing a vertical seam, the transposed
// counterpart of addTopBottom.
func addLeftRight(c canvas, width, height, pad int, o puzzle.Orientation, left bool, geom puzzle.TabGeometry) {
	if o == puzzle.Flat {
		return
	}
	cy := pad + height/2
	boundaryX := pad
	insideX := pad
	signOut := -1
	if !left {
		boundaryX = pad + width
		insideX = boundaryX - 1
		signOut = 1
	}
	signIn := -signOut

	if o == puzzle.Bump {
		c.rect(insideX, cy-geom.Neck, boundaryX+signOut*geom.Offset, cy+geom.Neck, true)
		c.disk(boundaryX+signOut*geom.Offset, cy, geom.Radius, true)
	} else {
		c.rect(insideX, cy-geom.Neck, insideX+signIn*geom.Offset, cy+geom.Neck, false)
		c.disk(boundaryX+signIn*geom.Offset, cy, geom.Radius, false)
	}
}

// canvas wraps a gg context used as a grayscale coverage buffer:
// white marks opaque piece area, black (or untouched background)
// marks transparency.
type canvas struct {
	dc *gg.Context
}

func newCanvas(w, h int) canvas {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()
	return canvas{dc: dc}
}

// rect fills the inclusive pixel box (x0,y0)-(x1,y1). Corners may be
// given in any order.
func (c canvas) rect(x0, y0, x1, y1 int, opaque bool) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	c.setColor(opaque)
	c.dc.DrawRectangle(float64(x0), float64(y0), float64(x1-x0+1), float64(y1-y0+1))
	c.dc.Fill()
}

// disk fills the disk whose inclusive pixel bounding box is
// (cx-r,cy-r)-(cx+r,cy+r).
func (c canvas) disk(cx, cy, r int, opaque bool) {
	c.setColor(opaque)
	c.dc.DrawCircle(float64(cx)+0.5, float64(cy)+0.5, float64(r)+0.5)
	c.dc.Fill()
}

func (c canvas) setColor(opaque bool) {
	if opaque {
		c.dc.SetColor(color.White)
	} else {
		c.dc.SetColor(color.Black)
	}
}

// alpha converts the grayscale coverage buffer into an alpha mask.
func (c canvas) alpha() *image.Alpha {
	src := c.dc.Image().(*image.RGBA)
	b := src.Bounds()
	m := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		mi := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			// All fills are pure white or black, so the red channel
			// carries the full coverage value.
			m.Pix[mi] = src.Pix[si]
			si += 4
			mi++
		}
	}
	return m
}
