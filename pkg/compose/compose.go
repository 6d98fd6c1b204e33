// Package compose cuts the final piece rasters out of the source image.
//
// Given a piece's nominal bounding box and its rendered silhouette
// mask, it crops the padded region from the source (clamped to the
// image bounds), pastes the crop onto a transparent canvas of the
// mask's size, and applies the mask as the alpha channel. The output
// pixel grid lines up with the mask exactly, so two composited
// neighbors interlock the same way their masks do.
package compose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Piece produces the final RGBA raster for one puzzle piece.
//
// box is the piece's nominal rectangle in source-image coordinates, m
// the mask returned by mask.Render, and pad the canvas margin the mask
// was rendered with. The crop window is the box grown by pad on every
// side, clamped to the source bounds; clamped-off margin shifts the
// paste offset instead so image content stays aligned with the mask.
func Piece(src image.Image, box image.Rectangle, m *image.Alpha, pad int) *image.NRGBA {
	b := src.Bounds()
	window := image.Rect(box.Min.X-pad, box.Min.Y-pad, box.Max.X+pad, box.Max.Y+pad)
	crop := imaging.Crop(src, window.Intersect(b))

	canvas := imaging.New(m.Rect.Dx(), m.Rect.Dy(), color.NRGBA{})
	offset := image.Pt(
		max(0, b.Min.X-window.Min.X),
		max(0, b.Min.Y-window.Min.Y),
	)
	canvas = imaging.Paste(canvas, crop, offset)

	applyAlpha(canvas, m)
	return canvas
}

// applyAlpha replaces dst's alpha channel with the mask, leaving the
// color channels untouched. dst and m must have equal dimensions.
func applyAlpha(dst *image.NRGBA, m *image.Alpha) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		di := y * dst.Stride
		mi := y * m.Stride
		for x := 0; x < w; x++ {
			dst.Pix[di+x*4+3] = m.Pix[mi+x]
		}
	}
}
