package puzzle

import "math"

// MinTabRadius is the smallest tab radius ever used, so tabs stay
// visible on tiny pieces.
const MinTabRadius = 8

// TabGeometry holds the tab dimensions shared by every piece of one
// split. Using a single geometry keeps opposing bump/hole pairs
// pixel-identical in size so seams align.
type TabGeometry struct {
	Radius int // radius of the tab's circular head
	Neck   int // half-width of the rectangular connector
	Offset int // distance from the seam to the head's center
	Pad    int // canvas margin so protruding tabs fit
}

// NewTabGeometry derives neck, offset, and pad from the tab radius.
func NewTabGeometry(radius int) TabGeometry {
	return TabGeometry{
		Radius: radius,
		Neck:   max(2, int(math.Round(float64(radius)*0.45))),
		Offset: max(1, int(math.Round(float64(radius)*0.6))),
		Pad:    2*radius + 2,
	}
}

// SharedTabRadius computes the one tab radius used by the whole grid:
// a fifth of the smallest cell dimension, but never below
// [MinTabRadius]. xBounds and yBounds are the boundary lists of the
// width and height axes.
//
// A radius larger than about half the smaller cell dimension produces
// self-overlapping tab shapes. That is a degenerate input, not an
// error; the renderer draws it as specified.
func SharedTabRadius(xBounds, yBounds []int) int {
	m := min(MinSegment(xBounds), MinSegment(yBounds))
	return max(MinTabRadius, m/5)
}
