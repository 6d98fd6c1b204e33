package puzzle

import "github.com/fkolbe/jigsaw/pkg/errors"

// Grid defines a rows × cols piece layout over an image.
type Grid struct {
	Rows int
	Cols int
}

// Validate checks that both dimensions are positive.
func (g Grid) Validate() error {
	if g.Rows <= 0 || g.Cols <= 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid dimensions must be positive, got %dx%d", g.Rows, g.Cols)
	}
	return nil
}

// Pieces returns the total number of pieces in the grid.
func (g Grid) Pieces() int {
	return g.Rows * g.Cols
}

// Bounds partitions total pixels into parts near-even integer segments
// and returns the parts+1 cumulative boundaries [0 ... total].
// The total%parts leftover pixels go to the first segments, so any two
// segment lengths differ by at most one.
//
// Callers must ensure total >= 0 and parts >= 1.
func Bounds(total, parts int) []int {
	base := total / parts
	extra := total % parts
	pts := make([]int, parts+1)
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		pts[i+1] = pts[i] + size
	}
	return pts
}

// MinSegment returns the smallest gap between adjacent boundaries.
func MinSegment(bounds []int) int {
	m := bounds[1] - bounds[0]
	for i := 1; i < len(bounds)-1; i++ {
		if g := bounds[i+1] - bounds[i]; g < m {
			m = g
		}
	}
	return m
}
