package puzzle

import "math/rand/v2"

// Orientation is the signed direction of one tab on one seam.
type Orientation int8

// Orientation values. A seam stores one value; the two pieces sharing
// it see it with opposite signs.
const (
	Hole Orientation = -1
	Flat Orientation = 0
	Bump Orientation = 1
)

// EdgeLayout holds the bump/hole orientation of every seam in a grid.
//
// Horizontal[r][c] is the seam between piece-row r-1 and piece-row r at
// column c; it has (rows+1) × cols cells. Vertical[r][c] is the seam
// between piece-column c-1 and piece-column c at row r; it has
// rows × (cols+1) cells. The outermost rows and columns stay Flat so no
// tab ever protrudes past the image edge.
type EdgeLayout struct {
	Rows       int
	Cols       int
	Horizontal [][]Orientation
	Vertical   [][]Orientation
}

// NewRand returns a deterministic random source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// GenerateLayout draws a random orientation for every interior seam of
// a rows × cols grid. Interior horizontal seams are visited first in
// row-major order, then interior vertical seams, so a given rng state
// always yields the same layout.
func GenerateLayout(rows, cols int, rng *rand.Rand) *EdgeLayout {
	l := &EdgeLayout{
		Rows:       rows,
		Cols:       cols,
		Horizontal: make([][]Orientation, rows+1),
		Vertical:   make([][]Orientation, rows),
	}
	for r := range l.Horizontal {
		l.Horizontal[r] = make([]Orientation, cols)
	}
	for r := range l.Vertical {
		l.Vertical[r] = make([]Orientation, cols+1)
	}

	for r := 1; r < rows; r++ {
		for c := 0; c < cols; c++ {
			l.Horizontal[r][c] = draw(rng)
		}
	}
	for r := 0; r < rows; r++ {
		for c := 1; c < cols; c++ {
			l.Vertical[r][c] = draw(rng)
		}
	}
	return l
}

// draw picks Hole or Bump with equal probability.
func draw(rng *rand.Rand) Orientation {
	if rng.IntN(2) == 0 {
		return Hole
	}
	return Bump
}
