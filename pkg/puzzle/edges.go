package puzzle

// Edges holds the four edge orientations of one piece, as seen from
// that piece: Bump protrudes outward, Hole bites inward.
type Edges struct {
	Top    Orientation
	Right  Orientation
	Bottom Orientation
	Left   Orientation
}

// Resolve derives the edges of the piece at row r, column c.
//
// Each pair of facing edges reads the same layout cell: this piece's
// bottom is Horizontal[r+1][c] and the piece below reads the negation
// of that cell as its top, so the two always mate. The same holds for
// left/right via Vertical. r and c must be within the grid.
func (l *EdgeLayout) Resolve(r, c int) Edges {
	return Edges{
		Top:    -l.Horizontal[r][c],
		Right:  l.Vertical[r][c+1],
		Bottom: l.Horizontal[r+1][c],
		Left:   -l.Vertical[r][c],
	}
}
