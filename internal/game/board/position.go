package board

import (
	"fmt"
	"sort"
)

// Position is a (row, col) coordinate. Rows are labelled A-J in text form.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Add returns p shifted by the offset.
func (p Position) Add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// String formats p as "A5" for row 0, col 4. Rows beyond Z fall back to
// "(r,c)".
func (p Position) String() string {
	if p.Row < 0 || p.Row >= 26 || p.Col < 0 {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'A'+p.Row, p.Col+1)
}

// PositionSet is a set of positions.
type PositionSet map[Position]struct{}

// NewPositionSet builds a set from the given positions.
func NewPositionSet(ps ...Position) PositionSet {
	s := make(PositionSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s PositionSet) Add(p Position) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s PositionSet) Has(p Position) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in row-major order.
func (s PositionSet) Sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
