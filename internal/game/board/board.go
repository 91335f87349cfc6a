// Package board implements the battleship grid, positions and ship geometry.
package board

import (
	"strings"

	"github.com/ivanwe2/battleships/internal/apperrors"
)

// DefaultSize is the side length of a standard board.
const DefaultSize = 10

// CellState is the content of one board cell.
type CellState uint8

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
)

func (c CellState) String() string {
	switch c {
	case CellShip:
		return "ship"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	default:
		return "empty"
	}
}

// Attacked reports whether the cell already received a shot.
func (c CellState) Attacked() bool {
	return c == CellHit || c == CellMiss
}

// Board is a square grid of cells.
type Board struct {
	size  int
	cells [][]CellState
}

// New creates an empty size×size board.
func New(size int) *Board {
	if size <= 0 {
		size = DefaultSize
	}
	cells := make([][]CellState, size)
	for i := range cells {
		cells[i] = make([]CellState, size)
	}
	return &Board{size: size, cells: cells}
}

// Size returns the side length.
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.size && p.Col >= 0 && p.Col < b.size
}

// CellAt returns the state of the cell at p.
func (b *Board) CellAt(p Position) (CellState, error) {
	if !b.InBounds(p) {
		return CellEmpty, apperrors.ErrOutOfBounds
	}
	return b.cells[p.Row][p.Col], nil
}

// SetCell overwrites the cell at p.
func (b *Board) SetCell(p Position, state CellState) error {
	if !b.InBounds(p) {
		return apperrors.ErrOutOfBounds
	}
	b.cells[p.Row][p.Col] = state
	return nil
}

// CellsForShip returns the cells the ship would cover. It fails with
// OutOfBounds if any of them is off the board.
func (b *Board) CellsForShip(s *Ship) ([]Position, error) {
	cells := s.Cells()
	for _, c := range cells {
		if !b.InBounds(c) {
			return nil, apperrors.ErrOutOfBounds
		}
	}
	return cells, nil
}

// Count returns how many cells are in the given state.
func (b *Board) Count(state CellState) int {
	n := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c == state {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a deep copy of the grid.
func (b *Board) Snapshot() [][]CellState {
	out := make([][]CellState, b.size)
	for i, row := range b.cells {
		out[i] = append([]CellState(nil), row...)
	}
	return out
}

// Reset clears every cell.
func (b *Board) Reset() {
	for _, row := range b.cells {
		for i := range row {
			row[i] = CellEmpty
		}
	}
}

// String renders the board one row per line: '.' empty, '#' ship, 'X' hit,
// 'o' miss.
func (b *Board) String() string {
	var sb strings.Builder
	for r, row := range b.cells {
		for _, c := range row {
			switch c {
			case CellShip:
				sb.WriteByte('#')
			case CellHit:
				sb.WriteByte('X')
			case CellMiss:
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
		}
		if r < b.size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
