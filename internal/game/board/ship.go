package board

import "github.com/ivanwe2/battleships/internal/apperrors"

// ShipType identifies a class of ship.
type ShipType string

const (
	Carrier    ShipType = "carrier"
	Battleship ShipType = "battleship"
	Cruiser    ShipType = "cruiser"
	Submarine  ShipType = "submarine"
	Destroyer  ShipType = "destroyer"
)

// ShipTypes lists every type, largest first.
var ShipTypes = []ShipType{Carrier, Battleship, Cruiser, Submarine, Destroyer}

var shipSizes = map[ShipType]int{
	Carrier:    5,
	Battleship: 4,
	Cruiser:    3,
	Submarine:  3,
	Destroyer:  2,
}

// SizeOf returns the number of cells a ship of type t covers, or 0 if t is
// unknown.
func SizeOf(t ShipType) int {
	return shipSizes[t]
}

// ParseShipType validates a ship type name.
func ParseShipType(s string) (ShipType, error) {
	t := ShipType(s)
	if _, ok := shipSizes[t]; !ok {
		return "", apperrors.ErrUnknownShip
	}
	return t, nil
}

// Orientation is the direction a ship extends from its anchor.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Toggle returns the other orientation.
func (o Orientation) Toggle() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// Ship is a placed (or candidate) ship. Occupied cells extend right from
// Anchor when horizontal and down when vertical.
type Ship struct {
	Type        ShipType    `json:"type"`
	Orientation Orientation `json:"orientation"`
	Anchor      Position    `json:"anchor"`
	Hits        int         `json:"hits"`
}

// NewShip creates an unhit ship.
func NewShip(t ShipType, anchor Position, o Orientation) *Ship {
	return &Ship{Type: t, Orientation: o, Anchor: anchor}
}

// Size returns the ship's length.
func (s *Ship) Size() int {
	return SizeOf(s.Type)
}

// Cells returns the occupied cells, anchor first. Cells may lie off the board.
func (s *Ship) Cells() []Position {
	n := s.Size()
	cells := make([]Position, n)
	for i := 0; i < n; i++ {
		if s.Orientation == Vertical {
			cells[i] = s.Anchor.Add(i, 0)
		} else {
			cells[i] = s.Anchor.Add(0, i)
		}
	}
	return cells
}

// Contains reports whether p is one of the occupied cells.
func (s *Ship) Contains(p Position) bool {
	n := s.Size()
	if s.Orientation == Vertical {
		return p.Col == s.Anchor.Col && p.Row >= s.Anchor.Row && p.Row < s.Anchor.Row+n
	}
	return p.Row == s.Anchor.Row && p.Col >= s.Anchor.Col && p.Col < s.Anchor.Col+n
}

// BufferZone returns every cell orthogonally or diagonally adjacent to the
// ship, clipped to a size×size board, excluding the occupied cells.
func (s *Ship) BufferZone(size int) PositionSet {
	zone := make(PositionSet)
	for _, c := range s.Cells() {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				n := c.Add(dr, dc)
				if n.Row < 0 || n.Row >= size || n.Col < 0 || n.Col >= size {
					continue
				}
				if s.Contains(n) {
					continue
				}
				zone.Add(n)
			}
		}
	}
	return zone
}

// Hit records one more hit. Hits never exceed Size.
func (s *Ship) Hit() {
	if s.Hits < s.Size() {
		s.Hits++
	}
}

// Sunk reports whether every cell has been hit.
func (s *Ship) Sunk() bool {
	return s.Hits == s.Size()
}

// Clone returns a copy of the ship.
func (s *Ship) Clone() *Ship {
	c := *s
	return &c
}
