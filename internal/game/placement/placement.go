// Package placement validates and commits ship placements.
package placement

import (
	"math/rand/v2"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/board"
)

// Limits maps each ship type to the number of ships of that type a fleet
// must contain. Types with a zero or missing entry are not part of the fleet.
type Limits map[board.ShipType]int

// DefaultLimits is one ship of every type.
func DefaultLimits() Limits {
	l := make(Limits, len(board.ShipTypes))
	for _, t := range board.ShipTypes {
		l[t] = 1
	}
	return l
}

// LimitsFromConfig converts a name->count map. Unknown names are rejected.
func LimitsFromConfig(counts map[string]int) (Limits, error) {
	l := make(Limits, len(counts))
	for name, n := range counts {
		t, err := board.ParseShipType(name)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			l[t] = n
		}
	}
	return l, nil
}

// Total returns the number of ships in a complete fleet.
func (l Limits) Total() int {
	n := 0
	for _, c := range l {
		n += c
	}
	return n
}

// Fleet is the placement set of one player.
type Fleet struct {
	limits Limits
	ships  []*board.Ship
	counts map[board.ShipType]int
}

// NewFleet creates an empty fleet.
func NewFleet(limits Limits) *Fleet {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &Fleet{
		limits: limits,
		counts: make(map[board.ShipType]int),
	}
}

// CanPlace checks a candidate against the board and the already placed ships.
// The first failing rule is returned: LimitReached, OutOfBounds, Overlap,
// TooClose.
func CanPlace(b *board.Board, f *Fleet, candidate *board.Ship) error {
	if candidate.Size() == 0 {
		return apperrors.ErrUnknownShip
	}
	if f.counts[candidate.Type] >= f.limits[candidate.Type] {
		return apperrors.ErrLimitReached
	}

	cells, err := b.CellsForShip(candidate)
	if err != nil {
		return err
	}

	for _, s := range f.ships {
		for _, c := range cells {
			if s.Contains(c) {
				return apperrors.ErrOverlap
			}
		}
	}

	for _, s := range f.ships {
		zone := s.BufferZone(b.Size())
		for _, c := range cells {
			if zone.Has(c) {
				return apperrors.ErrTooClose
			}
		}
	}
	return nil
}

// Place validates the candidate and, if legal, marks its cells on the board
// and adds it to the fleet.
func (f *Fleet) Place(b *board.Board, candidate *board.Ship) error {
	if err := CanPlace(b, f, candidate); err != nil {
		return err
	}
	for _, c := range candidate.Cells() {
		_ = b.SetCell(c, board.CellShip)
	}
	f.ships = append(f.ships, candidate)
	f.counts[candidate.Type]++
	return nil
}

// Remove takes the ship covering p off the board.
func (f *Fleet) Remove(b *board.Board, p board.Position) (*board.Ship, error) {
	for i, s := range f.ships {
		if !s.Contains(p) {
			continue
		}
		for _, c := range s.Cells() {
			_ = b.SetCell(c, board.CellEmpty)
		}
		f.ships = append(f.ships[:i], f.ships[i+1:]...)
		f.counts[s.Type]--
		return s, nil
	}
	return nil, apperrors.ErrNoShipAt
}

// Clear removes every ship.
func (f *Fleet) Clear(b *board.Board) {
	for _, s := range f.ships {
		for _, c := range s.Cells() {
			_ = b.SetCell(c, board.CellEmpty)
		}
	}
	f.ships = nil
	f.counts = make(map[board.ShipType]int)
}

// Complete reports whether every configured type reached its allowed count.
func (f *Fleet) Complete() bool {
	for t, n := range f.limits {
		if f.counts[t] < n {
			return false
		}
	}
	return true
}

// Remaining returns how many ships of t can still be placed.
func (f *Fleet) Remaining(t board.ShipType) int {
	return f.limits[t] - f.counts[t]
}

// Ships returns the placed ships. The slice must not be modified.
func (f *Fleet) Ships() []*board.Ship {
	return f.ships
}

// Limits returns the fleet composition.
func (f *Fleet) Limits() Limits {
	return f.limits
}

// Manifest lists the placed ship types in placement order without positions.
func (f *Fleet) Manifest() []board.ShipType {
	out := make([]board.ShipType, len(f.ships))
	for i, s := range f.ships {
		out[i] = s.Type
	}
	return out
}

// AutoPlace fills the remaining slots with random legal placements and
// reports whether the fleet ended up complete. Ships placed before the call
// are kept. A round that paints itself into a corner is rolled back and
// retried.
func AutoPlace(b *board.Board, f *Fleet, rng *rand.Rand) bool {
	const (
		rounds       = 20
		triesPerShip = 500
	)

	kept := len(f.ships)
	for round := 0; round < rounds; round++ {
		if fillRandom(b, f, rng, triesPerShip) {
			return true
		}
		for len(f.ships) > kept {
			last := f.ships[len(f.ships)-1]
			_, _ = f.Remove(b, last.Anchor)
		}
	}
	return false
}

func fillRandom(b *board.Board, f *Fleet, rng *rand.Rand, tries int) bool {
	for _, t := range board.ShipTypes {
		for f.Remaining(t) > 0 {
			placed := false
			for i := 0; i < tries && !placed; i++ {
				o := board.Horizontal
				if rng.IntN(2) == 1 {
					o = board.Vertical
				}
				anchor := board.Pos(rng.IntN(b.Size()), rng.IntN(b.Size()))
				placed = f.Place(b, board.NewShip(t, anchor, o)) == nil
			}
			if !placed {
				return false
			}
		}
	}
	return f.Complete()
}
