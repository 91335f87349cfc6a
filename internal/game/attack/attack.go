// Package attack resolves shots against a fleet and tracks the shots a player
// has fired.
package attack

import (
	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/board"
)

// Outcome is the result of one resolved cell.
type Outcome struct {
	Position  board.Position `json:"position"`
	Hit       bool           `json:"hit"`
	Destroyed board.ShipType `json:"destroyed,omitempty"`
	Munition  Munition       `json:"munition"`
}

// Resolve determines the outcome of a shot at pos without mutating anything.
// A position already in attacked is rejected with ErrDuplicateAttack.
// Destroyed is set when the hit would bring the ship's hit count to its size.
func Resolve(ships []*board.Ship, attacked board.PositionSet, pos board.Position) (Outcome, error) {
	if attacked.Has(pos) {
		return Outcome{}, apperrors.ErrDuplicateAttack
	}
	out := Outcome{Position: pos, Munition: None}
	for _, s := range ships {
		if !s.Contains(pos) {
			continue
		}
		out.Hit = true
		if s.Hits+1 >= s.Size() {
			out.Destroyed = s.Type
		}
		break
	}
	return out, nil
}

// AllSunk reports whether every ship has been sunk. An empty fleet is never
// sunk.
func AllSunk(ships []*board.Ship) bool {
	if len(ships) == 0 {
		return false
	}
	for _, s := range ships {
		if !s.Sunk() {
			return false
		}
	}
	return true
}

// Defense is a player's own board under fire. Each position is resolved at
// most once and its outcome is kept so replayed attacks can be answered
// without changing state.
type Defense struct {
	board    *board.Board
	ships    []*board.Ship
	attacked board.PositionSet
	results  map[board.Position]Outcome
}

// NewDefense takes ownership of b and ships.
func NewDefense(b *board.Board, ships []*board.Ship) *Defense {
	return &Defense{
		board:    b,
		ships:    ships,
		attacked: make(board.PositionSet),
		results:  make(map[board.Position]Outcome),
	}
}

// Receive resolves a single shot and marks the board.
func (d *Defense) Receive(pos board.Position) (Outcome, error) {
	return d.receive(pos, None)
}

func (d *Defense) receive(pos board.Position, m Munition) (Outcome, error) {
	if !d.board.InBounds(pos) {
		return Outcome{}, apperrors.ErrOutOfBounds
	}
	out, err := Resolve(d.ships, d.attacked, pos)
	if err != nil {
		return Outcome{}, err
	}
	out.Munition = m

	state := board.CellMiss
	if out.Hit {
		state = board.CellHit
		for _, s := range d.ships {
			if s.Contains(pos) {
				s.Hit()
				break
			}
		}
	}
	_ = d.board.SetCell(pos, state)
	d.attacked.Add(pos)
	d.results[pos] = out
	return out, nil
}

// ReceiveArea resolves every in-bounds cell of the munition's pattern through
// the single-cell path. Cells already attacked are skipped. Resolution stops
// as soon as the whole fleet is sunk. If no cell could be resolved the call
// fails with ErrDuplicateAttack and nothing changes.
func (d *Defense) ReceiveArea(anchor board.Position, m Munition) ([]Outcome, error) {
	if !d.board.InBounds(anchor) {
		return nil, apperrors.ErrOutOfBounds
	}
	var outcomes []Outcome
	for _, p := range Pattern(m, anchor, d.board.Size()) {
		if d.attacked.Has(p) {
			continue
		}
		out, err := d.receive(p, m)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
		if d.AllSunk() {
			break
		}
	}
	if len(outcomes) == 0 {
		return nil, apperrors.ErrDuplicateAttack
	}
	return outcomes, nil
}

// Result returns the stored outcome for a position that was already attacked.
func (d *Defense) Result(pos board.Position) (Outcome, bool) {
	out, ok := d.results[pos]
	return out, ok
}

// Attacked reports whether pos has been shot at.
func (d *Defense) Attacked(pos board.Position) bool {
	return d.attacked.Has(pos)
}

// AllSunk reports whether the defended fleet is gone.
func (d *Defense) AllSunk() bool {
	return AllSunk(d.ships)
}

// Board returns the defended board.
func (d *Defense) Board() *board.Board {
	return d.board
}

// Ships returns the defended ships.
func (d *Defense) Ships() []*board.Ship {
	return d.ships
}

// Record is the attacker's log of shots at the opponent, in firing order.
type Record struct {
	outcomes []Outcome
	seen     board.PositionSet
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{seen: make(board.PositionSet)}
}

// Has reports whether pos was already fired at.
func (r *Record) Has(pos board.Position) bool {
	return r.seen.Has(pos)
}

// Add stores an outcome. A second outcome for the same position is rejected.
func (r *Record) Add(o Outcome) error {
	if r.seen.Has(o.Position) {
		return apperrors.ErrDuplicateAttack
	}
	r.seen.Add(o.Position)
	r.outcomes = append(r.outcomes, o)
	return nil
}

// Outcomes returns the recorded shots in order.
func (r *Record) Outcomes() []Outcome {
	return r.outcomes
}

// Attacked returns the set of positions fired at.
func (r *Record) Attacked() board.PositionSet {
	return r.seen
}

// Destroyed counts the ships the record reports as sunk.
func (r *Record) Destroyed() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Destroyed != "" {
			n++
		}
	}
	return n
}

// Hits counts the hits in the record.
func (r *Record) Hits() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Hit {
			n++
		}
	}
	return n
}
