package attack

import (
	"fmt"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/board"
)

// Munition is the kind of shot fired. None is a plain single-cell shot.
type Munition string

const (
	None  Munition = "none"
	AreaA Munition = "area-a" // 2x2 block, anchor top-left
	AreaB Munition = "area-b" // horizontal pair, anchor left
)

// Specials lists the area munitions in display order.
var Specials = []Munition{AreaA, AreaB}

var patterns = map[Munition][]board.Position{
	None:  {{Row: 0, Col: 0}},
	AreaA: {{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}},
	AreaB: {{Row: 0, Col: 0}, {Row: 0, Col: 1}},
}

// ParseMunition accepts the wire names. An empty string means None.
func ParseMunition(s string) (Munition, error) {
	if s == "" {
		return None, nil
	}
	m := Munition(s)
	if _, ok := patterns[m]; !ok {
		return None, fmt.Errorf("unknown munition %q: %w", s, apperrors.ErrMalformedMessage)
	}
	return m, nil
}

// IsSpecial reports whether m covers more than one cell.
func (m Munition) IsSpecial() bool {
	return m != None && m != ""
}

// Pattern maps an anchor to the cells a munition covers on a size×size board.
// Offsets that fall off the board are dropped.
func Pattern(m Munition, anchor board.Position, size int) []board.Position {
	offsets, ok := patterns[m]
	if !ok {
		offsets = patterns[None]
	}
	cells := make([]board.Position, 0, len(offsets))
	for _, off := range offsets {
		p := anchor.Add(off.Row, off.Col)
		if p.Row < 0 || p.Row >= size || p.Col < 0 || p.Col >= size {
			continue
		}
		cells = append(cells, p)
	}
	return cells
}

// Munitions tracks how many specials of each type a player has left.
type Munitions struct {
	counts map[Munition]int
}

// DefaultMunitions is one area-a and two area-b.
func DefaultMunitions() *Munitions {
	return NewMunitions(map[Munition]int{AreaA: 1, AreaB: 2})
}

// NewMunitions copies the given counts. Negative counts become zero.
func NewMunitions(counts map[Munition]int) *Munitions {
	m := &Munitions{counts: make(map[Munition]int, len(counts))}
	for k, v := range counts {
		if v < 0 {
			v = 0
		}
		m.counts[k] = v
	}
	return m
}

// MunitionsFromConfig converts a name->count map.
func MunitionsFromConfig(counts map[string]int) (*Munitions, error) {
	typed := make(map[Munition]int, len(counts))
	for name, n := range counts {
		m, err := ParseMunition(name)
		if err != nil {
			return nil, err
		}
		if !m.IsSpecial() {
			continue
		}
		typed[m] = n
	}
	return NewMunitions(typed), nil
}

// Remaining returns the count left for m. Plain shots are unlimited and
// report -1.
func (m *Munitions) Remaining(t Munition) int {
	if !t.IsSpecial() {
		return -1
	}
	return m.counts[t]
}

// Available reports whether t can be fired now.
func (m *Munitions) Available(t Munition) bool {
	return !t.IsSpecial() || m.counts[t] > 0
}

// Use consumes one t. It fails with ErrNoMunitions instead of going negative.
func (m *Munitions) Use(t Munition) error {
	if !t.IsSpecial() {
		return nil
	}
	if m.counts[t] <= 0 {
		return apperrors.ErrNoMunitions
	}
	m.counts[t]--
	return nil
}

// Snapshot returns a copy of the counters.
func (m *Munitions) Snapshot() map[Munition]int {
	out := make(map[Munition]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}
