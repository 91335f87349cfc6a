package relay

import (
	"context"
	"slices"
	"sync"
)

// Room is the relay's record of one game: who joined, in join order, and
// who announced a complete fleet.
type Room struct {
	GameID    string   `json:"gameId"`
	Players   []string `json:"players"`
	Ready     []string `json:"ready"`
	Started   bool     `json:"started"`
	CreatedAt int64    `json:"createdAt"`
}

// Has reports whether name joined the room.
func (r *Room) Has(name string) bool {
	return slices.Contains(r.Players, name)
}

// Full reports whether both players joined.
func (r *Room) Full() bool {
	return len(r.Players) >= 2
}

// Other returns the opponent of name, or "".
func (r *Room) Other(name string) string {
	for _, p := range r.Players {
		if p != name {
			return p
		}
	}
	return ""
}

// First returns the player who moves first: the first to join.
func (r *Room) First() string {
	if len(r.Players) == 0 {
		return ""
	}
	return r.Players[0]
}

// MarkReady records a complete fleet for name.
func (r *Room) MarkReady(name string) {
	if !slices.Contains(r.Ready, name) {
		r.Ready = append(r.Ready, name)
	}
}

// AllReady reports whether both players announced their fleets.
func (r *Room) AllReady() bool {
	return r.Full() && len(r.Ready) >= 2
}

func (r *Room) clone() *Room {
	c := *r
	c.Players = slices.Clone(r.Players)
	c.Ready = slices.Clone(r.Ready)
	return &c
}

// RoomStore keeps rooms across connections. LoadRoom returns nil, nil for an
// unknown game.
type RoomStore interface {
	LoadRoom(ctx context.Context, gameID string) (*Room, error)
	SaveRoom(ctx context.Context, room *Room) error
	DeleteRoom(ctx context.Context, gameID string) error
	CountRooms(ctx context.Context) (int, error)
}

// MemoryStore is a RoomStore for a single relay process.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (m *MemoryStore) LoadRoom(_ context.Context, gameID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[gameID]
	if !ok {
		return nil, nil
	}
	return r.clone(), nil
}

func (m *MemoryStore) SaveRoom(_ context.Context, room *Room) error {
	if room == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.GameID] = room.clone()
	return nil
}

func (m *MemoryStore) DeleteRoom(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, gameID)
	return nil
}

func (m *MemoryStore) CountRooms(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms), nil
}
