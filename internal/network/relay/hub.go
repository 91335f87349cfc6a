package relay

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

const storeTimeout = 3 * time.Second

// Hub routes messages between connected players. It never interprets game
// state beyond room membership and readiness: hit and miss are decided by
// the clients.
type Hub struct {
	store   RoomStore
	limiter *MessageLimiter

	mu    sync.Mutex
	conns map[*Conn]struct{}
	names map[string]*Conn
}

// NewHub creates a hub backed by store. Each connection may send up to
// maxPerSecond messages per second.
func NewHub(store RoomStore, maxPerSecond int) *Hub {
	return &Hub{
		store:   store,
		limiter: NewMessageLimiter(maxPerSecond),
		conns:   make(map[*Conn]struct{}),
		names:   make(map[string]*Conn),
	}
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	h.limiter.Remove(c.ID)
	// the room is kept so the player can rejoin
	if name := c.Name(); name != "" && h.names[name] == c {
		delete(h.names, name)
		logger.LogInfo("player %s disconnected (%s)", name, c.ID)
		h.broadcastPlayersLocked()
	}
}

// OnlineCount returns the number of open connections.
func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Players returns the registered player names, sorted.
func (h *Hub) Players() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playersLocked()
}

func (h *Hub) playersLocked() []string {
	out := make([]string, 0, len(h.names))
	for name := range h.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (h *Hub) broadcastPlayersLocked() {
	msg := protocol.MustNewMessage(protocol.MsgSetPlayers, protocol.PlayersPayload{Players: h.playersLocked()})
	for _, c := range h.names {
		c.SendMessage(msg)
	}
}

// CloseAll disconnects every player.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.Close()
	}
}

// Handle applies one inbound message. Messages are handled one at a time.
func (h *Hub) Handle(c *Conn, msg *protocol.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.Type {
	case protocol.MsgRegister:
		handleTyped(c, msg, func(p *protocol.RegisterPayload) { h.handleRegister(c, p) })
	case protocol.MsgLogout:
		h.handleLogout(c)
	case protocol.MsgInvite, protocol.MsgAcceptInvite:
		handleTyped(c, msg, func(p *protocol.InvitePayload) { h.handleInvite(c, msg, p) })
	case protocol.MsgJoinGame:
		handleTyped(c, msg, func(p *protocol.JoinGamePayload) { h.handleJoin(ctx, c, p) })
	case protocol.MsgShipsPlaced, protocol.MsgShipPlacement:
		handleTyped(c, msg, func(p *protocol.ShipsPlacedPayload) { h.handleShipsPlaced(ctx, c, msg, p.GameID) })
	case protocol.MsgAttack, protocol.MsgSpecialAttack, protocol.MsgAttackResult, protocol.MsgGameOver:
		handleTyped(c, msg, func(p *gameRef) { h.forward(ctx, c, msg, p.GameID) })
	case protocol.MsgLeaveGame:
		handleTyped(c, msg, func(p *protocol.LeaveGamePayload) { h.handleLeave(ctx, c, msg, p.GameID) })
	default:
		logger.LogWarn("unknown message %s from %s", msg.Type, c.ID)
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// gameRef is the part of every game message the hub routes on.
type gameRef struct {
	GameID string `json:"gameId"`
}

func handleTyped[T any](c *Conn, msg *protocol.Message, h func(*T)) {
	p, err := protocol.ParsePayload[T](msg)
	if err != nil {
		logger.LogWarn("bad %s from %s: %v", msg.Type, c.ID, err)
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h(p)
}

// bindNameLocked makes c the connection for name. A previous connection
// with the same name is replaced.
func (h *Hub) bindNameLocked(c *Conn, name string) {
	if old := c.Name(); old != "" && old != name && h.names[old] == c {
		delete(h.names, old)
	}
	if prev, ok := h.names[name]; ok && prev != c {
		logger.LogInfo("player %s moved from %s to %s", name, prev.ID, c.ID)
		prev.setName("")
		prev.Close()
	}
	c.setName(name)
	h.names[name] = c
}

func (h *Hub) handleRegister(c *Conn, p *protocol.RegisterPayload) {
	name := strings.TrimSpace(p.Username)
	if name == "" {
		c.SendMessage(protocol.MustNewMessage(protocol.MsgRegisterError, protocol.ErrorPayload{
			Code:    protocol.ErrCodeInvalidMsg,
			Message: "username must not be empty",
		}))
		return
	}
	h.bindNameLocked(c, name)
	c.SendMessage(protocol.MustNewMessage(protocol.MsgRegisterSuccess, protocol.RegisterPayload{Username: name}))
	h.broadcastPlayersLocked()
}

func (h *Hub) handleLogout(c *Conn) {
	name := c.Name()
	if name == "" {
		return
	}
	if h.names[name] == c {
		delete(h.names, name)
	}
	c.setName("")
	h.broadcastPlayersLocked()
}

func (h *Hub) handleInvite(c *Conn, msg *protocol.Message, p *protocol.InvitePayload) {
	if p.From == "" || p.From != c.Name() {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	target, ok := h.names[p.To]
	if !ok {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodePeerOffline))
		return
	}
	target.SendMessage(msg)
}

func (h *Hub) handleJoin(ctx context.Context, c *Conn, p *protocol.JoinGamePayload) {
	name := strings.TrimSpace(p.Player)
	if p.GameID == "" || name == "" {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if c.Name() != name {
		h.bindNameLocked(c, name)
		h.broadcastPlayersLocked()
	}

	room, err := h.store.LoadRoom(ctx, p.GameID)
	if err != nil {
		h.storeFailed(c, err)
		return
	}
	if room == nil {
		room = &Room{GameID: p.GameID, CreatedAt: time.Now().Unix()}
	}

	rejoin := room.Has(name)
	if !rejoin {
		if room.Full() {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeGameFull))
			return
		}
		room.Players = append(room.Players, name)
		if err := h.store.SaveRoom(ctx, room); err != nil {
			h.storeFailed(c, err)
			return
		}
	}
	c.setGame(room.GameID)
	logger.LogInfo("player %s joined %s (rejoin=%t)", name, room.GameID, rejoin)

	if !room.Full() {
		return
	}
	if rejoin {
		// replay what the player may have missed; clients ignore stale phases
		h.sendReady(room, name)
		if room.Started {
			c.SendMessage(h.startMessage(room))
		}
		return
	}
	for _, player := range room.Players {
		h.sendReady(room, player)
	}
}

func (h *Hub) sendReady(room *Room, player string) {
	if c, ok := h.names[player]; ok {
		c.SendMessage(protocol.MustNewMessage(protocol.MsgGameReady, protocol.GameReadyPayload{
			GameID:      room.GameID,
			FirstPlayer: room.First(),
			Opponent:    room.Other(player),
		}))
	}
}

func (h *Hub) startMessage(room *Room) *protocol.Message {
	return protocol.MustNewMessage(protocol.MsgGameStart, protocol.GameStartPayload{
		GameID:      room.GameID,
		FirstPlayer: room.First(),
	})
}

// memberRoomLocked loads the room c takes part in, answering with an error
// when there is none.
func (h *Hub) memberRoomLocked(ctx context.Context, c *Conn, gameID string) *Room {
	if gameID == "" {
		gameID = c.GameID()
	}
	room, err := h.store.LoadRoom(ctx, gameID)
	if err != nil {
		h.storeFailed(c, err)
		return nil
	}
	if room == nil || c.Name() == "" || !room.Has(c.Name()) {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInGame))
		return nil
	}
	return room
}

func (h *Hub) handleShipsPlaced(ctx context.Context, c *Conn, msg *protocol.Message, gameID string) {
	room := h.memberRoomLocked(ctx, c, gameID)
	if room == nil {
		return
	}
	h.forwardInRoom(c, room, msg)

	room.MarkReady(c.Name())
	startNow := room.AllReady() && !room.Started
	if startNow {
		room.Started = true
	}
	if err := h.store.SaveRoom(ctx, room); err != nil {
		h.storeFailed(c, err)
		return
	}
	if startNow {
		start := h.startMessage(room)
		for _, player := range room.Players {
			if pc, ok := h.names[player]; ok {
				pc.SendMessage(start)
			}
		}
	}
}

func (h *Hub) forward(ctx context.Context, c *Conn, msg *protocol.Message, gameID string) {
	room := h.memberRoomLocked(ctx, c, gameID)
	if room == nil {
		return
	}
	h.forwardInRoom(c, room, msg)
}

func (h *Hub) forwardInRoom(c *Conn, room *Room, msg *protocol.Message) {
	peer, ok := h.names[room.Other(c.Name())]
	if !ok {
		c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodePeerOffline))
		return
	}
	peer.SendMessage(msg)
}

func (h *Hub) handleLeave(ctx context.Context, c *Conn, msg *protocol.Message, gameID string) {
	room := h.memberRoomLocked(ctx, c, gameID)
	if room == nil {
		return
	}
	if peer, ok := h.names[room.Other(c.Name())]; ok {
		peer.SendMessage(msg)
	}
	if err := h.store.DeleteRoom(ctx, room.GameID); err != nil {
		logger.LogError("delete room %s: %v", room.GameID, err)
	}
	c.setGame("")
	logger.LogInfo("player %s left %s", c.Name(), room.GameID)
}

func (h *Hub) storeFailed(c *Conn, err error) {
	logger.LogError("room store: %v", err)
	c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
}
