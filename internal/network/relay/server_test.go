package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

func testRelayConfig() config.RelayConfig {
	return config.RelayConfig{MaxConnections: 16, MessagesPerSecond: 100, AllowedOrigins: []string{"*"}}
}

func startRelay(t *testing.T, cfg config.RelayConfig, store RoomStore) (*Server, string) {
	t.Helper()
	s := newServer(cfg, store, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().CloseAll()
		ts.Close()
	})
	return s, ts.URL
}

func wsURL(base string) string {
	return "ws" + strings.TrimPrefix(base, "http") + "/ws"
}

// player is a raw websocket peer speaking the wire protocol.
type player struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, base string) *player {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &player{t: t, conn: conn}
}

func (p *player) send(msgType protocol.MessageType, payload any) {
	p.t.Helper()
	data, err := protocol.MustNewMessage(msgType, payload).Encode()
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, data))
}

// expect reads until a message of msgType arrives, skipping others.
func (p *player) expect(msgType protocol.MessageType) *protocol.Message {
	p.t.Helper()
	_ = p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", msgType)
		msg, err := protocol.Decode(data)
		require.NoError(p.t, err)
		if msg.Type == msgType {
			return msg
		}
	}
}

func (p *player) expectError(code int) {
	p.t.Helper()
	msg := p.expect(protocol.MsgError)
	e, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(p.t, err)
	assert.Equal(p.t, code, e.Code)
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	p, err := protocol.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func (p *player) join(gameID, name string) {
	p.send(protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: gameID, Player: name})
}

// pair joins alice then bob to the same game and consumes GAME_READY.
func pair(t *testing.T, base string) (alice, bob *player) {
	t.Helper()
	alice, bob = dial(t, base), dial(t, base)
	alice.join("g1", "alice")
	// alice's join must land before bob's so she moves first
	alice.expect(protocol.MsgSetPlayers)
	bob.join("g1", "bob")
	alice.expect(protocol.MsgGameReady)
	bob.expect(protocol.MsgGameReady)
	return alice, bob
}

func TestServer_Health(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestHub_RegisterAndPlayers(t *testing.T) {
	s, base := startRelay(t, testRelayConfig(), NewMemoryStore())

	alice := dial(t, base)
	alice.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "  alice "})
	ok := payloadOf[protocol.RegisterPayload](t, alice.expect(protocol.MsgRegisterSuccess))
	assert.Equal(t, "alice", ok.Username)

	bob := dial(t, base)
	bob.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "bob"})
	bob.expect(protocol.MsgRegisterSuccess)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"alice", "bob"}, s.Hub().Players())
	}, time.Second, 10*time.Millisecond)

	// alice sees the list grow
	for {
		list := payloadOf[protocol.PlayersPayload](t, alice.expect(protocol.MsgSetPlayers))
		if len(list.Players) == 2 {
			assert.Equal(t, []string{"alice", "bob"}, list.Players)
			break
		}
	}

	bob.send(protocol.MsgLogout, protocol.RegisterPayload{Username: "bob"})
	list := payloadOf[protocol.PlayersPayload](t, alice.expect(protocol.MsgSetPlayers))
	assert.Equal(t, []string{"alice"}, list.Players)
}

func TestHub_RegisterEmptyName(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())

	p := dial(t, base)
	p.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "   "})
	e := payloadOf[protocol.ErrorPayload](t, p.expect(protocol.MsgRegisterError))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, e.Code)
}

func TestHub_Invite(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())

	alice, bob := dial(t, base), dial(t, base)
	alice.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "alice"})
	alice.expect(protocol.MsgRegisterSuccess)
	bob.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "bob"})
	bob.expect(protocol.MsgRegisterSuccess)

	alice.send(protocol.MsgInvite, protocol.InvitePayload{From: "alice", To: "bob", GameID: "alice-bob-1"})
	inv := payloadOf[protocol.InvitePayload](t, bob.expect(protocol.MsgInvite))
	assert.Equal(t, protocol.InvitePayload{From: "alice", To: "bob", GameID: "alice-bob-1"}, *inv)

	bob.send(protocol.MsgAcceptInvite, protocol.InvitePayload{From: "bob", To: "alice", GameID: "alice-bob-1"})
	acc := payloadOf[protocol.InvitePayload](t, alice.expect(protocol.MsgAcceptInvite))
	assert.Equal(t, "bob", acc.From)
	assert.Equal(t, "alice-bob-1", acc.GameID)

	t.Run("offline target", func(t *testing.T) {
		alice.send(protocol.MsgInvite, protocol.InvitePayload{From: "alice", To: "carol"})
		alice.expectError(protocol.ErrCodePeerOffline)
	})

	t.Run("spoofed sender", func(t *testing.T) {
		alice.send(protocol.MsgInvite, protocol.InvitePayload{From: "bob", To: "alice"})
		alice.expectError(protocol.ErrCodeInvalidMsg)
	})
}

func TestHub_GameFlow(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())

	alice, bob := dial(t, base), dial(t, base)
	alice.join("g1", "alice")
	alice.expect(protocol.MsgSetPlayers)
	bob.join("g1", "bob")

	ready := payloadOf[protocol.GameReadyPayload](t, alice.expect(protocol.MsgGameReady))
	assert.Equal(t, protocol.GameReadyPayload{GameID: "g1", FirstPlayer: "alice", Opponent: "bob"}, *ready)
	ready = payloadOf[protocol.GameReadyPayload](t, bob.expect(protocol.MsgGameReady))
	assert.Equal(t, protocol.GameReadyPayload{GameID: "g1", FirstPlayer: "alice", Opponent: "alice"}, *ready)

	manifest := []protocol.ShipInfo{{Type: "destroyer", Size: 2}}
	alice.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "g1", Player: "alice", Ships: manifest})
	placed := payloadOf[protocol.ShipsPlacedPayload](t, bob.expect(protocol.MsgShipsPlaced))
	assert.Equal(t, manifest, placed.Ships)

	// the legacy alias counts as ready too
	bob.send(protocol.MsgShipPlacement, protocol.ShipsPlacedPayload{GameID: "g1", Player: "bob", Ships: manifest})
	start := payloadOf[protocol.GameStartPayload](t, alice.expect(protocol.MsgGameStart))
	assert.Equal(t, "alice", start.FirstPlayer)
	bob.expect(protocol.MsgGameStart)

	attack := protocol.AttackPayload{GameID: "g1", Attacker: "alice", Defender: "bob", Position: board.Pos(4, 5)}
	alice.send(protocol.MsgAttack, attack)
	got := payloadOf[protocol.AttackPayload](t, bob.expect(protocol.MsgAttack))
	assert.Equal(t, attack, *got)

	result := protocol.AttackResultPayload{GameID: "g1", Attacker: "alice", Defender: "bob", Position: board.Pos(4, 5), Hit: true}
	bob.send(protocol.MsgAttackResult, result)
	gotResult := payloadOf[protocol.AttackResultPayload](t, alice.expect(protocol.MsgAttackResult))
	assert.Equal(t, result, *gotResult)

	special := protocol.SpecialAttackPayload{GameID: "g1", Attacker: "bob", Defender: "alice", Position: board.Pos(9, 9), SpecialType: "area-a"}
	bob.send(protocol.MsgSpecialAttack, special)
	gotSpecial := payloadOf[protocol.SpecialAttackPayload](t, alice.expect(protocol.MsgSpecialAttack))
	assert.Equal(t, special, *gotSpecial)

	bob.send(protocol.MsgGameOver, protocol.GameOverPayload{GameID: "g1", Winner: "bob"})
	over := payloadOf[protocol.GameOverPayload](t, alice.expect(protocol.MsgGameOver))
	assert.Equal(t, "bob", over.Winner)
}

func TestHub_GameFull(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())
	pair(t, base)

	carol := dial(t, base)
	carol.join("g1", "carol")
	carol.expectError(protocol.ErrCodeGameFull)
}

func TestHub_NotInGame(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())
	pair(t, base)

	carol := dial(t, base)
	carol.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "carol"})
	carol.expect(protocol.MsgRegisterSuccess)
	carol.send(protocol.MsgAttack, protocol.AttackPayload{GameID: "g1", Attacker: "carol", Defender: "bob"})
	carol.expectError(protocol.ErrCodeNotInGame)
}

func TestHub_PeerOffline(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())
	alice, bob := pair(t, base)

	require.NoError(t, bob.conn.Close())
	alice.expect(protocol.MsgSetPlayers)

	alice.send(protocol.MsgAttack, protocol.AttackPayload{GameID: "g1", Attacker: "alice", Defender: "bob"})
	alice.expectError(protocol.ErrCodePeerOffline)
}

func TestHub_Rejoin(t *testing.T) {
	store := NewMemoryStore()
	_, base := startRelay(t, testRelayConfig(), store)
	alice, bob := pair(t, base)

	alice.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "g1", Player: "alice"})
	bob.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "g1", Player: "bob"})
	alice.expect(protocol.MsgGameStart)
	bob.expect(protocol.MsgGameStart)

	// bob comes back on a fresh socket; the stale one is dropped
	bob2 := dial(t, base)
	bob2.join("g1", "bob")
	ready := payloadOf[protocol.GameReadyPayload](t, bob2.expect(protocol.MsgGameReady))
	assert.Equal(t, "alice", ready.FirstPlayer)
	bob2.expect(protocol.MsgGameStart)

	alice.send(protocol.MsgAttack, protocol.AttackPayload{GameID: "g1", Attacker: "alice", Defender: "bob", Position: board.Pos(1, 1)})
	bob2.expect(protocol.MsgAttack)

	room, err := store.LoadRoom(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, room.Players)
	assert.True(t, room.Started)
}

func TestHub_RematchAfterDisconnect(t *testing.T) {
	store := NewMemoryStore()
	s, base := startRelay(t, testRelayConfig(), store)
	alice, bob := pair(t, base)

	alice.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "g1", Player: "alice"})
	bob.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "g1", Player: "bob"})
	alice.expect(protocol.MsgGameStart)
	bob.expect(protocol.MsgGameStart)

	// both drop without LEAVE_GAME; g1 stays behind for a rejoin
	require.NoError(t, alice.conn.Close())
	require.NoError(t, bob.conn.Close())
	assert.Eventually(t, func() bool { return len(s.Hub().Players()) == 0 }, time.Second, 10*time.Millisecond)

	// the rematch comes with a fresh invitation id
	alice2, bob2 := dial(t, base), dial(t, base)
	alice2.join("alice-bob-2", "alice")
	alice2.expect(protocol.MsgSetPlayers)
	bob2.join("alice-bob-2", "bob")
	alice2.expect(protocol.MsgGameReady)
	bob2.expect(protocol.MsgGameReady)

	alice2.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "alice-bob-2", Player: "alice"})
	bob2.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{GameID: "alice-bob-2", Player: "bob"})
	start := payloadOf[protocol.GameStartPayload](t, alice2.expect(protocol.MsgGameStart))
	assert.Equal(t, "alice-bob-2", start.GameID)
	bob2.expect(protocol.MsgGameStart)

	old, err := store.LoadRoom(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.True(t, old.Started, "the abandoned room is left alone")
}

func TestHub_LeaveGame(t *testing.T) {
	store := NewMemoryStore()
	_, base := startRelay(t, testRelayConfig(), store)
	alice, bob := pair(t, base)

	alice.send(protocol.MsgLeaveGame, protocol.LeaveGamePayload{GameID: "g1", Player: "alice"})
	left := payloadOf[protocol.LeaveGamePayload](t, bob.expect(protocol.MsgLeaveGame))
	assert.Equal(t, "alice", left.Player)

	assert.Eventually(t, func() bool {
		n, _ := store.CountRooms(context.Background())
		return n == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_BadInput(t *testing.T) {
	_, base := startRelay(t, testRelayConfig(), NewMemoryStore())
	p := dial(t, base)

	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	p.expectError(protocol.ErrCodeInvalidMsg)

	p.send("CHAT", map[string]string{"text": "hi"})
	p.expectError(protocol.ErrCodeInvalidMsg)

	p.join("", "alice")
	p.expectError(protocol.ErrCodeInvalidMsg)
}

func TestHub_RedisBacked(t *testing.T) {
	store, mr := newTestRedisStore(t)
	_, base := startRelay(t, testRelayConfig(), store)
	pair(t, base)

	assert.True(t, mr.Exists(roomKeyPrefix+"g1"))
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testRelayConfig()
	cfg.MessagesPerSecond = 2
	_, base := startRelay(t, cfg, NewMemoryStore())

	p := dial(t, base)
	for range 3 {
		p.send(protocol.MsgLogout, protocol.RegisterPayload{})
	}
	p.expectError(protocol.ErrCodeRateLimited)
}

func TestServer_ConnectionLimit(t *testing.T) {
	cfg := testRelayConfig()
	cfg.MaxConnections = 1
	_, base := startRelay(t, cfg, NewMemoryStore())

	dial(t, base)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_OriginRejected(t *testing.T) {
	cfg := testRelayConfig()
	cfg.AllowedOrigins = []string{"https://battleships.example"}
	_, base := startRelay(t, cfg, NewMemoryStore())

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(base), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ShutdownRejectsNewConnections(t *testing.T) {
	s, base := startRelay(t, testRelayConfig(), NewMemoryStore())
	p := dial(t, base)
	p.send(protocol.MsgRegister, protocol.RegisterPayload{Username: "alice"})
	p.expect(protocol.MsgRegisterSuccess)

	require.NoError(t, s.Shutdown(context.Background()))

	_ = p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			break
		}
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(base), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestNewServer_MemoryByDefault(t *testing.T) {
	s, err := NewServer(context.Background(), testRelayConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s.store)
	assert.Nil(t, s.redis)
}
