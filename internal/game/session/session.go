// Package session is the per-client game controller. It owns both boards,
// the fleet, the attack records and the turn scheduler, consumes inbound
// relay messages and emits outbound ones.
package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/game/placement"
	"github.com/ivanwe2/battleships/internal/game/turn"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// Sender delivers an outbound message to the relay. It must not block and
// must fail fast when the transport is down.
type Sender interface {
	Send(msg *protocol.Message) error
}

// Options are the game rules and collaborators of a Session.
type Options struct {
	Player      string
	BoardSize   int
	TurnTimeout time.Duration
	Limits      placement.Limits
	Munitions   map[attack.Munition]int
	Rand        *rand.Rand
	Clock       turn.Clock
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	limits, err := placement.LimitsFromConfig(cfg.Game.Fleet)
	if err != nil {
		return Options{}, fmt.Errorf("game.fleet: %w", err)
	}
	m, err := attack.MunitionsFromConfig(cfg.Game.Munitions)
	if err != nil {
		return Options{}, fmt.Errorf("game.munitions: %w", err)
	}
	return Options{
		Player:      cfg.Client.Player,
		BoardSize:   cfg.Game.BoardSize,
		TurnTimeout: cfg.Game.TurnTimeoutDuration(),
		Limits:      limits,
		Munitions:   m.Snapshot(),
	}, nil
}

// Session is one player's view of a two-player game. All methods are safe
// for concurrent use; local actions, inbound messages and turn expiry are
// serialized on one mutex.
type Session struct {
	mu       sync.Mutex
	opts     Options
	sender   Sender
	listener Listener
	rng      *rand.Rand

	phase       Phase
	gameID      string
	opponent    string
	firstPlayer string
	joined      bool
	shipsSent   bool
	winner      string

	// relay registration, per connection
	registered bool
	players    []string

	// invitations, by player name
	invitesIn  map[string]string // inviter -> offered game id
	inviteSent string
	inviteGame string

	own          *board.Board
	fleet        *placement.Fleet
	defense      *attack.Defense
	target       *board.Board
	record       *attack.Record
	munitions    *attack.Munitions
	oppMunitions *attack.Munitions
	oppFleetSize int

	// shots sent but not yet answered, keyed by anchor
	inflight map[board.Position]attack.Munition
	awaiting bool

	turns *turn.Scheduler

	log     []Event
	pending []Event
}

// New creates a session in the lobby phase.
func New(opts Options, sender Sender) *Session {
	if opts.BoardSize <= 0 {
		opts.BoardSize = board.DefaultSize
	}
	if opts.Limits == nil {
		opts.Limits = placement.DefaultLimits()
	}
	if opts.Munitions == nil {
		opts.Munitions = attack.DefaultMunitions().Snapshot()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Session{
		opts:      opts,
		sender:    sender,
		rng:       rng,
		invitesIn: make(map[string]string),
	}
	schedOpts := []turn.Option{turn.WithLocker(&s.mu)}
	if opts.Clock != nil {
		schedOpts = append(schedOpts, turn.WithClock(opts.Clock))
	}
	s.turns = turn.New(opts.TurnTimeout, schedOpts...)
	s.turns.OnExpire(s.handleTurnExpired)
	s.resetGame()
	return s
}

// SetListener registers the single event listener.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// --- lock helpers ---

// run executes fn under the lock and delivers the events it produced after
// unlocking. Errors from local actions are surfaced as warnings.
func (s *Session) run(fn func() error) error {
	s.mu.Lock()
	err := fn()
	if err != nil {
		s.warn(err)
	}
	events, l := s.takePending()
	s.mu.Unlock()

	deliver(l, events)
	return err
}

// runInbound is run for relay messages: errors are logged, never warned.
func (s *Session) runInbound(msg *protocol.Message, fn func() error) error {
	s.mu.Lock()
	err := fn()
	phase := s.phase
	events, l := s.takePending()
	s.mu.Unlock()

	if err != nil {
		logger.LogWarn("dropped %s in phase %s: %v", msg.Type, phase, err)
	}
	deliver(l, events)
	return err
}

func (s *Session) takePending() ([]Event, Listener) {
	events := s.pending
	s.pending = nil
	return events, s.listener
}

func deliver(l Listener, events []Event) {
	if l == nil {
		return
	}
	for _, ev := range events {
		l(ev)
	}
}

// emit records an event; mu held.
func (s *Session) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	s.log = append(s.log, ev)
	s.pending = append(s.pending, ev)
}

func (s *Session) warn(err error) {
	s.emit(Event{Kind: EventWarning, Text: err.Error(), Err: err, Player: s.opts.Player})
}

func (s *Session) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.phase = p
	s.emit(Event{Kind: EventPhase, Phase: p, Text: "phase: " + p.String()})
}

func (s *Session) send(t protocol.MessageType, payload any) error {
	if s.sender == nil {
		return apperrors.ErrNotConnected
	}
	msg, err := protocol.NewMessage(t, payload)
	if err != nil {
		return err
	}
	return s.sender.Send(msg)
}

// resetGame clears every per-game field; mu held or not yet shared.
func (s *Session) resetGame() {
	s.turns.Stop()

	s.gameID = ""
	s.opponent = ""
	s.firstPlayer = ""
	s.joined = false
	s.shipsSent = false
	s.winner = ""
	s.inviteSent = ""
	s.inviteGame = ""

	s.own = board.New(s.opts.BoardSize)
	s.fleet = placement.NewFleet(s.opts.Limits)
	s.defense = nil
	s.target = board.New(s.opts.BoardSize)
	s.record = attack.NewRecord()
	s.munitions = attack.NewMunitions(s.opts.Munitions)
	s.oppMunitions = attack.NewMunitions(s.opts.Munitions)
	s.oppFleetSize = s.opts.Limits.Total()
	s.inflight = make(map[board.Position]attack.Munition)
	s.awaiting = false
}

func (s *Session) toLobby(reason string) {
	s.resetGame()
	s.setPhase(PhaseLobby)
	if reason != "" {
		s.emit(Event{Kind: EventStatus, Text: reason})
	}
}

func (s *Session) finish(winner string) {
	s.turns.Stop()
	s.awaiting = false
	s.inflight = make(map[board.Position]attack.Munition)
	s.winner = winner
	s.setPhase(PhaseGameOver)

	text := winner + " wins"
	if winner == s.opts.Player {
		text = "You won!"
	} else if winner == s.opponent {
		text = "You lost."
	}
	s.emit(Event{Kind: EventGameOver, Player: winner, Text: text})
}

// --- read accessors ---

// Player returns the local player's name.
func (s *Session) Player() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Player
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// GameID returns the current game id, empty in the lobby.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// Opponent returns the opponent's name.
func (s *Session) Opponent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opponent
}

// Winner returns the winner once the game is over.
func (s *Session) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// ShipsSent reports whether the fleet was announced to the opponent.
func (s *Session) ShipsSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipsSent
}

// ActivePlayer returns whose turn it is during battle.
func (s *Session) ActivePlayer() string {
	return s.turns.Active()
}

// IsMyTurn reports whether the local player may fire.
func (s *Session) IsMyTurn() bool {
	return s.turns.Active() == s.Player()
}

// Awaiting reports whether a shot is waiting for its result.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Remaining returns the time left in the current turn.
func (s *Session) Remaining() time.Duration {
	return s.turns.Remaining()
}

// Deadline returns when the current turn is forfeited.
func (s *Session) Deadline() time.Time {
	return s.turns.Deadline()
}

// SelectedMunition returns the armed special munition.
func (s *Session) SelectedMunition() attack.Munition {
	return s.turns.Selected()
}

// OwnBoard returns a copy of the local board.
func (s *Session) OwnBoard() [][]board.CellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.own.Snapshot()
}

// TargetBoard returns a copy of the opponent mirror board. It only ever
// holds hit and miss marks.
func (s *Session) TargetBoard() [][]board.CellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target.Snapshot()
}

// Ships returns copies of the placed ships.
func (s *Session) Ships() []board.Ship {
	s.mu.Lock()
	defer s.mu.Unlock()
	ships := s.fleet.Ships()
	out := make([]board.Ship, len(ships))
	for i, sh := range ships {
		out[i] = *sh
	}
	return out
}

// RemainingShips returns how many ships of t can still be placed.
func (s *Session) RemainingShips(t board.ShipType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fleet.Remaining(t)
}

// FleetComplete reports whether every ship is placed.
func (s *Session) FleetComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fleet.Complete()
}

// Munitions returns the local special munition counters.
func (s *Session) Munitions() map[attack.Munition]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.munitions.Snapshot()
}

// OpponentMunitions returns the mirrored opponent counters.
func (s *Session) OpponentMunitions() map[attack.Munition]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oppMunitions.Snapshot()
}

// Shots returns the local player's shots in firing order.
func (s *Session) Shots() []attack.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]attack.Outcome(nil), s.record.Outcomes()...)
}

// Registered reports whether the relay accepted the player name.
func (s *Session) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

// OnlinePlayers returns the other registered players, as last reported by
// the relay.
func (s *Session) OnlinePlayers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.players...)
}

// PendingInvites returns the players whose invitations can be accepted,
// sorted by name.
func (s *Session) PendingInvites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.invitesIn))
	for from := range s.invitesIn {
		out = append(out, from)
	}
	slices.Sort(out)
	return out
}

// Log returns a copy of the event log.
func (s *Session) Log() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.log...)
}
