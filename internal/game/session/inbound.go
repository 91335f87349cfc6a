package session

import (
	"fmt"
	"sort"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// InboundTypes lists the message types HandleMessage understands.
func InboundTypes() []protocol.MessageType {
	return []protocol.MessageType{
		protocol.MsgGameReady,
		protocol.MsgGameStart,
		protocol.MsgShipsPlaced,
		protocol.MsgShipPlacement,
		protocol.MsgAttack,
		protocol.MsgSpecialAttack,
		protocol.MsgAttackResult,
		protocol.MsgGameOver,
		protocol.MsgLeaveGame,
		protocol.MsgRegisterSuccess,
		protocol.MsgRegisterError,
		protocol.MsgSetPlayers,
		protocol.MsgInvite,
		protocol.MsgAcceptInvite,
		protocol.MsgError,
	}
}

// HandleMessage is the single entry point for relay messages. Malformed,
// misaddressed and wrong-phase messages are logged and dropped; the returned
// error says why.
func (s *Session) HandleMessage(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgGameReady:
		return handleTyped(s, msg, s.handleGameReady)
	case protocol.MsgGameStart:
		return handleTyped(s, msg, s.handleGameStart)
	case protocol.MsgShipsPlaced, protocol.MsgShipPlacement:
		return handleTyped(s, msg, s.handleShipsPlaced)
	case protocol.MsgAttack:
		return handleTyped(s, msg, s.handleAttack)
	case protocol.MsgSpecialAttack:
		return handleTyped(s, msg, s.handleSpecialAttack)
	case protocol.MsgAttackResult:
		return handleTyped(s, msg, s.handleAttackResult)
	case protocol.MsgGameOver:
		return handleTyped(s, msg, s.handleGameOver)
	case protocol.MsgLeaveGame:
		return handleTyped(s, msg, s.handleLeaveGame)
	case protocol.MsgRegisterSuccess:
		return handleTyped(s, msg, s.handleRegistered)
	case protocol.MsgRegisterError:
		return handleTyped(s, msg, s.handleRegisterError)
	case protocol.MsgSetPlayers:
		return handleTyped(s, msg, s.handlePlayers)
	case protocol.MsgInvite:
		return handleTyped(s, msg, s.handleInvite)
	case protocol.MsgAcceptInvite:
		return handleTyped(s, msg, s.handleAcceptInvite)
	case protocol.MsgError:
		return handleTyped(s, msg, s.handleRelayError)
	default:
		err := fmt.Errorf("%w: %s", apperrors.ErrUnknownMessage, msg.Type)
		logger.LogWarn("dropped message: %v", err)
		return err
	}
}

func handleTyped[T any](s *Session, msg *protocol.Message, h func(*T) error) error {
	payload, err := protocol.ParsePayload[T](msg)
	if err != nil {
		logger.LogError("dropped %s: %v", msg.Type, err)
		return err
	}
	return s.runInbound(msg, func() error { return h(payload) })
}

func (s *Session) checkGame(gameID string) error {
	if gameID != "" && s.gameID != "" && gameID != s.gameID {
		return fmt.Errorf("%w: game %q, current %q", apperrors.ErrMalformedMessage, gameID, s.gameID)
	}
	return nil
}

func (s *Session) handleGameReady(p *protocol.GameReadyPayload) error {
	if err := s.checkGame(p.GameID); err != nil {
		return err
	}
	if s.phase != PhaseLobby {
		return nil // replayed after a rejoin
	}
	if !s.joined {
		return apperrors.ErrWrongPhase
	}
	if p.Opponent != "" && p.Opponent != s.opts.Player {
		s.opponent = p.Opponent
	}
	s.firstPlayer = p.FirstPlayer
	s.setPhase(PhasePlacement)

	text := s.firstPlayer + " moves first"
	if s.firstPlayer == s.opts.Player {
		text = "You move first"
	}
	s.emit(Event{Kind: EventStatus, Player: s.firstPlayer, Text: "Place your ships. " + text})
	return nil
}

func (s *Session) handleGameStart(p *protocol.GameStartPayload) error {
	if err := s.checkGame(p.GameID); err != nil {
		return err
	}
	switch s.phase {
	case PhaseBattle, PhaseGameOver:
		return nil // replayed after a rejoin
	case PhasePlacement:
		if !s.shipsSent {
			return apperrors.ErrFleetIncomplete
		}
	default:
		return apperrors.ErrWrongPhase
	}

	first := p.FirstPlayer
	if first != s.opts.Player && first != s.opponent {
		first = s.firstPlayer
	}
	if first != s.opts.Player && first != s.opponent {
		// both clients agree on the alphabetically smaller name
		names := []string{s.opts.Player, s.opponent}
		sort.Strings(names)
		first = names[0]
	}
	second := s.opponent
	if first == s.opponent {
		second = s.opts.Player
	}

	s.firstPlayer = first
	s.defense = attack.NewDefense(s.own, s.fleet.Ships())
	s.setPhase(PhaseBattle)
	s.turns.Start(first, second)
	s.emitTurn()
	return nil
}

func (s *Session) handleShipsPlaced(p *protocol.ShipsPlacedPayload) error {
	if p.Player != s.opponent {
		return fmt.Errorf("%w: fleet of %q", apperrors.ErrMalformedMessage, p.Player)
	}
	if s.phase != PhasePlacement && s.phase != PhaseLobby {
		return nil
	}
	if len(p.Ships) > 0 {
		s.oppFleetSize = len(p.Ships)
	}
	s.emit(Event{Kind: EventStatus, Player: p.Player, Text: p.Player + " is ready"})
	return nil
}

func (s *Session) handleLeaveGame(p *protocol.LeaveGamePayload) error {
	if !s.joined || p.Player != s.opponent {
		return fmt.Errorf("%w: %q left", apperrors.ErrMalformedMessage, p.Player)
	}
	if err := s.checkGame(p.GameID); err != nil {
		return err
	}
	switch s.phase {
	case PhaseBattle:
		s.emit(Event{Kind: EventStatus, Player: p.Player, Text: p.Player + " left the game"})
		s.finish(s.opts.Player)
	case PhaseGameOver:
		s.emit(Event{Kind: EventStatus, Player: p.Player, Text: p.Player + " left the game"})
	default:
		s.toLobby(p.Player + " left the game")
	}
	return nil
}

func (s *Session) handleRegistered(p *protocol.RegisterPayload) error {
	if p.Username != s.opts.Player {
		return fmt.Errorf("%w: registered as %q", apperrors.ErrMalformedMessage, p.Username)
	}
	if s.registered {
		return nil
	}
	s.registered = true
	s.emit(Event{Kind: EventStatus, Player: p.Username, Text: "Registered as " + p.Username})
	return nil
}

func (s *Session) handleRegisterError(p *protocol.ErrorPayload) error {
	s.registered = false
	s.emit(Event{Kind: EventRelayError, Text: p.Message})
	return nil
}

func (s *Session) handlePlayers(p *protocol.PlayersPayload) error {
	players := make([]string, 0, len(p.Players))
	for _, name := range p.Players {
		if name != s.opts.Player {
			players = append(players, name)
		}
	}
	sort.Strings(players)
	s.players = players
	s.emit(Event{Kind: EventPlayers, Text: fmt.Sprintf("%d players online", len(players))})
	return nil
}

func (s *Session) handleInvite(p *protocol.InvitePayload) error {
	if p.To != s.opts.Player || p.From == "" {
		return fmt.Errorf("%w: invite for %q", apperrors.ErrMalformedMessage, p.To)
	}
	if s.phase != PhaseLobby || s.joined {
		return apperrors.ErrWrongPhase
	}
	// an id-less invite is answered with an id of our own choosing
	s.invitesIn[p.From] = p.GameID
	s.emit(Event{Kind: EventInvite, Player: p.From, Text: p.From + " invited you to a game"})
	return nil
}

func (s *Session) handleAcceptInvite(p *protocol.InvitePayload) error {
	if p.To != s.opts.Player || p.From == "" || p.From != s.inviteSent {
		return fmt.Errorf("%w: acceptance from %q", apperrors.ErrMalformedMessage, p.From)
	}
	if s.phase != PhaseLobby || s.joined {
		return apperrors.ErrWrongPhase
	}
	gameID := p.GameID
	if gameID == "" {
		gameID = s.inviteGame
	}
	if s.inviteGame != "" && gameID != s.inviteGame {
		return fmt.Errorf("%w: acceptance for game %q", apperrors.ErrMalformedMessage, gameID)
	}
	s.emit(Event{Kind: EventInvite, Player: p.From, Text: p.From + " accepted your invitation"})
	return s.join(gameID, p.From)
}

func (s *Session) handleRelayError(p *protocol.ErrorPayload) error {
	logger.LogWarn("relay error %d: %s", p.Code, p.Message)
	s.emit(Event{Kind: EventRelayError, Text: p.Message})
	return nil
}
