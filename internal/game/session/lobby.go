package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// NewGameID builds a fresh id for a game between an inviter and an invitee.
// Every invitation gets its own id, so the relay never mistakes a new game
// between the same two players for a rejoin of an old one.
func NewGameID(inviter, invitee string) string {
	return inviter + "-" + invitee + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SetPlayer changes the local player's name. Only allowed in the lobby
// before joining a game.
func (s *Session) SetPlayer(name string) error {
	return s.run(func() error {
		if s.phase != PhaseLobby || s.joined {
			return apperrors.ErrWrongPhase
		}
		s.opts.Player = strings.TrimSpace(name)
		return nil
	})
}

// Register claims name on the relay. The relay answers with
// REGISTER_SUCCESS or REGISTER_ERROR.
func (s *Session) Register(name string) error {
	return s.run(func() error {
		name = strings.TrimSpace(name)
		if s.phase != PhaseLobby || s.joined {
			return apperrors.ErrWrongPhase
		}
		if name == "" {
			return apperrors.ErrUnknownPlayer
		}
		if err := s.send(protocol.MsgRegister, protocol.RegisterPayload{Username: name}); err != nil {
			return err
		}
		s.opts.Player = name
		s.registered = false
		return nil
	})
}

// Logout releases the player name on the relay.
func (s *Session) Logout() error {
	return s.run(func() error {
		if !s.registered {
			return nil
		}
		if s.joined {
			s.leaveLocked()
			s.toLobby("")
		}
		s.registered = false
		s.players = nil
		return s.send(protocol.MsgLogout, protocol.RegisterPayload{Username: s.opts.Player})
	})
}

// Invite asks another player to a game.
func (s *Session) Invite(to string) error {
	return s.run(func() error {
		to = strings.TrimSpace(to)
		if s.phase != PhaseLobby || s.joined {
			return apperrors.ErrWrongPhase
		}
		if to == "" || to == s.opts.Player {
			return apperrors.ErrUnknownPlayer
		}
		gameID := NewGameID(s.opts.Player, to)
		if err := s.send(protocol.MsgInvite, protocol.InvitePayload{From: s.opts.Player, To: to, GameID: gameID}); err != nil {
			return err
		}
		s.inviteSent = to
		s.inviteGame = gameID
		s.emit(Event{Kind: EventInvite, Player: to, Text: "Invitation sent to " + to})
		return nil
	})
}

// AcceptInvite accepts an invitation and joins the game it names.
func (s *Session) AcceptInvite(from string) error {
	return s.run(func() error {
		if s.phase != PhaseLobby || s.joined {
			return apperrors.ErrWrongPhase
		}
		if from == "" || from == s.opts.Player {
			return apperrors.ErrUnknownPlayer
		}
		gameID := s.invitesIn[from]
		if gameID == "" {
			gameID = NewGameID(from, s.opts.Player)
		}
		if err := s.send(protocol.MsgAcceptInvite, protocol.InvitePayload{From: s.opts.Player, To: from, GameID: gameID}); err != nil {
			return err
		}
		delete(s.invitesIn, from)
		return s.join(gameID, from)
	})
}

// Join enters a game with a known id and opponent. The phase stays lobby
// until the relay reports GAME_READY.
func (s *Session) Join(gameID, opponent string) error {
	return s.run(func() error {
		if s.phase != PhaseLobby || s.joined {
			return apperrors.ErrWrongPhase
		}
		return s.join(gameID, opponent)
	})
}

func (s *Session) join(gameID, opponent string) error {
	if err := s.send(protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: gameID, Player: s.opts.Player}); err != nil {
		return err
	}
	s.gameID = gameID
	s.opponent = opponent
	s.joined = true
	s.inviteSent = ""
	s.inviteGame = ""
	s.emit(Event{Kind: EventStatus, Text: "Joined game " + gameID + ", waiting for " + opponent})
	return nil
}

// Leave abandons the current game and returns to the lobby. Leaving during
// battle forfeits.
func (s *Session) Leave() error {
	return s.run(func() error {
		s.leaveLocked()
		s.toLobby("Left the game")
		return nil
	})
}

// PlayAgain returns to the lobby after a finished game.
func (s *Session) PlayAgain() error {
	return s.run(func() error {
		if s.phase != PhaseGameOver {
			return apperrors.ErrWrongPhase
		}
		s.leaveLocked()
		s.toLobby("")
		return nil
	})
}

// leaveLocked tells the opponent we are gone. A failed send does not keep
// the player in the game.
func (s *Session) leaveLocked() {
	if !s.joined {
		return
	}
	err := s.send(protocol.MsgLeaveGame, protocol.LeaveGamePayload{GameID: s.gameID, Player: s.opts.Player})
	if err != nil {
		logger.LogWarn("could not announce leaving %s: %v", s.gameID, err)
	}
}

// Disconnected is called by the transport once it gave up reconnecting. The
// game cannot continue and the session returns to the lobby.
func (s *Session) Disconnected() {
	_ = s.run(func() error {
		s.registered = false
		s.players = nil
		s.invitesIn = make(map[string]string)
		s.toLobby("disconnected")
		return nil
	})
}

// ConnectionStatus surfaces a transport status change such as
// "reconnecting" as a status event.
func (s *Session) ConnectionStatus(status string) {
	_ = s.run(func() error {
		s.emit(Event{Kind: EventStatus, Text: status})
		return nil
	})
}

// Resync re-announces the session after the transport reconnected. The name
// is registered again and the relay learns the new connection. A pending
// fleet announcement is repeated and unanswered shots are fired again;
// replayed shots are answered from the defender's stored results.
func (s *Session) Resync() error {
	return s.run(func() error {
		if s.registered {
			if err := s.send(protocol.MsgRegister, protocol.RegisterPayload{Username: s.opts.Player}); err != nil {
				return err
			}
		}
		if !s.joined {
			return nil
		}
		if err := s.send(protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: s.gameID, Player: s.opts.Player}); err != nil {
			return err
		}
		if s.phase == PhasePlacement && s.shipsSent {
			if err := s.sendShipsPlaced(); err != nil {
				return err
			}
		}
		if s.phase == PhaseBattle {
			for pos, m := range s.inflight {
				if err := s.sendShot(pos, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
