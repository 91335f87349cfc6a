package session

import (
	"fmt"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/game/placement"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

func (s *Session) checkEditable() error {
	if s.phase != PhasePlacement || s.shipsSent {
		return apperrors.ErrWrongPhase
	}
	return nil
}

// PlaceShip places a ship on the local board.
func (s *Session) PlaceShip(t board.ShipType, anchor board.Position, o board.Orientation) error {
	return s.run(func() error {
		if err := s.checkEditable(); err != nil {
			return err
		}
		ship := board.NewShip(t, anchor, o)
		if err := s.fleet.Place(s.own, ship); err != nil {
			return err
		}
		s.emit(Event{
			Kind:     EventPlaced,
			Ship:     t,
			Position: anchor,
			Text:     fmt.Sprintf("Placed %s at %s", t, anchor),
		})
		return nil
	})
}

// RemoveShip takes the ship covering pos back off the board.
func (s *Session) RemoveShip(pos board.Position) error {
	return s.run(func() error {
		if err := s.checkEditable(); err != nil {
			return err
		}
		ship, err := s.fleet.Remove(s.own, pos)
		if err != nil {
			return err
		}
		s.emit(Event{
			Kind:     EventRemoved,
			Ship:     ship.Type,
			Position: ship.Anchor,
			Text:     fmt.Sprintf("Removed %s from %s", ship.Type, ship.Anchor),
		})
		return nil
	})
}

// AutoPlace fills the rest of the fleet at random.
func (s *Session) AutoPlace() error {
	return s.run(func() error {
		if err := s.checkEditable(); err != nil {
			return err
		}
		before := len(s.fleet.Ships())
		if !placement.AutoPlace(s.own, s.fleet, s.rng) {
			return apperrors.ErrFleetIncomplete
		}
		for _, ship := range s.fleet.Ships()[before:] {
			s.emit(Event{
				Kind:     EventPlaced,
				Ship:     ship.Type,
				Position: ship.Anchor,
				Text:     fmt.Sprintf("Placed %s at %s", ship.Type, ship.Anchor),
			})
		}
		return nil
	})
}

// ClearFleet removes every placed ship.
func (s *Session) ClearFleet() error {
	return s.run(func() error {
		if err := s.checkEditable(); err != nil {
			return err
		}
		s.fleet.Clear(s.own)
		s.emit(Event{Kind: EventRemoved, Text: "Cleared the fleet"})
		return nil
	})
}

// Ready announces the complete fleet. Battle starts only when the relay
// answers with GAME_START.
func (s *Session) Ready() error {
	return s.run(func() error {
		if s.phase != PhasePlacement {
			return apperrors.ErrWrongPhase
		}
		if !s.fleet.Complete() {
			return apperrors.ErrFleetIncomplete
		}
		if err := s.sendShipsPlaced(); err != nil {
			return err
		}
		if !s.shipsSent {
			s.shipsSent = true
			s.emit(Event{Kind: EventStatus, Text: "Fleet ready, waiting for " + s.opponent})
		}
		return nil
	})
}

func (s *Session) sendShipsPlaced() error {
	manifest := s.fleet.Manifest()
	ships := make([]protocol.ShipInfo, len(manifest))
	for i, t := range manifest {
		ships[i] = protocol.ShipInfo{Type: string(t), Size: board.SizeOf(t)}
	}
	return s.send(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{
		GameID: s.gameID,
		Player: s.opts.Player,
		Ships:  ships,
	})
}
