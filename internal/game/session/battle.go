package session

import (
	"fmt"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// Attack fires a single shot at the opponent.
func (s *Session) Attack(pos board.Position) error {
	return s.run(func() error {
		return s.fire(pos, attack.None)
	})
}

// SpecialAttack fires an area munition anchored at pos.
func (s *Session) SpecialAttack(m attack.Munition, pos board.Position) error {
	return s.run(func() error {
		if !m.IsSpecial() {
			return apperrors.ErrNoMunitions
		}
		return s.fire(pos, m)
	})
}

// SelectMunition arms a munition for the next Fire. attack.None disarms.
func (s *Session) SelectMunition(m attack.Munition) error {
	return s.run(func() error {
		if s.phase != PhaseBattle {
			return apperrors.ErrWrongPhase
		}
		if s.turns.Active() != s.opts.Player {
			return apperrors.ErrNotYourTurn
		}
		if !s.munitions.Available(m) {
			return apperrors.ErrNoMunitions
		}
		s.turns.Select(m)
		s.emit(Event{Kind: EventStatus, Munition: m, Text: "Selected " + string(m)})
		return nil
	})
}

// Fire shoots at pos with whatever munition is armed.
func (s *Session) Fire(pos board.Position) error {
	return s.run(func() error {
		return s.fire(pos, s.turns.Selected())
	})
}

func (s *Session) fire(pos board.Position, m attack.Munition) error {
	if s.phase != PhaseBattle {
		return apperrors.ErrWrongPhase
	}
	if s.turns.Active() != s.opts.Player {
		return apperrors.ErrNotYourTurn
	}
	if s.awaiting {
		return apperrors.ErrAwaitingResult
	}
	if !s.target.InBounds(pos) {
		return apperrors.ErrOutOfBounds
	}

	if m.IsSpecial() {
		if !s.munitions.Available(m) {
			return apperrors.ErrNoMunitions
		}
		fresh := false
		for _, c := range attack.Pattern(m, pos, s.target.Size()) {
			if !s.record.Has(c) {
				fresh = true
				break
			}
		}
		if !fresh {
			return apperrors.ErrDuplicateAttack
		}
	} else if s.record.Has(pos) {
		return apperrors.ErrDuplicateAttack
	}

	if err := s.sendShot(pos, m); err != nil {
		return err
	}
	if m.IsSpecial() {
		_ = s.munitions.Use(m)
		s.turns.Select(attack.None)
	}
	s.inflight[pos] = m
	s.awaiting = true
	s.emit(Event{Kind: EventStatus, Position: pos, Munition: m, Text: "Fired at " + pos.String()})
	return nil
}

func (s *Session) sendShot(pos board.Position, m attack.Munition) error {
	if m.IsSpecial() {
		return s.send(protocol.MsgSpecialAttack, protocol.SpecialAttackPayload{
			GameID:      s.gameID,
			Attacker:    s.opts.Player,
			Defender:    s.opponent,
			Position:    pos,
			SpecialType: string(m),
		})
	}
	return s.send(protocol.MsgAttack, protocol.AttackPayload{
		GameID:   s.gameID,
		Attacker: s.opts.Player,
		Defender: s.opponent,
		Position: pos,
	})
}

// --- defending ---

func (s *Session) checkShotAddressing(attacker, defender string) error {
	if defender != s.opts.Player || attacker != s.opponent {
		return fmt.Errorf("%w: shot from %q at %q", apperrors.ErrMalformedMessage, attacker, defender)
	}
	return nil
}

// checkShooterTurn rejects fresh shots unless the attacker holds the turn.
// Replays are answered before this check.
func (s *Session) checkShooterTurn(attacker string) error {
	if s.phase != PhaseBattle {
		return apperrors.ErrWrongPhase
	}
	if s.turns.Active() != attacker {
		return fmt.Errorf("%w: %s shot during %s's turn", apperrors.ErrNotYourTurn, attacker, s.turns.Active())
	}
	return nil
}

func (s *Session) handleAttack(p *protocol.AttackPayload) error {
	if err := s.checkShotAddressing(p.Attacker, p.Defender); err != nil {
		return err
	}
	if s.defense == nil || (s.phase != PhaseBattle && s.phase != PhaseGameOver) {
		return apperrors.ErrWrongPhase
	}

	if stored, ok := s.defense.Result(p.Position); ok {
		// replay: answer again, change nothing
		s.replyResult(p.Attacker, p.Position, attack.None, []attack.Outcome{stored})
		return nil
	}
	if err := s.checkShooterTurn(p.Attacker); err != nil {
		return err
	}

	out, err := s.defense.Receive(p.Position)
	if err != nil {
		return err
	}
	s.afterDefense(p.Attacker, p.Position, attack.None, []attack.Outcome{out})
	return nil
}

func (s *Session) handleSpecialAttack(p *protocol.SpecialAttackPayload) error {
	if err := s.checkShotAddressing(p.Attacker, p.Defender); err != nil {
		return err
	}
	m, err := attack.ParseMunition(p.SpecialType)
	if err != nil {
		return err
	}
	if s.defense == nil || (s.phase != PhaseBattle && s.phase != PhaseGameOver) {
		return apperrors.ErrWrongPhase
	}

	cells := attack.Pattern(m, p.Position, s.own.Size())
	replay := len(cells) > 0
	stored := make([]attack.Outcome, 0, len(cells))
	for _, c := range cells {
		out, ok := s.defense.Result(c)
		if !ok {
			replay = false
			break
		}
		stored = append(stored, out)
	}
	if replay {
		s.replyResult(p.Attacker, p.Position, m, stored)
		return nil
	}
	if err := s.checkShooterTurn(p.Attacker); err != nil {
		return err
	}

	outs, err := s.defense.ReceiveArea(p.Position, m)
	if err != nil {
		return err
	}
	if err := s.oppMunitions.Use(m); err != nil {
		logger.LogWarn("%s fired %s with none left", p.Attacker, m)
	}
	s.afterDefense(p.Attacker, p.Position, m, outs)
	return nil
}

// afterDefense reports freshly resolved cells, answers the attacker and
// applies the turn policy.
func (s *Session) afterDefense(attacker string, anchor board.Position, m attack.Munition, outs []attack.Outcome) {
	anyHit := false
	for _, o := range outs {
		if o.Hit {
			anyHit = true
			s.emit(Event{Kind: EventHit, Player: attacker, Position: o.Position, Munition: m,
				Text: fmt.Sprintf("%s hit you at %s", attacker, o.Position)})
		} else {
			s.emit(Event{Kind: EventMiss, Player: attacker, Position: o.Position, Munition: m,
				Text: fmt.Sprintf("%s missed at %s", attacker, o.Position)})
		}
		if o.Destroyed != "" {
			s.emit(Event{Kind: EventDestroyed, Player: attacker, Position: o.Position, Ship: o.Destroyed,
				Text: fmt.Sprintf("Your %s was sunk", o.Destroyed)})
		}
	}

	s.replyResult(attacker, anchor, m, outs)

	if s.defense.AllSunk() {
		err := s.send(protocol.MsgGameOver, protocol.GameOverPayload{GameID: s.gameID, Winner: attacker})
		if err != nil {
			logger.LogWarn("could not announce game over: %v", err)
		}
		s.finish(attacker)
		return
	}

	if anyHit {
		s.turns.Give(attacker)
	} else {
		s.turns.Give(s.opts.Player)
	}
	s.emitTurn()
}

func (s *Session) replyResult(attacker string, anchor board.Position, m attack.Munition, outs []attack.Outcome) {
	res := protocol.AttackResultPayload{
		GameID:   s.gameID,
		Attacker: attacker,
		Defender: s.opts.Player,
		Position: anchor,
	}
	if m.IsSpecial() {
		res.SpecialType = string(m)
	}
	for _, o := range outs {
		res.Hit = res.Hit || o.Hit
		if res.ShipDestroyed == nil {
			res.ShipDestroyed = protocol.StrPtr(string(o.Destroyed))
		}
		if m.IsSpecial() {
			res.Cells = append(res.Cells, protocol.CellResult{
				Position:      o.Position,
				Hit:           o.Hit,
				ShipDestroyed: protocol.StrPtr(string(o.Destroyed)),
			})
		}
	}
	if err := s.send(protocol.MsgAttackResult, res); err != nil {
		// the attacker replays the shot after reconnecting
		logger.LogWarn("could not send result for %s: %v", anchor, err)
	}
}

// --- attacking ---

func (s *Session) handleAttackResult(p *protocol.AttackResultPayload) error {
	if p.Attacker != s.opts.Player {
		return fmt.Errorf("%w: result for %q", apperrors.ErrMalformedMessage, p.Attacker)
	}
	if s.phase != PhaseBattle {
		return apperrors.ErrWrongPhase
	}
	m, ok := s.inflight[p.Position]
	if !ok {
		if s.record.Has(p.Position) {
			return nil // duplicate result
		}
		return fmt.Errorf("%w: unexpected result for %s", apperrors.ErrMalformedMessage, p.Position)
	}
	delete(s.inflight, p.Position)
	s.awaiting = false

	var outs []attack.Outcome
	if len(p.Cells) > 0 {
		for _, c := range p.Cells {
			outs = append(outs, attack.Outcome{
				Position:  c.Position,
				Hit:       c.Hit,
				Destroyed: board.ShipType(protocol.StrVal(c.ShipDestroyed)),
				Munition:  m,
			})
		}
	} else {
		outs = []attack.Outcome{{
			Position:  p.Position,
			Hit:       p.Hit,
			Destroyed: board.ShipType(protocol.StrVal(p.ShipDestroyed)),
			Munition:  m,
		}}
	}

	anyHit := false
	for _, o := range outs {
		if !s.target.InBounds(o.Position) || s.record.Add(o) != nil {
			continue
		}
		state := board.CellMiss
		if o.Hit {
			state = board.CellHit
			anyHit = true
			s.emit(Event{Kind: EventHit, Player: s.opts.Player, Position: o.Position, Munition: m,
				Text: "Hit at " + o.Position.String()})
		} else {
			s.emit(Event{Kind: EventMiss, Player: s.opts.Player, Position: o.Position, Munition: m,
				Text: "Miss at " + o.Position.String()})
		}
		_ = s.target.SetCell(o.Position, state)
		if o.Destroyed != "" {
			s.emit(Event{Kind: EventDestroyed, Player: s.opts.Player, Position: o.Position, Ship: o.Destroyed,
				Text: fmt.Sprintf("You sank their %s", o.Destroyed)})
		}
	}

	if s.oppFleetSize > 0 && s.record.Destroyed() >= s.oppFleetSize {
		s.finish(s.opts.Player)
		return nil
	}

	if anyHit {
		s.turns.Give(s.opts.Player)
	} else {
		s.turns.Give(s.opponent)
	}
	s.emitTurn()
	return nil
}

func (s *Session) handleGameOver(p *protocol.GameOverPayload) error {
	switch s.phase {
	case PhaseBattle:
		s.finish(p.Winner)
		return nil
	case PhaseGameOver:
		return nil
	default:
		return apperrors.ErrWrongPhase
	}
}

// handleTurnExpired runs after the scheduler already passed the turn on.
// A result or shot handled between the expiry and this call has restarted
// the countdown, and then the expiry is stale.
func (s *Session) handleTurnExpired(next string, gen uint64) {
	_ = s.run(func() error {
		if s.phase != PhaseBattle || s.turns.Generation() != gen {
			return nil
		}
		// a late result for the forfeited shot is still applied
		s.awaiting = false
		text := "Time is up, your turn"
		if next != s.opts.Player {
			text = "Time is up, " + next + "'s turn"
		}
		s.emit(Event{Kind: EventTurn, Player: next, Text: text})
		return nil
	})
}

func (s *Session) emitTurn() {
	active := s.turns.Active()
	text := "Your turn"
	if active != s.opts.Player {
		text = active + "'s turn"
	}
	s.emit(Event{Kind: EventTurn, Player: active, Text: text})
}
