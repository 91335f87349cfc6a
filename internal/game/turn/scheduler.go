// Package turn owns whose turn it is and the per-turn countdown.
package turn

import (
	"sync"
	"time"

	"github.com/ivanwe2/battleships/internal/game/attack"
)

// DefaultTimeout is the countdown for one turn.
const DefaultTimeout = 60 * time.Second

// Timer is the subset of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// Clock creates timers and tells the time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
func (realClock) Now() time.Time                            { return time.Now() }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocker makes countdown expiry run while holding l, so expiry is
// serialized with everything else the owner of l does.
func WithLocker(l sync.Locker) Option {
	return func(s *Scheduler) { s.guard = l }
}

// Scheduler alternates the turn between two players and forfeits the turn of
// a player whose countdown runs out.
type Scheduler struct {
	timeout time.Duration
	clock   Clock
	guard   sync.Locker

	timerMu    sync.Mutex
	players    [2]string
	active     int
	running    bool
	generation uint64
	timer      Timer
	startTime  time.Time
	selected   attack.Munition
	onExpire   func(next string, gen uint64)
}

// New creates a stopped scheduler. A non-positive timeout means
// DefaultTimeout.
func New(timeout time.Duration, opts ...Option) *Scheduler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Scheduler{
		timeout:  timeout,
		clock:    realClock{},
		selected: attack.None,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnExpire registers fn to run after a countdown ran out and the turn has
// passed to next. fn runs without any scheduler lock held; gen is the
// generation the expiry produced, so fn can compare it with Generation and
// drop the call if the turn moved on in between.
func (s *Scheduler) OnExpire(fn func(next string, gen uint64)) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.onExpire = fn
}

// Start gives the turn to first and starts the countdown.
func (s *Scheduler) Start(first, second string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	s.players = [2]string{first, second}
	s.active = 0
	s.running = true
	s.selected = attack.None
	s.restartLocked()
}

// Switch passes the turn to the other player, clears any pending munition
// selection and restarts the countdown. It returns the new active player.
func (s *Scheduler) Switch() string {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return ""
	}
	s.switchLocked()
	return s.players[s.active]
}

// Give hands the turn to player and restarts the countdown. The munition
// selection is cleared if the turn changes hands. Unknown players are
// ignored.
func (s *Scheduler) Give(player string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return
	}
	switch player {
	case s.players[s.active]:
		s.restartLocked()
	case s.players[1-s.active]:
		s.switchLocked()
	}
}

// Continue keeps the turn with the active player and restarts the countdown.
func (s *Scheduler) Continue() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return
	}
	s.restartLocked()
}

// Stop cancels the countdown. Any timer already in flight becomes a no-op.
func (s *Scheduler) Stop() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	s.running = false
	s.generation++
	s.stopTimerLocked()
	s.selected = attack.None
}

// Running reports whether a countdown is active.
func (s *Scheduler) Running() bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.running
}

// Active returns the player whose turn it is, or "" when stopped.
func (s *Scheduler) Active() string {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return ""
	}
	return s.players[s.active]
}

// Deadline returns when the current turn is forfeited.
func (s *Scheduler) Deadline() time.Time {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.startTime.Add(s.timeout)
}

// Remaining returns the time left in the current turn, never negative.
func (s *Scheduler) Remaining() time.Duration {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if !s.running {
		return 0
	}
	left := s.timeout - s.clock.Now().Sub(s.startTime)
	if left < 0 {
		return 0
	}
	return left
}

// Generation increases every time the countdown restarts or stops.
func (s *Scheduler) Generation() uint64 {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.generation
}

// Timeout returns the configured countdown length.
func (s *Scheduler) Timeout() time.Duration {
	return s.timeout
}

// Select arms a special munition for the active player's next shot.
func (s *Scheduler) Select(m attack.Munition) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.selected = m
}

// Selected returns the armed munition, attack.None if nothing is armed.
func (s *Scheduler) Selected() attack.Munition {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.selected
}

// --- internals, timerMu held ---

func (s *Scheduler) switchLocked() {
	s.active = 1 - s.active
	s.selected = attack.None
	s.restartLocked()
}

func (s *Scheduler) restartLocked() {
	s.stopTimerLocked()
	s.generation++
	gen := s.generation
	s.startTime = s.clock.Now()
	s.timer = s.clock.AfterFunc(s.timeout, func() {
		s.expire(gen)
	})
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) expire(gen uint64) {
	if s.guard != nil {
		s.guard.Lock()
	}
	s.timerMu.Lock()
	if !s.running || gen != s.generation {
		s.timerMu.Unlock()
		if s.guard != nil {
			s.guard.Unlock()
		}
		return
	}
	s.switchLocked()
	next := s.players[s.active]
	current := s.generation
	cb := s.onExpire
	s.timerMu.Unlock()
	if s.guard != nil {
		s.guard.Unlock()
	}

	if cb != nil {
		cb(next, current)
	}
}
