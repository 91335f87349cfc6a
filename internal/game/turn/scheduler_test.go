package turn

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanwe2/battleships/internal/game/attack"
)

func TestScheduler_StartAndSwitch(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(60*time.Second, WithClock(clock))

	assert.Equal(t, "", s.Active())
	s.Start("alice", "bob")
	assert.Equal(t, "alice", s.Active())
	assert.Equal(t, 60*time.Second, s.Remaining())

	clock.Advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, s.Remaining())

	assert.Equal(t, "bob", s.Switch())
	assert.Equal(t, 60*time.Second, s.Remaining(), "switch resets the countdown")
	assert.Equal(t, clock.Now().Add(60*time.Second), s.Deadline())
}

func TestScheduler_TimeoutSwitchesAndResets(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(60*time.Second, WithClock(clock))

	var expired []string
	s.OnExpire(func(next string, _ uint64) { expired = append(expired, next) })
	s.Start("alice", "bob")

	clock.Advance(59 * time.Second)
	assert.Equal(t, "alice", s.Active())
	assert.Empty(t, expired)

	clock.Advance(time.Second)
	assert.Equal(t, "bob", s.Active())
	assert.Equal(t, []string{"bob"}, expired)
	assert.Equal(t, 60*time.Second, s.Remaining())

	clock.Advance(60 * time.Second)
	assert.Equal(t, "alice", s.Active())
	assert.Equal(t, []string{"bob", "alice"}, expired)
}

func TestScheduler_ExpiryReportsGeneration(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(10*time.Second, WithClock(clock))

	var gens []uint64
	s.OnExpire(func(_ string, gen uint64) { gens = append(gens, gen) })
	s.Start("alice", "bob")

	clock.Advance(10 * time.Second)
	require.Len(t, gens, 1)
	assert.Equal(t, s.Generation(), gens[0])

	s.Continue()
	assert.NotEqual(t, s.Generation(), gens[0], "a restart makes the reported generation stale")
}

func TestScheduler_ContinueKeepsTurn(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(60*time.Second, WithClock(clock))
	s.Start("alice", "bob")

	clock.Advance(50 * time.Second)
	s.Continue()
	assert.Equal(t, "alice", s.Active())
	assert.Equal(t, 60*time.Second, s.Remaining())

	// the original deadline passes without effect
	clock.Advance(15 * time.Second)
	assert.Equal(t, "alice", s.Active())
}

func TestScheduler_Give(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(60*time.Second, WithClock(clock))
	s.Start("alice", "bob")
	s.Select(attack.AreaB)

	clock.Advance(30 * time.Second)
	s.Give("alice")
	assert.Equal(t, "alice", s.Active())
	assert.Equal(t, attack.AreaB, s.Selected())
	assert.Equal(t, 60*time.Second, s.Remaining())

	s.Give("bob")
	assert.Equal(t, "bob", s.Active())
	assert.Equal(t, attack.None, s.Selected())

	s.Give("mallory")
	assert.Equal(t, "bob", s.Active())
}

func TestScheduler_StaleTimerIsNoop(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(10*time.Second, WithClock(clock))
	s.Start("alice", "bob")

	s.Switch()
	clock.FireStale(0)

	assert.Equal(t, "bob", s.Active())
}

func TestScheduler_StopCancels(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	s := New(10*time.Second, WithClock(clock))

	called := false
	s.OnExpire(func(string, uint64) { called = true })
	s.Start("alice", "bob")
	s.Stop()

	clock.Advance(time.Minute)
	assert.False(t, called)
	assert.False(t, s.Running())
	assert.Equal(t, "", s.Active())
	assert.Equal(t, time.Duration(0), s.Remaining())
	assert.Equal(t, "", s.Switch())
}

func TestScheduler_SelectionClearedOnSwitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		after func(s *Scheduler, c *ManualClock)
		want  attack.Munition
	}{
		{"switch", func(s *Scheduler, _ *ManualClock) { s.Switch() }, attack.None},
		{"timeout", func(_ *Scheduler, c *ManualClock) { c.Advance(time.Minute) }, attack.None},
		{"continue keeps it", func(s *Scheduler, _ *ManualClock) { s.Continue() }, attack.AreaA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewManualClock()
			s := New(time.Minute, WithClock(clock))
			s.Start("alice", "bob")
			s.Select(attack.AreaA)
			require.Equal(t, attack.AreaA, s.Selected())

			tt.after(s, clock)
			assert.Equal(t, tt.want, s.Selected())
		})
	}
}

func TestScheduler_RealClock(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	s := New(20*time.Millisecond, WithLocker(&mu))

	var fired atomic.Int32
	s.OnExpire(func(string, uint64) { fired.Add(1) })
	s.Start("alice", "bob")

	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	mu.Lock()
	active := s.Active()
	mu.Unlock()
	assert.Equal(t, "", active)
}

func TestNew_DefaultTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultTimeout, New(0).Timeout())
}
