package relay

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "https://anything.example", true},
		{"listed", []string{"https://play.example"}, "https://play.example", true},
		{"case insensitive", []string{"https://Play.Example"}, "https://play.example", true},
		{"unlisted", []string{"https://play.example"}, "https://evil.example", false},
		{"no header", []string{"https://play.example"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, NewOriginChecker(tt.allowed).Check(r))
		})
	}
}

func TestMessageLimiter(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	ml := NewMessageLimiter(2)
	ml.now = func() time.Time { return now }

	assert.True(t, ml.Allow("a"))
	assert.True(t, ml.Allow("a"))
	assert.False(t, ml.Allow("a"))
	assert.True(t, ml.Allow("b"), "budgets are per connection")

	now = now.Add(time.Second)
	assert.True(t, ml.Allow("a"))

	ml.Remove("a")
	assert.NotContains(t, ml.limits, "a")
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.5")
	assert.Equal(t, "192.0.2.5", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
