package relay

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OriginChecker validates the Origin header of websocket upgrades.
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker builds a checker. "*" allows every origin.
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check reports whether the request may upgrade. Requests without an Origin
// header come from terminal clients and are allowed.
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// MessageLimiter caps how many messages each connection may send per second.
type MessageLimiter struct {
	mu     sync.Mutex
	limits map[string]*messageRate
	max    int
	now    func() time.Time
}

type messageRate struct {
	count     int
	lastReset time.Time
}

// NewMessageLimiter allows maxPerSecond messages per connection.
func NewMessageLimiter(maxPerSecond int) *MessageLimiter {
	return &MessageLimiter{
		limits: make(map[string]*messageRate),
		max:    maxPerSecond,
		now:    time.Now,
	}
}

// Allow counts one message from id and reports whether it is within budget.
func (ml *MessageLimiter) Allow(id string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	rate, ok := ml.limits[id]
	if !ok || now.Sub(rate.lastReset) >= time.Second {
		ml.limits[id] = &messageRate{count: 1, lastReset: now}
		return true
	}
	rate.count++
	return rate.count <= ml.max
}

// Remove forgets id.
func (ml *MessageLimiter) Remove(id string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, id)
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
