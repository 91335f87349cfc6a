package client

import (
	"context"
	"time"

	"github.com/ivanwe2/battleships/internal/logger"
)

// Backoff returns the wait before the given 1-based attempt: base doubled per
// attempt, capped at limit.
func Backoff(base, limit time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}

// reconnect redials with exponential backoff until a link is up, the client
// is closed or the attempts run out.
func (c *Client) reconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		c.setStatus(StatusReconnecting)
		wait := Backoff(c.opts.BaseInterval, c.opts.MaxInterval, attempt)
		logger.LogInfo("reconnecting to %s (%d/%d) in %s", c.opts.URL, attempt, c.opts.MaxAttempts, wait)

		select {
		case <-time.After(wait):
		case <-c.quit:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		err := c.dial(ctx)
		cancel()
		if err != nil {
			logger.LogWarn("reconnect attempt %d failed: %v", attempt, err)
			continue
		}

		c.reconnecting.Store(false)
		if !c.IsConnected() {
			// dropped again before we got here; linkLost could not restart us
			go c.reconnect()
			return
		}
		c.setStatus(StatusConnected)
		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		return
	}

	logger.LogError("giving up on %s after %d attempts", c.opts.URL, c.opts.MaxAttempts)
	c.setStatus(StatusDisconnected)
	if c.OnDisconnect != nil {
		c.OnDisconnect()
	}
}
