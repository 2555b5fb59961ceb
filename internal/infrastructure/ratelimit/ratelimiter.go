// Package ratelimit throttles the admin endpoints that reach the card gateway.
package ratelimit

import "time"

// Limit is a sliding-window cap: at most Requests calls per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// ChargeLimit bounds manual charge and token-replacement calls per operator.
// The gateway bills per transaction, so a runaway client is real money.
var ChargeLimit = Limit{Requests: 30, Window: time.Minute}

type RateLimiter interface {
	Allow(key string, limit Limit) (bool, error)
	Remaining(key string, limit Limit) (int64, error)
	Reset(key string) error
}
