package billing

import "errors"

var (
	// ErrGatewayAuth means the gateway rejected our credentials or signature.
	// This is a configuration problem, not a per-subscriber problem: the
	// entire sweep aborts and an operational alert goes out.
	ErrGatewayAuth = errors.New("gateway authentication failed")

	// ErrNoActiveToken means the subscriber has no active primary token.
	// Treated as a terminal decline for the cycle, not a transient error,
	// since retrying without a valid payment method cannot succeed.
	ErrNoActiveToken = errors.New("no active payment token for subscriber")

	// ErrAlreadyAttemptedToday guards the same-day idempotency invariant:
	// one gateway call per schedule per sweep date, whether driven by the
	// sweep or a manual trigger.
	ErrAlreadyAttemptedToday = errors.New("schedule already attempted for this sweep date")

	// ErrSweepAlreadyRunning means another sweep holds the run lock for today.
	ErrSweepAlreadyRunning = errors.New("a sweep is already running for this date")

	ErrScheduleNotFound = errors.New("billing schedule not found")
	ErrTokenNotFound    = errors.New("payment token not found")
)
