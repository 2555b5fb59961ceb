package billing

import (
	"context"
	"time"
)

// TokenRepository owns stored payment tokens. Tokens are soft-deactivated,
// never deleted.
type TokenRepository interface {
	Create(ctx context.Context, token *PaymentToken) error
	Update(ctx context.Context, token *PaymentToken) error
	GetByID(ctx context.Context, id uint) (*PaymentToken, error)
	// GetActivePrimaryBySubscriber resolves the one token a schedule charges.
	// Returns ErrTokenNotFound when the subscriber has no active primary token.
	GetActivePrimaryBySubscriber(ctx context.Context, subscriberID uint) (*PaymentToken, error)
	ListBySubscriber(ctx context.Context, subscriberID uint) ([]*PaymentToken, error)
	// MakePrimary promotes the given token and demotes its active siblings in
	// one transaction, preserving the single-primary invariant.
	MakePrimary(ctx context.Context, token *PaymentToken) error
}

// ScheduleRepository owns the one-per-subscriber billing schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *BillingSchedule) error
	Update(ctx context.Context, schedule *BillingSchedule) error
	GetByID(ctx context.Context, id uint) (*BillingSchedule, error)
	GetBySubscriberID(ctx context.Context, subscriberID uint) (*BillingSchedule, error)
	// ListDue returns schedules with status=active and nextBillingDate <= asOf.
	// Suspended and paused schedules are never returned regardless of date.
	ListDue(ctx context.Context, asOf time.Time) ([]*BillingSchedule, error)
	// ListFailing returns schedules needing manual review: suspended or with
	// a non-zero failure streak.
	ListFailing(ctx context.Context) ([]*BillingSchedule, error)
}

// AttemptRepository is the append-only audit log. There is deliberately no
// update or delete: compliance export and crash recovery both depend on the
// log being immutable.
type AttemptRepository interface {
	Append(ctx context.Context, attempt *BillingAttempt) error
	// ExistsForSweepDate answers the idempotent-resumption question: has this
	// schedule already been attempted for this sweep date?
	ExistsForSweepDate(ctx context.Context, scheduleID uint, sweepDate time.Time) (bool, error)
	// HasAnyAttempt reports whether the schedule has ever been charged
	// automatically; the first automated charge carries the
	// first-recurring-payment compliance flag.
	HasAnyAttempt(ctx context.Context, scheduleID uint) (bool, error)
	ListBySchedule(ctx context.Context, scheduleID uint) ([]*BillingAttempt, error)
	// ListAll returns the full log ordered by timestamp for compliance export.
	ListAll(ctx context.Context) ([]*BillingAttempt, error)
}

// SweepRunRepository owns the persisted run-lock records.
type SweepRunRepository interface {
	// Acquire atomically records a new run for the date. It fails with
	// ErrSweepAlreadyRunning when a non-terminal, non-stale run exists.
	// Terminal runs never block: re-running after a crash or completion is
	// safe because the attempt log skips already-charged schedules.
	Acquire(ctx context.Context, run *SweepRun) error
	Update(ctx context.Context, run *SweepRun) error
	GetLatestByDate(ctx context.Context, sweepDate time.Time) (*SweepRun, error)
}
