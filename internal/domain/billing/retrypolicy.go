package billing

import (
	"time"

	vo "planpay/internal/domain/billing/valueobjects"
)

// MaxConsecutiveFailures is the streak length that forces suspension.
const MaxConsecutiveFailures = 3

// retryOffsets maps the new failure count to the fixed retry delay.
var retryOffsets = map[int]time.Duration{
	1: 3 * 24 * time.Hour,
	2: 7 * 24 * time.Hour,
	3: 14 * 24 * time.Hour,
}

// RetryAction is what the sweep does to a schedule after an attempt.
type RetryAction string

const (
	// ActionClear resets the failure streak and advances one cadence period.
	ActionClear RetryAction = "clear"
	// ActionRetryLater bumps the streak and reschedules at a fixed offset.
	ActionRetryLater RetryAction = "retry_later"
	// ActionSuspend halts automatic billing until an operator reactivates.
	ActionSuspend RetryAction = "suspend"
)

// RetryDecision is the outcome of the retry/suspension policy for one attempt.
type RetryDecision struct {
	Action          RetryAction
	NextFailures    int
	NextBillingDate time.Time
}

// Decide is the retry/suspension policy. It is a pure function: no clock
// reads, no I/O. On success the schedule advances one cadence period from the
// original due date, not from asOf, so billing dates never drift. On failure
// the retry date is a fixed offset from asOf keyed by the new failure count:
// 3 days after the 1st failure, 7 after the 2nd, 14 after the 3rd. The 3rd
// consecutive failure also suspends the schedule.
func Decide(currentFailures int, outcome vo.AttemptOutcome, cadence vo.Cadence, dueDate, asOf time.Time) RetryDecision {
	if outcome.IsSuccess() {
		return RetryDecision{
			Action:          ActionClear,
			NextFailures:    0,
			NextBillingDate: cadence.Advance(dueDate),
		}
	}

	nextFailures := currentFailures + 1
	if nextFailures > MaxConsecutiveFailures {
		nextFailures = MaxConsecutiveFailures
	}

	decision := RetryDecision{
		Action:          ActionRetryLater,
		NextFailures:    nextFailures,
		NextBillingDate: asOf.Add(retryOffsets[nextFailures]),
	}

	if nextFailures >= MaxConsecutiveFailures {
		decision.Action = ActionSuspend
	}

	return decision
}
