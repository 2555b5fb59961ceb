package billing

import (
	"fmt"
	"time"

	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/shared/biztime"
)

// BillingSchedule is the one-per-subscriber recurring billing record: what to
// charge, with which token, when next, and how the current failure streak
// stands.
type BillingSchedule struct {
	id                  uint
	subscriberID        uint
	tokenID             uint
	amount              vo.Money
	cadence             vo.Cadence
	nextBillingDate     time.Time
	consecutiveFailures int
	status              vo.ScheduleStatus

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewBillingSchedule(subscriberID, tokenID uint, amount vo.Money, cadence vo.Cadence, firstBillingDate time.Time) (*BillingSchedule, error) {
	if subscriberID == 0 {
		return nil, fmt.Errorf("subscriber ID is required")
	}
	if tokenID == 0 {
		return nil, fmt.Errorf("token ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !cadence.IsValid() {
		return nil, fmt.Errorf("invalid cadence: %s", cadence)
	}
	if firstBillingDate.IsZero() {
		return nil, fmt.Errorf("first billing date is required")
	}

	now := biztime.NowUTC()

	return &BillingSchedule{
		subscriberID:    subscriberID,
		tokenID:         tokenID,
		amount:          amount,
		cadence:         cadence,
		nextBillingDate: firstBillingDate,
		status:          vo.ScheduleStatusActive,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// BillingScheduleReconstructParams carries persisted state back into the domain.
type BillingScheduleReconstructParams struct {
	ID                  uint
	SubscriberID        uint
	TokenID             uint
	Amount              vo.Money
	Cadence             vo.Cadence
	NextBillingDate     time.Time
	ConsecutiveFailures int
	Status              vo.ScheduleStatus
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func ReconstructBillingSchedule(p BillingScheduleReconstructParams) *BillingSchedule {
	return &BillingSchedule{
		id:                  p.ID,
		subscriberID:        p.SubscriberID,
		tokenID:             p.TokenID,
		amount:              p.Amount,
		cadence:             p.Cadence,
		nextBillingDate:     p.NextBillingDate,
		consecutiveFailures: p.ConsecutiveFailures,
		status:              p.Status,
		version:             p.Version,
		createdAt:           p.CreatedAt,
		updatedAt:           p.UpdatedAt,
	}
}

// ApplyDecision mutates the schedule according to a retry-policy decision.
// The attempt has already been logged by the caller; this is the only place
// failure counts, status, and the next billing date move together.
func (s *BillingSchedule) ApplyDecision(d RetryDecision) {
	s.consecutiveFailures = d.NextFailures
	s.nextBillingDate = d.NextBillingDate

	switch d.Action {
	case ActionSuspend:
		s.status = vo.ScheduleStatusSuspended
	case ActionClear, ActionRetryLater:
		// status unchanged
	}

	s.updatedAt = biztime.NowUTC()
	s.version++
}

// Pause stops automatic billing without touching the failure streak.
// Triggered externally when a subscription is cancelled or put on hold.
func (s *BillingSchedule) Pause() error {
	if s.status == vo.ScheduleStatusSuspended {
		return fmt.Errorf("cannot pause a suspended schedule")
	}
	if s.status == vo.ScheduleStatusPaused {
		return nil
	}
	s.status = vo.ScheduleStatusPaused
	s.updatedAt = biztime.NowUTC()
	s.version++
	return nil
}

// Resume re-enables a paused schedule.
func (s *BillingSchedule) Resume() error {
	if s.status != vo.ScheduleStatusPaused {
		return fmt.Errorf("can only resume a paused schedule, status is %s", s.status)
	}
	s.status = vo.ScheduleStatusActive
	s.updatedAt = biztime.NowUTC()
	s.version++
	return nil
}

// Reactivate is the operator action that lifts a suspension: the failure
// streak resets to 0 and the next billing date is one cadence period from
// asOf. Reactivating without replacing a still-failing token simply re-enters
// the retry ladder on the next sweep.
func (s *BillingSchedule) Reactivate(asOf time.Time) error {
	if s.status != vo.ScheduleStatusSuspended {
		return fmt.Errorf("can only reactivate a suspended schedule, status is %s", s.status)
	}
	s.status = vo.ScheduleStatusActive
	s.consecutiveFailures = 0
	s.nextBillingDate = s.cadence.Advance(asOf)
	s.updatedAt = biztime.NowUTC()
	s.version++
	return nil
}

// ReplaceToken points the schedule at a different stored token.
func (s *BillingSchedule) ReplaceToken(tokenID uint) error {
	if tokenID == 0 {
		return fmt.Errorf("token ID is required")
	}
	s.tokenID = tokenID
	s.updatedAt = biztime.NowUTC()
	s.version++
	return nil
}

// IsDue reports whether the schedule should be picked up by a sweep running asOf.
func (s *BillingSchedule) IsDue(asOf time.Time) bool {
	return s.status.IsChargeable() && !s.nextBillingDate.After(asOf)
}

func (s *BillingSchedule) SetID(id uint) {
	if s.id == 0 {
		s.id = id
	}
}

func (s *BillingSchedule) ID() uint                  { return s.id }
func (s *BillingSchedule) SubscriberID() uint        { return s.subscriberID }
func (s *BillingSchedule) TokenID() uint             { return s.tokenID }
func (s *BillingSchedule) Amount() vo.Money          { return s.amount }
func (s *BillingSchedule) Cadence() vo.Cadence       { return s.cadence }
func (s *BillingSchedule) NextBillingDate() time.Time { return s.nextBillingDate }
func (s *BillingSchedule) ConsecutiveFailures() int  { return s.consecutiveFailures }
func (s *BillingSchedule) Status() vo.ScheduleStatus { return s.status }
func (s *BillingSchedule) Version() int              { return s.version }
func (s *BillingSchedule) CreatedAt() time.Time      { return s.createdAt }
func (s *BillingSchedule) UpdatedAt() time.Time      { return s.updatedAt }
