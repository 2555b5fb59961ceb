package billing

import (
	"fmt"
	"time"

	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/shared/biztime"
)

// BillingAttempt is one append-only audit record per gateway call. Every
// attempt — success or failure — is written before the schedule mutates, so
// the log doubles as the crash-recovery ledger: a row for (schedule, sweep
// date) means that schedule is done for the day.
type BillingAttempt struct {
	id           uint
	scheduleID   uint
	subscriberID uint
	sweepDate    time.Time
	// attemptNumber is the position within the current failure streak:
	// 1 for a fresh schedule, 3 for the attempt that follows two failures.
	attemptNumber int
	outcome       vo.AttemptOutcome
	responseCode  string
	reason        string

	// gatewayTransactionID is set on approval only.
	gatewayTransactionID *string
	networkTransactionID *string

	// requestPayload and responsePayload are JSON snapshots retained for
	// compliance export. Card data never appears in either; the request
	// carries only the opaque token.
	requestPayload  []byte
	responsePayload []byte

	nextRetryDate *time.Time
	createdAt     time.Time
}

// NewBillingAttemptParams collects the fields for a new audit record.
type NewBillingAttemptParams struct {
	ScheduleID           uint
	SubscriberID         uint
	SweepDate            time.Time
	AttemptNumber        int
	Outcome              vo.AttemptOutcome
	ResponseCode         string
	Reason               string
	GatewayTransactionID *string
	NetworkTransactionID *string
	RequestPayload       []byte
	ResponsePayload      []byte
	NextRetryDate        *time.Time
}

func NewBillingAttempt(p NewBillingAttemptParams) (*BillingAttempt, error) {
	if p.ScheduleID == 0 {
		return nil, fmt.Errorf("schedule ID is required")
	}
	if p.SubscriberID == 0 {
		return nil, fmt.Errorf("subscriber ID is required")
	}
	if p.SweepDate.IsZero() {
		return nil, fmt.Errorf("sweep date is required")
	}
	if !p.Outcome.IsValid() {
		return nil, fmt.Errorf("invalid outcome: %s", p.Outcome)
	}
	if p.AttemptNumber < 1 {
		return nil, fmt.Errorf("attempt number must be at least 1")
	}
	if p.Outcome.IsSuccess() && p.GatewayTransactionID == nil {
		return nil, fmt.Errorf("successful attempt requires a gateway transaction ID")
	}

	return &BillingAttempt{
		scheduleID:           p.ScheduleID,
		subscriberID:         p.SubscriberID,
		sweepDate:            p.SweepDate,
		attemptNumber:        p.AttemptNumber,
		outcome:              p.Outcome,
		responseCode:         p.ResponseCode,
		reason:               p.Reason,
		gatewayTransactionID: p.GatewayTransactionID,
		networkTransactionID: p.NetworkTransactionID,
		requestPayload:       p.RequestPayload,
		responsePayload:      p.ResponsePayload,
		nextRetryDate:        p.NextRetryDate,
		createdAt:            biztime.NowUTC(),
	}, nil
}

// BillingAttemptReconstructParams carries persisted state back into the domain.
type BillingAttemptReconstructParams struct {
	ID                   uint
	ScheduleID           uint
	SubscriberID         uint
	SweepDate            time.Time
	AttemptNumber        int
	Outcome              vo.AttemptOutcome
	ResponseCode         string
	Reason               string
	GatewayTransactionID *string
	NetworkTransactionID *string
	RequestPayload       []byte
	ResponsePayload      []byte
	NextRetryDate        *time.Time
	CreatedAt            time.Time
}

func ReconstructBillingAttempt(p BillingAttemptReconstructParams) *BillingAttempt {
	return &BillingAttempt{
		id:                   p.ID,
		scheduleID:           p.ScheduleID,
		subscriberID:         p.SubscriberID,
		sweepDate:            p.SweepDate,
		attemptNumber:        p.AttemptNumber,
		outcome:              p.Outcome,
		responseCode:         p.ResponseCode,
		reason:               p.Reason,
		gatewayTransactionID: p.GatewayTransactionID,
		networkTransactionID: p.NetworkTransactionID,
		requestPayload:       p.RequestPayload,
		responsePayload:      p.ResponsePayload,
		nextRetryDate:        p.NextRetryDate,
		createdAt:            p.CreatedAt,
	}
}

func (a *BillingAttempt) SetID(id uint) {
	if a.id == 0 {
		a.id = id
	}
}

func (a *BillingAttempt) ID() uint                       { return a.id }
func (a *BillingAttempt) ScheduleID() uint               { return a.scheduleID }
func (a *BillingAttempt) SubscriberID() uint             { return a.subscriberID }
func (a *BillingAttempt) SweepDate() time.Time           { return a.sweepDate }
func (a *BillingAttempt) AttemptNumber() int             { return a.attemptNumber }
func (a *BillingAttempt) Outcome() vo.AttemptOutcome     { return a.outcome }
func (a *BillingAttempt) ResponseCode() string           { return a.responseCode }
func (a *BillingAttempt) Reason() string                 { return a.reason }
func (a *BillingAttempt) GatewayTransactionID() *string  { return a.gatewayTransactionID }
func (a *BillingAttempt) NetworkTransactionID() *string  { return a.networkTransactionID }
func (a *BillingAttempt) RequestPayload() []byte         { return a.requestPayload }
func (a *BillingAttempt) ResponsePayload() []byte        { return a.responsePayload }
func (a *BillingAttempt) NextRetryDate() *time.Time      { return a.nextRetryDate }
func (a *BillingAttempt) CreatedAt() time.Time           { return a.createdAt }
