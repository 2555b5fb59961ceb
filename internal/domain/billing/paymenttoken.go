package billing

import (
	"fmt"
	"time"

	"planpay/internal/shared/biztime"
)

// PaymentToken is a stored-credential reference (BRIC) issued by the gateway
// at checkout. The raw card number never enters this system; the token plus
// the network transaction id from issuance are all the gateway needs for
// merchant-initiated recurring charges.
type PaymentToken struct {
	id           uint
	tokenRef     string
	subscriberID uint
	cardBrand    string
	lastFour     string
	expMonth     int
	expYear      int
	isPrimary    bool
	isActive     bool

	// networkTransactionID is the card-network transaction id of the
	// transaction that created the token. Card-on-file compliance rules
	// require it on every subsequent merchant-initiated charge.
	networkTransactionID string

	deactivatedReason *string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewPaymentToken(subscriberID uint, tokenRef, cardBrand, lastFour string, expMonth, expYear int, networkTransactionID string) (*PaymentToken, error) {
	if subscriberID == 0 {
		return nil, fmt.Errorf("subscriber ID is required")
	}
	if tokenRef == "" {
		return nil, fmt.Errorf("token reference is required")
	}
	if networkTransactionID == "" {
		return nil, fmt.Errorf("network transaction ID is required")
	}
	if len(lastFour) != 4 {
		return nil, fmt.Errorf("last four must be exactly 4 digits")
	}
	if expMonth < 1 || expMonth > 12 {
		return nil, fmt.Errorf("invalid expiry month: %d", expMonth)
	}

	now := biztime.NowUTC()

	return &PaymentToken{
		tokenRef:             tokenRef,
		subscriberID:         subscriberID,
		cardBrand:            cardBrand,
		lastFour:             lastFour,
		expMonth:             expMonth,
		expYear:              expYear,
		isPrimary:            true,
		isActive:             true,
		networkTransactionID: networkTransactionID,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// PaymentTokenReconstructParams carries persisted state back into the domain.
type PaymentTokenReconstructParams struct {
	ID                   uint
	TokenRef             string
	SubscriberID         uint
	CardBrand            string
	LastFour             string
	ExpMonth             int
	ExpYear              int
	IsPrimary            bool
	IsActive             bool
	NetworkTransactionID string
	DeactivatedReason    *string
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func ReconstructPaymentToken(p PaymentTokenReconstructParams) *PaymentToken {
	return &PaymentToken{
		id:                   p.ID,
		tokenRef:             p.TokenRef,
		subscriberID:         p.SubscriberID,
		cardBrand:            p.CardBrand,
		lastFour:             p.LastFour,
		expMonth:             p.ExpMonth,
		expYear:              p.ExpYear,
		isPrimary:            p.IsPrimary,
		isActive:             p.IsActive,
		networkTransactionID: p.NetworkTransactionID,
		deactivatedReason:    p.DeactivatedReason,
		version:              p.Version,
		createdAt:            p.CreatedAt,
		updatedAt:            p.UpdatedAt,
	}
}

// Deactivate soft-retires the token. Tokens are never hard-deleted; the audit
// trail references them indefinitely.
func (t *PaymentToken) Deactivate(reason string) {
	if !t.isActive {
		return
	}
	t.isActive = false
	t.isPrimary = false
	t.deactivatedReason = &reason
	t.updatedAt = biztime.NowUTC()
	t.version++
}

// MarkPrimary flags this token as the one schedules resolve to.
// The repository demotes sibling tokens in the same transaction so the
// one-primary-per-subscriber invariant holds.
func (t *PaymentToken) MarkPrimary() error {
	if !t.isActive {
		return fmt.Errorf("cannot mark inactive token as primary")
	}
	t.isPrimary = true
	t.updatedAt = biztime.NowUTC()
	t.version++
	return nil
}

func (t *PaymentToken) Demote() {
	if !t.isPrimary {
		return
	}
	t.isPrimary = false
	t.updatedAt = biztime.NowUTC()
	t.version++
}

// IsExpired reports whether the card behind the token is past its expiry as of the given time.
func (t *PaymentToken) IsExpired(asOf time.Time) bool {
	if t.expYear == 0 {
		return false
	}
	// Card is valid through the last day of the expiry month.
	endOfExpiry := time.Date(t.expYear, time.Month(t.expMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return !asOf.Before(endOfExpiry)
}

// IsChargeable reports whether the schedule may charge this token.
func (t *PaymentToken) IsChargeable() bool {
	return t.isActive && t.isPrimary
}

func (t *PaymentToken) SetID(id uint) {
	if t.id == 0 {
		t.id = id
	}
}

func (t *PaymentToken) ID() uint                     { return t.id }
func (t *PaymentToken) TokenRef() string             { return t.tokenRef }
func (t *PaymentToken) SubscriberID() uint           { return t.subscriberID }
func (t *PaymentToken) CardBrand() string            { return t.cardBrand }
func (t *PaymentToken) LastFour() string             { return t.lastFour }
func (t *PaymentToken) ExpMonth() int                { return t.expMonth }
func (t *PaymentToken) ExpYear() int                 { return t.expYear }
func (t *PaymentToken) IsPrimary() bool              { return t.isPrimary }
func (t *PaymentToken) IsActive() bool               { return t.isActive }
func (t *PaymentToken) NetworkTransactionID() string { return t.networkTransactionID }
func (t *PaymentToken) DeactivatedReason() *string   { return t.deactivatedReason }
func (t *PaymentToken) Version() int                 { return t.version }
func (t *PaymentToken) CreatedAt() time.Time         { return t.createdAt }
func (t *PaymentToken) UpdatedAt() time.Time         { return t.updatedAt }
