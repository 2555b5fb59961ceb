// Package commission holds the thin slice of the commission ledger this
// engine is allowed to touch. Commissions are created and paid out elsewhere;
// the billing engine only flips a record from unpaid to paid when the
// underlying subscriber charge actually collects.
package commission

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPaid
}

type Commission struct {
	id           uint
	subscriberID uint
	agentID      uint
	status       PaymentStatus
	paidDate     *time.Time

	// collectedTransactionID records which gateway transaction marked this
	// commission collected, making the mark idempotent under re-delivery.
	collectedTransactionID *string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// CommissionReconstructParams carries persisted state back into the domain.
type CommissionReconstructParams struct {
	ID                     uint
	SubscriberID           uint
	AgentID                uint
	Status                 PaymentStatus
	PaidDate               *time.Time
	CollectedTransactionID *string
	Version                int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func Reconstruct(p CommissionReconstructParams) *Commission {
	return &Commission{
		id:                     p.ID,
		subscriberID:           p.SubscriberID,
		agentID:                p.AgentID,
		status:                 p.Status,
		paidDate:               p.PaidDate,
		collectedTransactionID: p.CollectedTransactionID,
		version:                p.Version,
		createdAt:              p.CreatedAt,
		updatedAt:              p.UpdatedAt,
	}
}

// MarkCollected flips the commission to paid in response to a successful
// charge. Calling it again with the same transaction id is a no-op; calling
// it on a commission already paid by a different transaction is an error,
// since a commission collects exactly once.
func (c *Commission) MarkCollected(transactionID string, paidAt time.Time) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}

	if c.status == PaymentStatusPaid {
		if c.collectedTransactionID != nil && *c.collectedTransactionID == transactionID {
			return nil
		}
		return fmt.Errorf("commission already collected by transaction %v", c.collectedTransactionID)
	}

	c.status = PaymentStatusPaid
	c.paidDate = &paidAt
	c.collectedTransactionID = &transactionID
	c.updatedAt = paidAt
	c.version++

	return nil
}

func (c *Commission) IsPaid() bool {
	return c.status == PaymentStatusPaid
}

func (c *Commission) ID() uint                         { return c.id }
func (c *Commission) SubscriberID() uint               { return c.subscriberID }
func (c *Commission) AgentID() uint                    { return c.agentID }
func (c *Commission) Status() PaymentStatus            { return c.status }
func (c *Commission) PaidDate() *time.Time             { return c.paidDate }
func (c *Commission) CollectedTransactionID() *string  { return c.collectedTransactionID }
func (c *Commission) Version() int                     { return c.version }
func (c *Commission) CreatedAt() time.Time             { return c.createdAt }
func (c *Commission) UpdatedAt() time.Time             { return c.updatedAt }
