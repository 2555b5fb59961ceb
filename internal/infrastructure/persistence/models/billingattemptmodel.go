package models

import (
	"time"

	"gorm.io/datatypes"
)

// BillingAttemptModel is append-only: rows are inserted by the sweep and never
// updated or deleted. The (schedule, sweep date) unique index is what makes a
// replayed sweep idempotent at the database level.
type BillingAttemptModel struct {
	ID                   uint      `gorm:"primaryKey"`
	ScheduleID           uint      `gorm:"uniqueIndex:idx_schedule_sweep_date;not null"`
	SubscriberID         uint      `gorm:"index;not null"`
	SweepDate            time.Time `gorm:"uniqueIndex:idx_schedule_sweep_date;not null"`
	AttemptNumber        int       `gorm:"not null"`
	Outcome              string    `gorm:"size:20;not null;index"`
	ResponseCode         string    `gorm:"size:40"`
	Reason               string    `gorm:"size:255"`
	GatewayTransactionID *string   `gorm:"size:128;index"`
	NetworkTransactionID *string   `gorm:"size:128"`
	RequestPayload       datatypes.JSON
	ResponsePayload      datatypes.JSON
	NextRetryDate        *time.Time
	CreatedAt            time.Time
}

func (BillingAttemptModel) TableName() string {
	return "billing_attempts"
}
