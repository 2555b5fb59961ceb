package models

import (
	"time"
)

type BillingScheduleModel struct {
	ID                  uint      `gorm:"primaryKey"`
	SubscriberID        uint      `gorm:"uniqueIndex;not null"`
	TokenID             uint      `gorm:"index;not null"`
	AmountCents         int64     `gorm:"not null"`
	Currency            string    `gorm:"size:10;not null;default:'USD'"`
	Cadence             string    `gorm:"size:20;not null"`
	NextBillingDate     time.Time `gorm:"index:idx_status_next_date;not null"`
	ConsecutiveFailures int       `gorm:"not null;default:0"`
	Status              string    `gorm:"size:20;not null;index:idx_status_next_date"`
	Version             int       `gorm:"default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (BillingScheduleModel) TableName() string {
	return "billing_schedules"
}
