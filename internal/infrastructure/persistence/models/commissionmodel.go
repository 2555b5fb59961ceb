package models

import (
	"time"
)

type CommissionModel struct {
	ID                     uint    `gorm:"primaryKey"`
	SubscriberID           uint    `gorm:"index;not null"`
	AgentID                uint    `gorm:"index;not null"`
	Status                 string  `gorm:"size:20;not null;index"`
	PaidDate               *time.Time
	CollectedTransactionID *string `gorm:"size:128;uniqueIndex"`
	Version                int     `gorm:"default:0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (CommissionModel) TableName() string {
	return "commissions"
}
