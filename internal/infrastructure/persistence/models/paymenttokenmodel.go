package models

import (
	"time"
)

type PaymentTokenModel struct {
	ID                   uint    `gorm:"primaryKey"`
	SubscriberID         uint    `gorm:"not null;index;index:idx_subscriber_primary"`
	TokenRef             string  `gorm:"uniqueIndex;size:128;not null"`
	CardBrand            string  `gorm:"size:20"`
	LastFour             string  `gorm:"size:4"`
	ExpMonth             int     `gorm:"not null"`
	ExpYear              int     `gorm:"not null"`
	IsPrimary            bool    `gorm:"not null;default:false;index:idx_subscriber_primary"`
	IsActive             bool    `gorm:"not null;default:true;index:idx_subscriber_primary"`
	NetworkTransactionID string  `gorm:"size:128"`
	DeactivatedReason    *string `gorm:"size:255"`
	Version              int     `gorm:"default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (PaymentTokenModel) TableName() string {
	return "payment_tokens"
}
