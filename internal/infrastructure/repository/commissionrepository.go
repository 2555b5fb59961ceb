package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"planpay/internal/domain/commission"
	"planpay/internal/infrastructure/persistence/mappers"
	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/db"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

var _ commission.Repository = (*CommissionRepository)(nil)

func (r *CommissionRepository) Update(ctx context.Context, c *commission.Commission) error {
	model := mappers.CommissionToModel(c)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CommissionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":                   model.Status,
			"paid_date":                model.PaidDate,
			"collected_transaction_id": model.CollectedTransactionID,
			"version":                  model.Version,
			"updated_at":               model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update commission: %w", result.Error)
	}

	return nil
}

func (r *CommissionRepository) GetLatestUnpaidBySubscriber(ctx context.Context, subscriberID uint) (*commission.Commission, error) {
	var model models.CommissionModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("subscriber_id = ? AND status = ?", subscriberID, string(commission.PaymentStatusUnpaid)).
		Order("created_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get unpaid commission: %w", err)
	}

	return mappers.CommissionToDomain(&model)
}

func (r *CommissionRepository) GetByCollectedTransactionID(ctx context.Context, transactionID string) (*commission.Commission, error) {
	var model models.CommissionModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("collected_transaction_id = ?", transactionID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get commission by transaction: %w", err)
	}

	return mappers.CommissionToDomain(&model)
}
