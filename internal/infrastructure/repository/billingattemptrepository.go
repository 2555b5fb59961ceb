package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planpay/internal/domain/billing"
	"planpay/internal/infrastructure/persistence/mappers"
	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/db"
)

// BillingAttemptRepository is insert-only. There is deliberately no Update or
// Delete: the attempt log is the audit trail.
type BillingAttemptRepository struct {
	db *gorm.DB
}

func NewBillingAttemptRepository(db *gorm.DB) *BillingAttemptRepository {
	return &BillingAttemptRepository{db: db}
}

var _ billing.AttemptRepository = (*BillingAttemptRepository)(nil)

func (r *BillingAttemptRepository) Append(ctx context.Context, attempt *billing.BillingAttempt) error {
	model := mappers.BillingAttemptToModel(attempt)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append billing attempt: %w", err)
	}

	attempt.SetID(model.ID)

	return nil
}

func (r *BillingAttemptRepository) ExistsForSweepDate(ctx context.Context, scheduleID uint, sweepDate time.Time) (bool, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.BillingAttemptModel{}).
		Where("schedule_id = ? AND sweep_date = ?", scheduleID, sweepDate).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attempt log: %w", err)
	}

	return count > 0, nil
}

func (r *BillingAttemptRepository) HasAnyAttempt(ctx context.Context, scheduleID uint) (bool, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.BillingAttemptModel{}).
		Where("schedule_id = ?", scheduleID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attempt history: %w", err)
	}

	return count > 0, nil
}

func (r *BillingAttemptRepository) ListBySchedule(ctx context.Context, scheduleID uint) ([]*billing.BillingAttempt, error) {
	var rows []models.BillingAttemptModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list billing attempts: %w", err)
	}

	return r.toDomain(rows)
}

func (r *BillingAttemptRepository) ListAll(ctx context.Context) ([]*billing.BillingAttempt, error) {
	var rows []models.BillingAttemptModel

	err := db.GetTxFromContext(ctx, r.db).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list billing attempts: %w", err)
	}

	return r.toDomain(rows)
}

func (r *BillingAttemptRepository) toDomain(rows []models.BillingAttemptModel) ([]*billing.BillingAttempt, error) {
	attempts := make([]*billing.BillingAttempt, 0, len(rows))
	for i := range rows {
		a, err := mappers.BillingAttemptToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
