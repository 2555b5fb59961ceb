package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/infrastructure/persistence/mappers"
	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/db"
)

type BillingScheduleRepository struct {
	db *gorm.DB
}

func NewBillingScheduleRepository(db *gorm.DB) *BillingScheduleRepository {
	return &BillingScheduleRepository{db: db}
}

var _ billing.ScheduleRepository = (*BillingScheduleRepository)(nil)

func (r *BillingScheduleRepository) Create(ctx context.Context, schedule *billing.BillingSchedule) error {
	model := mappers.BillingScheduleToModel(schedule)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create billing schedule: %w", err)
	}

	schedule.SetID(model.ID)

	return nil
}

func (r *BillingScheduleRepository) Update(ctx context.Context, schedule *billing.BillingSchedule) error {
	model := mappers.BillingScheduleToModel(schedule)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.BillingScheduleModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"token_id":             model.TokenID,
			"next_billing_date":    model.NextBillingDate,
			"consecutive_failures": model.ConsecutiveFailures,
			"status":               model.Status,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update billing schedule: %w", result.Error)
	}

	return nil
}

func (r *BillingScheduleRepository) GetByID(ctx context.Context, id uint) (*billing.BillingSchedule, error) {
	var model models.BillingScheduleModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get billing schedule: %w", err)
	}

	return mappers.BillingScheduleToDomain(&model)
}

func (r *BillingScheduleRepository) GetBySubscriberID(ctx context.Context, subscriberID uint) (*billing.BillingSchedule, error) {
	var model models.BillingScheduleModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("subscriber_id = ?", subscriberID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get billing schedule: %w", err)
	}

	return mappers.BillingScheduleToDomain(&model)
}

// ListDue selects active schedules whose next billing date has arrived.
// Ordered by ID so a replayed sweep walks the same sequence.
func (r *BillingScheduleRepository) ListDue(ctx context.Context, asOf time.Time) ([]*billing.BillingSchedule, error) {
	var rows []models.BillingScheduleModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_billing_date <= ?", vo.ScheduleStatusActive.String(), asOf).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	return r.toDomain(rows)
}

func (r *BillingScheduleRepository) ListFailing(ctx context.Context) ([]*billing.BillingSchedule, error) {
	var rows []models.BillingScheduleModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("consecutive_failures > 0 OR status = ?", vo.ScheduleStatusSuspended.String()).
		Order("consecutive_failures DESC, next_billing_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list failing schedules: %w", err)
	}

	return r.toDomain(rows)
}

func (r *BillingScheduleRepository) toDomain(rows []models.BillingScheduleModel) ([]*billing.BillingSchedule, error) {
	schedules := make([]*billing.BillingSchedule, 0, len(rows))
	for i := range rows {
		s, err := mappers.BillingScheduleToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}
