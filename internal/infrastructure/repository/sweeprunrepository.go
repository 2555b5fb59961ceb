package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"planpay/internal/domain/billing"
	"planpay/internal/infrastructure/persistence/mappers"
	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/db"
	apperrors "planpay/internal/shared/errors"
)

type SweepRunRepository struct {
	db *gorm.DB
}

func NewSweepRunRepository(db *gorm.DB) *SweepRunRepository {
	return &SweepRunRepository{db: db}
}

var _ billing.SweepRunRepository = (*SweepRunRepository)(nil)

// Acquire claims the date by inserting the run record. The (sweep_date, live)
// unique key admits one live row per date, so when two acquirers race the
// loser's insert hits the key and surfaces as ErrSweepAlreadyRunning — no
// read-then-write window. Runs past the stale timeout are released first:
// the per-schedule attempt log makes a takeover safe.
func (r *SweepRunRepository) Acquire(ctx context.Context, run *billing.SweepRun) error {
	tx := db.GetTxFromContext(ctx, r.db)

	return tx.Transaction(func(tx *gorm.DB) error {
		staleBefore := biztime.NowUTC().Add(-billing.StaleRunTimeout)

		err := tx.Model(&models.SweepRunModel{}).
			Where("sweep_date = ?", run.SweepDate()).
			Where("live = ?", true).
			Where("started_at <= ?", staleBefore).
			Update("live", nil).Error
		if err != nil {
			return fmt.Errorf("failed to release stale sweep runs: %w", err)
		}

		model := mappers.SweepRunToModel(run)
		if err := tx.Create(model).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return billing.ErrSweepAlreadyRunning
			}
			return fmt.Errorf("failed to create sweep run: %w", err)
		}

		run.SetID(model.ID)
		return nil
	})
}

func (r *SweepRunRepository) Update(ctx context.Context, run *billing.SweepRun) error {
	model := mappers.SweepRunToModel(run)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SweepRunModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"state":        model.State,
			"live":         model.Live,
			"processed":    model.Processed,
			"succeeded":    model.Succeeded,
			"failed":       model.Failed,
			"skipped":      model.Skipped,
			"abort_reason": model.AbortReason,
			"finished_at":  model.FinishedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update sweep run: %w", result.Error)
	}

	return nil
}

func (r *SweepRunRepository) GetLatestByDate(ctx context.Context, sweepDate time.Time) (*billing.SweepRun, error) {
	var model models.SweepRunModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("sweep_date = ?", sweepDate).
		Order("started_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sweep run: %w", err)
	}

	return mappers.SweepRunToDomain(&model), nil
}
