package usecases

import (
	"context"
	"fmt"
	"time"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

type ReactivateScheduleCommand struct {
	ScheduleID uint

	// AsOf anchors the new billing date. Zero means now.
	AsOf time.Time
}

// ReactivateScheduleUseCase puts a suspended schedule back into rotation
// after an operator has sorted out the payment problem. The failure streak
// resets and the next charge lands one cadence period out.
type ReactivateScheduleUseCase struct {
	scheduleRepo billing.ScheduleRepository
	logger       logger.Interface
}

func NewReactivateScheduleUseCase(scheduleRepo billing.ScheduleRepository, logger logger.Interface) *ReactivateScheduleUseCase {
	return &ReactivateScheduleUseCase{
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

func (uc *ReactivateScheduleUseCase) Execute(ctx context.Context, cmd ReactivateScheduleCommand) error {
	asOf := cmd.AsOf
	if asOf.IsZero() {
		asOf = biztime.NowUTC()
	}

	schedule, err := uc.scheduleRepo.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to get billing schedule: %w", err)
	}

	if err := schedule.Reactivate(asOf); err != nil {
		return fmt.Errorf("failed to reactivate schedule: %w", err)
	}

	if err := uc.scheduleRepo.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to update billing schedule: %w", err)
	}

	uc.logger.Infow("schedule reactivated",
		"schedule_id", schedule.ID(),
		"subscriber_id", schedule.SubscriberID(),
		"next_billing_date", schedule.NextBillingDate().Format(time.DateOnly),
	)

	return nil
}
