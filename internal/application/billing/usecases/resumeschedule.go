package usecases

import (
	"context"
	"fmt"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/logger"
)

type ResumeScheduleCommand struct {
	ScheduleID uint
}

type ResumeScheduleUseCase struct {
	scheduleRepo billing.ScheduleRepository
	logger       logger.Interface
}

func NewResumeScheduleUseCase(scheduleRepo billing.ScheduleRepository, logger logger.Interface) *ResumeScheduleUseCase {
	return &ResumeScheduleUseCase{scheduleRepo: scheduleRepo, logger: logger}
}

func (uc *ResumeScheduleUseCase) Execute(ctx context.Context, cmd ResumeScheduleCommand) error {
	schedule, err := uc.scheduleRepo.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to get billing schedule: %w", err)
	}

	if err := schedule.Resume(); err != nil {
		return fmt.Errorf("failed to resume schedule: %w", err)
	}

	if err := uc.scheduleRepo.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to update billing schedule: %w", err)
	}

	uc.logger.Infow("schedule resumed", "schedule_id", schedule.ID())
	return nil
}
