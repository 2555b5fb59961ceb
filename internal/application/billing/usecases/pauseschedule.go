package usecases

import (
	"context"
	"fmt"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/logger"
)

type PauseScheduleCommand struct {
	ScheduleID uint
}

type PauseScheduleUseCase struct {
	scheduleRepo billing.ScheduleRepository
	logger       logger.Interface
}

func NewPauseScheduleUseCase(scheduleRepo billing.ScheduleRepository, logger logger.Interface) *PauseScheduleUseCase {
	return &PauseScheduleUseCase{scheduleRepo: scheduleRepo, logger: logger}
}

func (uc *PauseScheduleUseCase) Execute(ctx context.Context, cmd PauseScheduleCommand) error {
	schedule, err := uc.scheduleRepo.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to get billing schedule: %w", err)
	}

	if err := schedule.Pause(); err != nil {
		return fmt.Errorf("failed to pause schedule: %w", err)
	}

	if err := uc.scheduleRepo.Update(ctx, schedule); err != nil {
		return fmt.Errorf("failed to update billing schedule: %w", err)
	}

	uc.logger.Infow("schedule paused", "schedule_id", schedule.ID())
	return nil
}
