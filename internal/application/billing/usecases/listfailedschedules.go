package usecases

import (
	"context"
	"fmt"
	"time"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/logger"
)

// FailedScheduleDTO is one row of the operator's failed-payment worklist.
type FailedScheduleDTO struct {
	ScheduleID          uint       `json:"schedule_id"`
	SubscriberID        uint       `json:"subscriber_id"`
	Status              string     `json:"status"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	AmountCents         int64      `json:"amount_cents"`
	NextBillingDate     time.Time  `json:"next_billing_date"`
	LastOutcome         string     `json:"last_outcome,omitempty"`
	LastResponseCode    string     `json:"last_response_code,omitempty"`
	LastReason          string     `json:"last_reason,omitempty"`
	LastAttemptAt       *time.Time `json:"last_attempt_at,omitempty"`
}

type ListFailedSchedulesUseCase struct {
	scheduleRepo billing.ScheduleRepository
	attemptRepo  billing.AttemptRepository
	logger       logger.Interface
}

func NewListFailedSchedulesUseCase(
	scheduleRepo billing.ScheduleRepository,
	attemptRepo billing.AttemptRepository,
	logger logger.Interface,
) *ListFailedSchedulesUseCase {
	return &ListFailedSchedulesUseCase{
		scheduleRepo: scheduleRepo,
		attemptRepo:  attemptRepo,
		logger:       logger,
	}
}

// Execute returns every schedule with at least one consecutive failure or in
// suspended state, decorated with its most recent attempt.
func (uc *ListFailedSchedulesUseCase) Execute(ctx context.Context) ([]FailedScheduleDTO, error) {
	schedules, err := uc.scheduleRepo.ListFailing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list failing schedules: %w", err)
	}

	result := make([]FailedScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		dto := FailedScheduleDTO{
			ScheduleID:          s.ID(),
			SubscriberID:        s.SubscriberID(),
			Status:              s.Status().String(),
			ConsecutiveFailures: s.ConsecutiveFailures(),
			AmountCents:         s.Amount().AmountInCents(),
			NextBillingDate:     s.NextBillingDate(),
		}

		attempts, err := uc.attemptRepo.ListBySchedule(ctx, s.ID())
		if err != nil {
			uc.logger.Errorw("failed to load attempts for schedule",
				"error", err,
				"schedule_id", s.ID(),
			)
		} else if len(attempts) > 0 {
			last := attempts[len(attempts)-1]
			createdAt := last.CreatedAt()
			dto.LastOutcome = last.Outcome().String()
			dto.LastResponseCode = last.ResponseCode()
			dto.LastReason = last.Reason()
			dto.LastAttemptAt = &createdAt
		}

		result = append(result, dto)
	}

	return result, nil
}
