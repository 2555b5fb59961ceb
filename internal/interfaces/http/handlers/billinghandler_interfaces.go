package handlers

import (
	"context"
	"io"

	"planpay/internal/application/billing/usecases"
)

type chargeScheduleExecutor interface {
	Execute(ctx context.Context, cmd usecases.ChargeScheduleCommand) (*usecases.ChargeResult, error)
}

type listFailedSchedulesExecutor interface {
	Execute(ctx context.Context) ([]usecases.FailedScheduleDTO, error)
}

type reactivateScheduleExecutor interface {
	Execute(ctx context.Context, cmd usecases.ReactivateScheduleCommand) error
}

type pauseScheduleExecutor interface {
	Execute(ctx context.Context, cmd usecases.PauseScheduleCommand) error
}

type resumeScheduleExecutor interface {
	Execute(ctx context.Context, cmd usecases.ResumeScheduleCommand) error
}

type exportBillingLogExecutor interface {
	Execute(ctx context.Context, cmd usecases.ExportBillingLogCommand, w io.Writer) error
}

type replaceTokenExecutor interface {
	Execute(ctx context.Context, cmd usecases.ReplaceTokenCommand) (*usecases.ReplaceTokenResult, error)
}
