package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/id"
	"planpay/internal/shared/logger"
)

// OpsAlerter notifies a human when the sweep hits a failure that retries
// cannot fix, such as rejected gateway credentials.
type OpsAlerter interface {
	SweepAborted(ctx context.Context, sweepID string, reason error)
}

// chargeExecutor is the single-schedule charge path the sweep drives.
type chargeExecutor interface {
	Execute(ctx context.Context, cmd ChargeScheduleCommand) (*ChargeResult, error)
}

type RunDueSweepCommand struct {
	// AsOf is the sweep's reference time. Zero means now. Backdating it
	// replays a missed sweep day.
	AsOf time.Time
}

type SweepSummary struct {
	SweepID   string
	SweepDate time.Time
	Due       int
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
	Aborted   bool
}

type RunDueSweepUseCase struct {
	sweepRunRepo billing.SweepRunRepository
	scheduleRepo billing.ScheduleRepository
	charger      chargeExecutor
	alerter      OpsAlerter
	gap          time.Duration
	logger       logger.Interface
}

func NewRunDueSweepUseCase(
	sweepRunRepo billing.SweepRunRepository,
	scheduleRepo billing.ScheduleRepository,
	charger chargeExecutor,
	alerter OpsAlerter,
	gap time.Duration,
	logger logger.Interface,
) *RunDueSweepUseCase {
	return &RunDueSweepUseCase{
		sweepRunRepo: sweepRunRepo,
		scheduleRepo: scheduleRepo,
		charger:      charger,
		alerter:      alerter,
		gap:          gap,
		logger:       logger,
	}
}

// Execute runs the daily sweep: acquire the per-date run lock, select due
// schedules, charge them one at a time with a pacing gap between gateway
// calls, and release the lock with final counters. A fatal gateway auth
// failure aborts the whole run and pages ops; everything else is recorded
// per schedule and the sweep carries on.
func (uc *RunDueSweepUseCase) Execute(ctx context.Context, cmd RunDueSweepCommand) (*SweepSummary, error) {
	asOf := cmd.AsOf
	if asOf.IsZero() {
		asOf = biztime.NowUTC()
	}
	sweepDate := biztime.StartOfDayUTC(asOf)

	sweepID, err := id.GenerateWithPrefix(id.PrefixSweep, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sweep ID: %w", err)
	}

	run, err := billing.NewSweepRun(sweepID, sweepDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep run: %w", err)
	}
	if err := uc.sweepRunRepo.Acquire(ctx, run); err != nil {
		if errors.Is(err, billing.ErrSweepAlreadyRunning) {
			uc.logger.Warnw("sweep already running, refusing to start another",
				"sweep_date", sweepDate.Format(time.DateOnly),
			)
		}
		return nil, err
	}

	due, err := uc.scheduleRepo.ListDue(ctx, asOf)
	if err != nil {
		uc.abort(ctx, run, fmt.Errorf("failed to list due schedules: %w", err))
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	if err := run.BeginProcessing(); err != nil {
		return nil, err
	}
	if err := uc.sweepRunRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist sweep run: %w", err)
	}

	uc.logger.Infow("sweep started",
		"sweep_id", sweepID,
		"sweep_date", sweepDate.Format(time.DateOnly),
		"due_schedules", len(due),
	)

	for i, schedule := range due {
		result, err := uc.charger.Execute(ctx, ChargeScheduleCommand{
			ScheduleID: schedule.ID(),
			AsOf:       asOf,
		})
		if err != nil {
			if errors.Is(err, billing.ErrGatewayAuth) {
				uc.abort(ctx, run, err)
				if uc.alerter != nil {
					uc.alerter.SweepAborted(ctx, sweepID, err)
				}
				return uc.summary(run, len(due), true), err
			}
			// One broken schedule must not starve the rest.
			uc.logger.Errorw("charge failed, continuing sweep",
				"error", err,
				"schedule_id", schedule.ID(),
			)
			run.RecordResult(false, false)
		} else {
			run.RecordResult(result.Outcome.IsSuccess(), result.Skipped)
		}

		if err := uc.sweepRunRepo.Update(ctx, run); err != nil {
			uc.logger.Errorw("failed to checkpoint sweep run", "error", err, "sweep_id", sweepID)
		}

		// Pace the gateway only after calls that actually reached it.
		if i < len(due)-1 && err == nil && result.CalledGateway && uc.gap > 0 {
			select {
			case <-ctx.Done():
				uc.abort(ctx, run, ctx.Err())
				return uc.summary(run, len(due), true), ctx.Err()
			case <-time.After(uc.gap):
			}
		}
	}

	if err := run.Complete(); err != nil {
		return nil, err
	}
	if err := uc.sweepRunRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to finalize sweep run: %w", err)
	}

	summary := uc.summary(run, len(due), false)
	uc.logger.Infow("sweep completed",
		"sweep_id", sweepID,
		"due", summary.Due,
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

func (uc *RunDueSweepUseCase) abort(ctx context.Context, run *billing.SweepRun, reason error) {
	run.Abort(reason.Error())
	if err := uc.sweepRunRepo.Update(ctx, run); err != nil {
		uc.logger.Errorw("failed to persist aborted sweep run",
			"error", err,
			"sweep_id", run.SweepID(),
		)
	}
	uc.logger.Errorw("sweep aborted",
		"sweep_id", run.SweepID(),
		"reason", reason,
	)
}

func (uc *RunDueSweepUseCase) summary(run *billing.SweepRun, due int, aborted bool) *SweepSummary {
	return &SweepSummary{
		SweepID:   run.SweepID(),
		SweepDate: run.SweepDate(),
		Due:       due,
		Processed: run.Processed(),
		Succeeded: run.Succeeded(),
		Failed:    run.Failed(),
		Skipped:   run.Skipped(),
		Aborted:   aborted,
	}
}
