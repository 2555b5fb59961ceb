// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"planpay/internal/application/billing/usecases"
	"planpay/internal/domain/billing"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

// SweepRunner is the daily due-subscriber sweep the scheduler drives.
type SweepRunner interface {
	Execute(ctx context.Context, cmd usecases.RunDueSweepCommand) (*usecases.SweepSummary, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2.
// Cron expressions run in the business timezone so "06:00" means 06:00 on the
// billing calendar, not wherever the pod happens to be.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingSweepJob schedules the daily billing sweep at the configured
// "HH:MM" wall-clock time. Singleton mode keeps a slow sweep from overlapping
// the next trigger; the persisted run lock covers everything else.
func (m *SchedulerManager) RegisterBillingSweepJob(runner SweepRunner, sweepTime string) error {
	hour, minute, err := parseSweepTime(sweepTime)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.CronJob(fmt.Sprintf("%d %d * * *", minute, hour), false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
			defer cancel()
			m.runBillingSweep(ctx, runner)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "daily-sweep"),
		gocron.WithName("billing-daily-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered billing sweep job",
		"sweep_time", sweepTime,
		"timezone", biztime.Location().String(),
	)
	return nil
}

func (m *SchedulerManager) runBillingSweep(ctx context.Context, runner SweepRunner) {
	m.logger.Debugw("billing sweep task started")

	startTime := biztime.NowUTC()
	summary, err := runner.Execute(ctx, usecases.RunDueSweepCommand{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, billing.ErrSweepAlreadyRunning) {
			m.logger.Warnw("billing sweep skipped, another run holds the date")
			return
		}
		m.logger.Errorw("billing sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("billing sweep completed",
		"sweep_id", summary.SweepID,
		"due", summary.Due,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", time.Since(startTime),
	)
}

// parseSweepTime validates an "HH:MM" clock time.
func parseSweepTime(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid sweep time %q, expected HH:MM", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid sweep hour in %q", s)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid sweep minute in %q", s)
	}

	return hour, minute, nil
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
