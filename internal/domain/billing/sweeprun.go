package billing

import (
	"fmt"
	"time"

	"planpay/internal/shared/biztime"
)

// SweepRunState tracks a daily run through its lifecycle.
type SweepRunState string

const (
	SweepStateSelecting  SweepRunState = "selecting"
	SweepStateProcessing SweepRunState = "processing"
	SweepStateDone       SweepRunState = "done"
	SweepStateAborted    SweepRunState = "aborted"
)

func (s SweepRunState) IsTerminal() bool {
	return s == SweepStateDone || s == SweepStateAborted
}

// StaleRunTimeout is how long a non-terminal run blocks a new acquisition.
// A run older than this is assumed crashed; the per-schedule attempt log makes
// resumption after takeover safe.
const StaleRunTimeout = 6 * time.Hour

// SweepRun is the persisted run-lock record for one daily sweep. Acquiring it
// atomically before processing prevents the sweep from overlapping itself,
// and because it lives next to the schedules it survives process restarts.
type SweepRun struct {
	id        uint
	sweepID   string
	sweepDate time.Time
	state     SweepRunState

	processed int
	succeeded int
	failed    int
	skipped   int

	abortReason *string

	startedAt  time.Time
	finishedAt *time.Time
}

func NewSweepRun(sweepID string, sweepDate time.Time) (*SweepRun, error) {
	if sweepID == "" {
		return nil, fmt.Errorf("sweep ID is required")
	}
	if sweepDate.IsZero() {
		return nil, fmt.Errorf("sweep date is required")
	}
	return &SweepRun{
		sweepID:   sweepID,
		sweepDate: sweepDate,
		state:     SweepStateSelecting,
		startedAt: biztime.NowUTC(),
	}, nil
}

// SweepRunReconstructParams carries persisted state back into the domain.
type SweepRunReconstructParams struct {
	ID          uint
	SweepID     string
	SweepDate   time.Time
	State       SweepRunState
	Processed   int
	Succeeded   int
	Failed      int
	Skipped     int
	AbortReason *string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

func ReconstructSweepRun(p SweepRunReconstructParams) *SweepRun {
	return &SweepRun{
		id:          p.ID,
		sweepID:     p.SweepID,
		sweepDate:   p.SweepDate,
		state:       p.State,
		processed:   p.Processed,
		succeeded:   p.Succeeded,
		failed:      p.Failed,
		skipped:     p.Skipped,
		abortReason: p.AbortReason,
		startedAt:   p.StartedAt,
		finishedAt:  p.FinishedAt,
	}
}

// BeginProcessing transitions selecting → processing.
func (r *SweepRun) BeginProcessing() error {
	if r.state != SweepStateSelecting {
		return fmt.Errorf("cannot begin processing from state %s", r.state)
	}
	r.state = SweepStateProcessing
	return nil
}

// RecordResult bumps the run counters for one schedule.
func (r *SweepRun) RecordResult(succeeded, skipped bool) {
	r.processed++
	switch {
	case skipped:
		r.skipped++
	case succeeded:
		r.succeeded++
	default:
		r.failed++
	}
}

// Complete transitions processing → done.
func (r *SweepRun) Complete() error {
	if r.state != SweepStateProcessing && r.state != SweepStateSelecting {
		return fmt.Errorf("cannot complete from state %s", r.state)
	}
	now := biztime.NowUTC()
	r.state = SweepStateDone
	r.finishedAt = &now
	return nil
}

// Abort terminates the run on a fatal gateway configuration failure.
// Remaining schedules are intentionally not touched.
func (r *SweepRun) Abort(reason string) {
	if r.state.IsTerminal() {
		return
	}
	now := biztime.NowUTC()
	r.state = SweepStateAborted
	r.abortReason = &reason
	r.finishedAt = &now
}

// IsStale reports whether a non-terminal run is old enough to be presumed crashed.
func (r *SweepRun) IsStale(asOf time.Time) bool {
	return !r.state.IsTerminal() && asOf.Sub(r.startedAt) > StaleRunTimeout
}

func (r *SweepRun) SetID(id uint) {
	if r.id == 0 {
		r.id = id
	}
}

func (r *SweepRun) ID() uint               { return r.id }
func (r *SweepRun) SweepID() string        { return r.sweepID }
func (r *SweepRun) SweepDate() time.Time   { return r.sweepDate }
func (r *SweepRun) State() SweepRunState   { return r.state }
func (r *SweepRun) Processed() int         { return r.processed }
func (r *SweepRun) Succeeded() int         { return r.succeeded }
func (r *SweepRun) Failed() int            { return r.failed }
func (r *SweepRun) Skipped() int           { return r.skipped }
func (r *SweepRun) AbortReason() *string   { return r.abortReason }
func (r *SweepRun) StartedAt() time.Time   { return r.startedAt }
func (r *SweepRun) FinishedAt() *time.Time { return r.finishedAt }
