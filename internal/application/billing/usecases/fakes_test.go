package usecases

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"planpay/internal/domain/billing"
	"planpay/internal/domain/commission"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeScheduleRepo is an in-memory billing.ScheduleRepository.
type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uint]*billing.BillingSchedule
	nextID    uint

	updateErr error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uint]*billing.BillingSchedule), nextID: 1}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *billing.BillingSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.SetID(r.nextID)
	r.nextID++
	r.schedules[s.ID()] = s
	return nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, s *billing.BillingSchedule) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ID()] = s
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id uint) (*billing.BillingSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, billing.ErrScheduleNotFound
	}
	return s, nil
}

func (r *fakeScheduleRepo) GetBySubscriberID(ctx context.Context, subscriberID uint) (*billing.BillingSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.SubscriberID() == subscriberID {
			return s, nil
		}
	}
	return nil, billing.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) ListDue(ctx context.Context, asOf time.Time) ([]*billing.BillingSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*billing.BillingSchedule
	for _, s := range r.schedules {
		if s.IsDue(asOf) {
			due = append(due, s)
		}
	}
	return due, nil
}

func (r *fakeScheduleRepo) ListFailing(ctx context.Context) ([]*billing.BillingSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failing []*billing.BillingSchedule
	for _, s := range r.schedules {
		if s.ConsecutiveFailures() > 0 || s.Status().IsSuspended() {
			failing = append(failing, s)
		}
	}
	return failing, nil
}

// fakeTokenRepo is an in-memory billing.TokenRepository.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[uint]*billing.PaymentToken
	nextID uint

	makePrimaryErr error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uint]*billing.PaymentToken), nextID: 1}
}

func (r *fakeTokenRepo) Create(ctx context.Context, t *billing.PaymentToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.SetID(r.nextID)
	r.nextID++
	r.tokens[t.ID()] = t
	return nil
}

func (r *fakeTokenRepo) Update(ctx context.Context, t *billing.PaymentToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.ID()] = t
	return nil
}

func (r *fakeTokenRepo) GetByID(ctx context.Context, id uint) (*billing.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, billing.ErrTokenNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) GetActivePrimaryBySubscriber(ctx context.Context, subscriberID uint) (*billing.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.SubscriberID() == subscriberID && t.IsActive() && t.IsPrimary() {
			return t, nil
		}
	}
	return nil, billing.ErrTokenNotFound
}

func (r *fakeTokenRepo) ListBySubscriber(ctx context.Context, subscriberID uint) ([]*billing.PaymentToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*billing.PaymentToken
	for _, t := range r.tokens {
		if t.SubscriberID() == subscriberID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) MakePrimary(ctx context.Context, token *billing.PaymentToken) error {
	if r.makePrimaryErr != nil {
		return r.makePrimaryErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.SubscriberID() == token.SubscriberID() && t.ID() != token.ID() {
			t.Demote()
		}
	}
	return token.MarkPrimary()
}

// fakeAttemptRepo is an in-memory billing.AttemptRepository.
type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*billing.BillingAttempt
	nextID   uint
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{nextID: 1}
}

func (r *fakeAttemptRepo) Append(ctx context.Context, a *billing.BillingAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.SetID(r.nextID)
	r.nextID++
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *fakeAttemptRepo) ExistsForSweepDate(ctx context.Context, scheduleID uint, sweepDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.ScheduleID() == scheduleID && a.SweepDate().Equal(sweepDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttemptRepo) HasAnyAttempt(ctx context.Context, scheduleID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.ScheduleID() == scheduleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttemptRepo) ListBySchedule(ctx context.Context, scheduleID uint) ([]*billing.BillingAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*billing.BillingAttempt
	for _, a := range r.attempts {
		if a.ScheduleID() == scheduleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListAll(ctx context.Context) ([]*billing.BillingAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*billing.BillingAttempt(nil), r.attempts...), nil
}

// fakeSweepRunRepo is an in-memory billing.SweepRunRepository with the same
// acquisition rule as the real one: a non-terminal, non-stale run for the
// date blocks new runs.
type fakeSweepRunRepo struct {
	mu     sync.Mutex
	runs   []*billing.SweepRun
	nextID uint
}

func newFakeSweepRunRepo() *fakeSweepRunRepo {
	return &fakeSweepRunRepo{nextID: 1}
}

func (r *fakeSweepRunRepo) Acquire(ctx context.Context, run *billing.SweepRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := biztime.NowUTC()
	for _, existing := range r.runs {
		if existing.SweepDate().Equal(run.SweepDate()) &&
			!existing.State().IsTerminal() && !existing.IsStale(now) {
			return billing.ErrSweepAlreadyRunning
		}
	}
	run.SetID(r.nextID)
	r.nextID++
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeSweepRunRepo) Update(ctx context.Context, run *billing.SweepRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.runs {
		if existing.ID() == run.ID() {
			r.runs[i] = run
			return nil
		}
	}
	return billing.ErrSweepAlreadyRunning
}

func (r *fakeSweepRunRepo) GetLatestByDate(ctx context.Context, sweepDate time.Time) (*billing.SweepRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.runs) - 1; i >= 0; i-- {
		if r.runs[i].SweepDate().Equal(sweepDate) {
			return r.runs[i], nil
		}
	}
	return nil, nil
}

// fakeCommissionRepo is an in-memory commission.Repository.
type fakeCommissionRepo struct {
	mu          sync.Mutex
	commissions map[uint]*commission.Commission
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{commissions: make(map[uint]*commission.Commission)}
}

func (r *fakeCommissionRepo) put(c *commission.Commission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commissions[c.ID()] = c
}

func (r *fakeCommissionRepo) Update(ctx context.Context, c *commission.Commission) error {
	r.put(c)
	return nil
}

func (r *fakeCommissionRepo) GetLatestUnpaidBySubscriber(ctx context.Context, subscriberID uint) (*commission.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *commission.Commission
	for _, c := range r.commissions {
		if c.SubscriberID() == subscriberID && !c.IsPaid() {
			if latest == nil || c.ID() > latest.ID() {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, commission.ErrNotFound
	}
	return latest, nil
}

func (r *fakeCommissionRepo) GetByCollectedTransactionID(ctx context.Context, transactionID string) (*commission.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.commissions {
		if c.CollectedTransactionID() != nil && *c.CollectedTransactionID() == transactionID {
			return c, nil
		}
	}
	return nil, commission.ErrNotFound
}

// fakeTxRunner satisfies transactionRunner without a database; it counts
// invocations so tests can assert a mutation ran under the transaction.
type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

// fakeAlerter records ops notifications.
type fakeAlerter struct {
	mu     sync.Mutex
	aborts []string
}

func (a *fakeAlerter) SweepAborted(ctx context.Context, sweepID string, reason error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aborts = append(a.aborts, sweepID)
}
