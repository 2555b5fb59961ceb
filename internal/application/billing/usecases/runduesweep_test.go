package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/shared/biztime"
)

type sweepFixture struct {
	uc           *RunDueSweepUseCase
	scheduleRepo *fakeScheduleRepo
	tokenRepo    *fakeTokenRepo
	attemptRepo  *fakeAttemptRepo
	sweepRepo    *fakeSweepRunRepo
	gateway      *paymentgateway.MockGateway
	alerter      *fakeAlerter
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		scheduleRepo: newFakeScheduleRepo(),
		tokenRepo:    newFakeTokenRepo(),
		attemptRepo:  newFakeAttemptRepo(),
		sweepRepo:    newFakeSweepRunRepo(),
		gateway:      paymentgateway.NewMockGateway(),
		alerter:      &fakeAlerter{},
	}

	charger := NewChargeScheduleUseCase(
		f.scheduleRepo, f.tokenRepo, f.attemptRepo, f.gateway,
		NewSyncCommissionUseCase(newFakeCommissionRepo(), testLogger()),
		testLogger(),
	)
	f.uc = NewRunDueSweepUseCase(f.sweepRepo, f.scheduleRepo, charger, f.alerter, 0, testLogger())

	return f
}

// addSubscriber creates a token and an active schedule due the day before asOf.
func (f *sweepFixture) addSubscriber(t *testing.T, subscriberID uint) *billing.BillingSchedule {
	t.Helper()

	token, err := billing.NewPaymentToken(subscriberID, "bric-sub", "VISA", "4242", 12, 2030, "ntx")
	require.NoError(t, err)
	require.NoError(t, f.tokenRepo.Create(context.Background(), token))

	schedule, err := billing.NewBillingSchedule(
		subscriberID, token.ID(),
		vo.NewMoney(4900, "USD"), vo.CadenceMonthly,
		fixtureAsOf.AddDate(0, 0, -1),
	)
	require.NoError(t, err)
	require.NoError(t, f.scheduleRepo.Create(context.Background(), schedule))
	return schedule
}

func TestRunDueSweep_ChargesEveryDueSchedule(t *testing.T) {
	f := newSweepFixture(t)
	f.addSubscriber(t, 1)
	f.addSubscriber(t, 2)
	f.addSubscriber(t, 3)

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Due)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.Aborted)
	assert.Len(t, f.gateway.SaleCalls, 3)
}

func TestRunDueSweep_NotDueSchedulesUntouched(t *testing.T) {
	f := newSweepFixture(t)
	f.addSubscriber(t, 1)

	// Due next month: the sweep must not pick it up.
	future := f.addSubscriber(t, 2)
	futureReplaced := billing.ReconstructBillingSchedule(billing.BillingScheduleReconstructParams{
		ID:              future.ID(),
		SubscriberID:    2,
		TokenID:         future.TokenID(),
		Amount:          vo.NewMoney(4900, "USD"),
		Cadence:         vo.CadenceMonthly,
		NextBillingDate: fixtureAsOf.AddDate(0, 1, 0),
		Status:          vo.ScheduleStatusActive,
	})
	require.NoError(t, f.scheduleRepo.Update(context.Background(), futureReplaced))

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Due)
	assert.Len(t, f.gateway.SaleCalls, 1)
}

func TestRunDueSweep_MixedOutcomes(t *testing.T) {
	f := newSweepFixture(t)
	f.addSubscriber(t, 1)
	f.addSubscriber(t, 2)
	f.gateway.QueueDecline("51", "INSUFF FUNDS")
	// Second sale falls through to the default approval.

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunDueSweep_SecondRunSameDayIsBlocked(t *testing.T) {
	f := newSweepFixture(t)
	f.addSubscriber(t, 1)

	_, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	// A completed run is terminal and does not block re-acquisition; the
	// per-schedule attempt log makes the replay a no-op.
	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, f.gateway.SaleCalls, 1, "replayed sweep must not re-charge")
}

func TestRunDueSweep_ConcurrentRunRefused(t *testing.T) {
	f := newSweepFixture(t)

	sweepDate := biztime.StartOfDayUTC(fixtureAsOf)
	inFlight, err := billing.NewSweepRun("swp_existing", sweepDate)
	require.NoError(t, err)
	require.NoError(t, f.sweepRepo.Acquire(context.Background(), inFlight))

	_, err = f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrSweepAlreadyRunning)
}

func TestRunDueSweep_AuthFailureAbortsAndAlerts(t *testing.T) {
	f := newSweepFixture(t)
	f.addSubscriber(t, 1)
	f.addSubscriber(t, 2)
	f.gateway.FailAuth(billing.ErrGatewayAuth)

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrGatewayAuth)
	require.NotNil(t, summary)
	assert.True(t, summary.Aborted)

	// Ops got exactly one page, and the run record says aborted.
	assert.Len(t, f.alerter.aborts, 1)

	run, getErr := f.sweepRepo.GetLatestByDate(context.Background(), summary.SweepDate)
	require.NoError(t, getErr)
	require.NotNil(t, run)
	assert.Equal(t, billing.SweepStateAborted, run.State())
}

func TestRunDueSweep_OneBadScheduleDoesNotStopTheRest(t *testing.T) {
	f := newSweepFixture(t)
	s1 := f.addSubscriber(t, 1)
	f.addSubscriber(t, 2)

	// Break the first schedule's token lookup by deactivating every token of
	// subscriber 1; the charge records a terminal decline and moves on.
	tokens, err := f.tokenRepo.ListBySubscriber(context.Background(), 1)
	require.NoError(t, err)
	for _, tok := range tokens {
		tok.Deactivate("card closed")
	}

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, s1.ConsecutiveFailures())
}

func TestRunDueSweep_EmptyDay(t *testing.T) {
	f := newSweepFixture(t)

	summary, err := f.uc.Execute(context.Background(), RunDueSweepCommand{AsOf: fixtureAsOf})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Due)
	assert.Equal(t, 0, summary.Processed)
	assert.False(t, summary.Aborted)
}
