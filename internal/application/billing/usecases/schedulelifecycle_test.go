package usecases

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
)

func suspendedFixture(t *testing.T) *chargeFixture {
	t.Helper()
	f := newChargeFixture(t)
	asOf := fixtureAsOf
	for i := 0; i < 3; i++ {
		f.gateway.QueueDecline("51", "INSUFF FUNDS")
		_, err := f.uc.Execute(context.Background(), ChargeScheduleCommand{ScheduleID: f.schedule.ID(), AsOf: asOf})
		require.NoError(t, err)
		asOf = f.schedule.NextBillingDate().Add(time.Hour)
	}
	require.Equal(t, vo.ScheduleStatusSuspended, f.schedule.Status())
	return f
}

func TestReactivateSchedule(t *testing.T) {
	t.Run("resets the streak and schedules one period out", func(t *testing.T) {
		f := suspendedFixture(t)
		asOf := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

		uc := NewReactivateScheduleUseCase(f.scheduleRepo, testLogger())
		require.NoError(t, uc.Execute(context.Background(), ReactivateScheduleCommand{
			ScheduleID: f.schedule.ID(),
			AsOf:       asOf,
		}))

		assert.Equal(t, vo.ScheduleStatusActive, f.schedule.Status())
		assert.Equal(t, 0, f.schedule.ConsecutiveFailures())
		assert.Equal(t, asOf.AddDate(0, 1, 0), f.schedule.NextBillingDate())
	})

	t.Run("rejects a schedule that is not suspended", func(t *testing.T) {
		f := newChargeFixture(t)
		uc := NewReactivateScheduleUseCase(f.scheduleRepo, testLogger())
		err := uc.Execute(context.Background(), ReactivateScheduleCommand{ScheduleID: f.schedule.ID()})
		assert.Error(t, err)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		uc := NewReactivateScheduleUseCase(newFakeScheduleRepo(), testLogger())
		err := uc.Execute(context.Background(), ReactivateScheduleCommand{ScheduleID: 999})
		assert.ErrorIs(t, err, billing.ErrScheduleNotFound)
	})
}

func TestPauseAndResumeSchedule(t *testing.T) {
	f := newChargeFixture(t)

	pause := NewPauseScheduleUseCase(f.scheduleRepo, testLogger())
	require.NoError(t, pause.Execute(context.Background(), PauseScheduleCommand{ScheduleID: f.schedule.ID()}))
	assert.Equal(t, vo.ScheduleStatusPaused, f.schedule.Status())

	// Paused schedules never enter the sweep selection.
	due, err := f.scheduleRepo.ListDue(context.Background(), fixtureAsOf)
	require.NoError(t, err)
	assert.Empty(t, due)

	resume := NewResumeScheduleUseCase(f.scheduleRepo, testLogger())
	require.NoError(t, resume.Execute(context.Background(), ResumeScheduleCommand{ScheduleID: f.schedule.ID()}))
	assert.Equal(t, vo.ScheduleStatusActive, f.schedule.Status())

	t.Run("resume requires paused state", func(t *testing.T) {
		err := resume.Execute(context.Background(), ResumeScheduleCommand{ScheduleID: f.schedule.ID()})
		assert.Error(t, err)
	})

	t.Run("pause rejects suspended schedules", func(t *testing.T) {
		sf := suspendedFixture(t)
		pauseSuspended := NewPauseScheduleUseCase(sf.scheduleRepo, testLogger())
		err := pauseSuspended.Execute(context.Background(), PauseScheduleCommand{ScheduleID: sf.schedule.ID()})
		assert.Error(t, err)
	})
}

func TestExportBillingLog(t *testing.T) {
	f := newChargeFixture(t)
	f.gateway.QueueApproval()
	f.charge(t)

	uc := NewExportBillingLogUseCase(f.attemptRepo, testLogger())

	t.Run("exports attempts for one schedule", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, uc.Execute(context.Background(), ExportBillingLogCommand{ScheduleID: f.schedule.ID()}, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "attempt_id,schedule_id,subscriber_id,sweep_date"))
		assert.Contains(t, lines[1], "success")
		assert.Contains(t, lines[1], "mock-tx-")
	})

	t.Run("exports everything when no schedule given", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, uc.Execute(context.Background(), ExportBillingLogCommand{}, &buf))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, 2)
	})

	t.Run("empty log still writes the header", func(t *testing.T) {
		empty := NewExportBillingLogUseCase(newFakeAttemptRepo(), testLogger())
		var buf bytes.Buffer
		require.NoError(t, empty.Execute(context.Background(), ExportBillingLogCommand{}, &buf))
		assert.Equal(t, 1, strings.Count(strings.TrimSpace(buf.String()), "\n")+1)
	})
}

func TestListFailedSchedules(t *testing.T) {
	f := newChargeFixture(t)
	f.gateway.QueueDecline("51", "INSUFF FUNDS")
	f.charge(t)

	uc := NewListFailedSchedulesUseCase(f.scheduleRepo, f.attemptRepo, testLogger())
	rows, err := uc.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, f.schedule.ID(), row.ScheduleID)
	assert.Equal(t, 1, row.ConsecutiveFailures)
	assert.Equal(t, "declined", row.LastOutcome)
	assert.Equal(t, "51", row.LastResponseCode)
	require.NotNil(t, row.LastAttemptAt)
}

func TestReplaceToken(t *testing.T) {
	f := newChargeFixture(t)

	runner := &fakeTxRunner{}
	uc := NewReplaceTokenUseCase(f.tokenRepo, f.scheduleRepo, f.gateway, runner, testLogger())
	result, err := uc.Execute(context.Background(), ReplaceTokenCommand{
		SubscriberID: fixtureSubscriberID,
		CardNumber:   "5555555555554444",
		ExpMonth:     6,
		ExpYear:      2031,
		CVV:          "321",
		ZIP:          "30301",
	})
	require.NoError(t, err)

	assert.Equal(t, "4444", result.LastFour)
	assert.NotZero(t, result.TokenID)

	// The save, promotion, and schedule repoint all ran under one transaction.
	assert.Equal(t, 1, runner.calls)

	// The new token is the only primary and the schedule points at it.
	primary, err := f.tokenRepo.GetActivePrimaryBySubscriber(context.Background(), fixtureSubscriberID)
	require.NoError(t, err)
	assert.Equal(t, result.TokenID, primary.ID())
	assert.False(t, f.token.IsPrimary())
	assert.Equal(t, result.TokenID, f.schedule.TokenID())

	// Charges now use the replacement card.
	f.gateway.QueueApproval()
	f.charge(t)
	require.NotEmpty(t, f.gateway.SaleCalls)
	assert.Equal(t, primary.TokenRef(), f.gateway.SaleCalls[len(f.gateway.SaleCalls)-1].TokenRef)

	t.Run("promotion failure surfaces and the schedule keeps its card", func(t *testing.T) {
		f := newChargeFixture(t)
		f.tokenRepo.makePrimaryErr = errors.New("lock wait timeout")
		originalTokenID := f.schedule.TokenID()

		runner := &fakeTxRunner{}
		uc := NewReplaceTokenUseCase(f.tokenRepo, f.scheduleRepo, f.gateway, runner, testLogger())
		_, err := uc.Execute(context.Background(), ReplaceTokenCommand{
			SubscriberID: fixtureSubscriberID,
			CardNumber:   "5555555555554444",
			ExpMonth:     6,
			ExpYear:      2031,
			CVV:          "321",
			ZIP:          "30301",
		})

		require.Error(t, err)
		assert.Equal(t, 1, runner.calls)
		assert.Equal(t, originalTokenID, f.schedule.TokenID())
	})
}
