package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "planpay/internal/domain/billing/valueobjects"
)

var scheduleDue = time.Date(2026, 9, 1, 4, 0, 0, 0, time.UTC)

func activeSchedule(t *testing.T) *BillingSchedule {
	t.Helper()
	s, err := NewBillingSchedule(42, 7, vo.NewMoney(4900, "USD"), vo.CadenceMonthly, scheduleDue)
	require.NoError(t, err)
	s.SetID(1)
	return s
}

func TestNewBillingSchedule(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := activeSchedule(t)
		assert.Equal(t, vo.ScheduleStatusActive, s.Status())
		assert.Equal(t, 0, s.ConsecutiveFailures())
		assert.Equal(t, scheduleDue, s.NextBillingDate())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewBillingSchedule(0, 7, vo.NewMoney(4900, "USD"), vo.CadenceMonthly, scheduleDue)
		assert.Error(t, err)

		_, err = NewBillingSchedule(42, 0, vo.NewMoney(4900, "USD"), vo.CadenceMonthly, scheduleDue)
		assert.Error(t, err)

		_, err = NewBillingSchedule(42, 7, vo.NewMoney(0, "USD"), vo.CadenceMonthly, scheduleDue)
		assert.Error(t, err)

		_, err = NewBillingSchedule(42, 7, vo.NewMoney(4900, "USD"), vo.Cadence("weekly"), scheduleDue)
		assert.Error(t, err)

		_, err = NewBillingSchedule(42, 7, vo.NewMoney(4900, "USD"), vo.CadenceMonthly, time.Time{})
		assert.Error(t, err)
	})
}

func TestBillingSchedule_ApplyDecision(t *testing.T) {
	t.Run("suspend flips status", func(t *testing.T) {
		s := activeSchedule(t)
		s.ApplyDecision(RetryDecision{Action: ActionSuspend, NextFailures: 3, NextBillingDate: scheduleDue.AddDate(0, 0, 14)})

		assert.Equal(t, vo.ScheduleStatusSuspended, s.Status())
		assert.Equal(t, 3, s.ConsecutiveFailures())
	})

	t.Run("retry keeps the schedule active", func(t *testing.T) {
		s := activeSchedule(t)
		s.ApplyDecision(RetryDecision{Action: ActionRetryLater, NextFailures: 1, NextBillingDate: scheduleDue.AddDate(0, 0, 3)})

		assert.Equal(t, vo.ScheduleStatusActive, s.Status())
		assert.Equal(t, 1, s.ConsecutiveFailures())
		assert.Equal(t, scheduleDue.AddDate(0, 0, 3), s.NextBillingDate())
	})

	t.Run("clear resets the streak", func(t *testing.T) {
		s := activeSchedule(t)
		s.ApplyDecision(RetryDecision{Action: ActionRetryLater, NextFailures: 2, NextBillingDate: scheduleDue})
		s.ApplyDecision(RetryDecision{Action: ActionClear, NextFailures: 0, NextBillingDate: scheduleDue.AddDate(0, 1, 0)})

		assert.Equal(t, 0, s.ConsecutiveFailures())
	})
}

func TestBillingSchedule_Lifecycle(t *testing.T) {
	t.Run("pause and resume", func(t *testing.T) {
		s := activeSchedule(t)
		require.NoError(t, s.Pause())
		assert.Equal(t, vo.ScheduleStatusPaused, s.Status())

		// Pausing twice is a no-op.
		require.NoError(t, s.Pause())

		require.NoError(t, s.Resume())
		assert.Equal(t, vo.ScheduleStatusActive, s.Status())
	})

	t.Run("cannot resume an active schedule", func(t *testing.T) {
		s := activeSchedule(t)
		assert.Error(t, s.Resume())
	})

	t.Run("cannot pause a suspended schedule", func(t *testing.T) {
		s := activeSchedule(t)
		s.ApplyDecision(RetryDecision{Action: ActionSuspend, NextFailures: 3, NextBillingDate: scheduleDue})
		assert.Error(t, s.Pause())
	})

	t.Run("reactivate lifts a suspension", func(t *testing.T) {
		s := activeSchedule(t)
		s.ApplyDecision(RetryDecision{Action: ActionSuspend, NextFailures: 3, NextBillingDate: scheduleDue})

		asOf := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)
		require.NoError(t, s.Reactivate(asOf))

		assert.Equal(t, vo.ScheduleStatusActive, s.Status())
		assert.Equal(t, 0, s.ConsecutiveFailures())
		assert.Equal(t, asOf.AddDate(0, 1, 0), s.NextBillingDate())
	})

	t.Run("reactivate requires suspension", func(t *testing.T) {
		s := activeSchedule(t)
		assert.Error(t, s.Reactivate(scheduleDue))
	})
}

func TestBillingSchedule_IsDue(t *testing.T) {
	s := activeSchedule(t)

	assert.False(t, s.IsDue(scheduleDue.Add(-time.Hour)))
	assert.True(t, s.IsDue(scheduleDue))
	assert.True(t, s.IsDue(scheduleDue.Add(time.Hour)))

	require.NoError(t, s.Pause())
	assert.False(t, s.IsDue(scheduleDue.Add(time.Hour)), "paused schedules are never due")
}

func TestBillingSchedule_ReplaceToken(t *testing.T) {
	s := activeSchedule(t)
	require.NoError(t, s.ReplaceToken(9))
	assert.Equal(t, uint(9), s.TokenID())

	assert.Error(t, s.ReplaceToken(0))
}
