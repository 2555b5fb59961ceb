package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "planpay/internal/domain/billing/valueobjects"
)

func TestNewBillingAttempt(t *testing.T) {
	date := time.Date(2026, 9, 1, 4, 0, 0, 0, time.UTC)
	txID := "tx-100"

	base := NewBillingAttemptParams{
		ScheduleID:    1,
		SubscriberID:  42,
		SweepDate:     date,
		AttemptNumber: 1,
		Outcome:       vo.OutcomeDeclined,
		ResponseCode:  "51",
		Reason:        "INSUFF FUNDS",
	}

	t.Run("valid decline", func(t *testing.T) {
		a, err := NewBillingAttempt(base)
		require.NoError(t, err)
		assert.Equal(t, vo.OutcomeDeclined, a.Outcome())
		assert.Nil(t, a.GatewayTransactionID())
		assert.False(t, a.CreatedAt().IsZero())
	})

	t.Run("success requires a transaction ID", func(t *testing.T) {
		p := base
		p.Outcome = vo.OutcomeSuccess
		_, err := NewBillingAttempt(p)
		assert.Error(t, err)

		p.GatewayTransactionID = &txID
		a, err := NewBillingAttempt(p)
		require.NoError(t, err)
		assert.Equal(t, txID, *a.GatewayTransactionID())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		p := base
		p.ScheduleID = 0
		_, err := NewBillingAttempt(p)
		assert.Error(t, err)

		p = base
		p.SweepDate = time.Time{}
		_, err = NewBillingAttempt(p)
		assert.Error(t, err)

		p = base
		p.AttemptNumber = 0
		_, err = NewBillingAttempt(p)
		assert.Error(t, err)

		p = base
		p.Outcome = vo.AttemptOutcome("weird")
		_, err = NewBillingAttempt(p)
		assert.Error(t, err)
	})
}
