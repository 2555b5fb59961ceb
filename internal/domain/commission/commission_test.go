package commission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpaid() *Commission {
	return Reconstruct(CommissionReconstructParams{
		ID:           1,
		SubscriberID: 42,
		AgentID:      3,
		Status:       PaymentStatusUnpaid,
	})
}

func TestCommission_MarkCollected(t *testing.T) {
	paidAt := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)

	t.Run("collects once", func(t *testing.T) {
		c := unpaid()
		require.NoError(t, c.MarkCollected("tx-100", paidAt))

		assert.True(t, c.IsPaid())
		require.NotNil(t, c.PaidDate())
		assert.Equal(t, paidAt, *c.PaidDate())
		assert.Equal(t, "tx-100", *c.CollectedTransactionID())
	})

	t.Run("same transaction replays as a no-op", func(t *testing.T) {
		c := unpaid()
		require.NoError(t, c.MarkCollected("tx-100", paidAt))
		version := c.Version()

		require.NoError(t, c.MarkCollected("tx-100", paidAt.Add(time.Hour)))
		assert.Equal(t, version, c.Version())
		assert.Equal(t, paidAt, *c.PaidDate(), "original collection time survives replay")
	})

	t.Run("a different transaction cannot collect twice", func(t *testing.T) {
		c := unpaid()
		require.NoError(t, c.MarkCollected("tx-100", paidAt))
		assert.Error(t, c.MarkCollected("tx-200", paidAt))
	})

	t.Run("empty transaction ID rejected", func(t *testing.T) {
		c := unpaid()
		assert.Error(t, c.MarkCollected("", paidAt))
	})
}
