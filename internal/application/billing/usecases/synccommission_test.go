package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpay/internal/domain/commission"
)

func unpaidCommission(id, subscriberID uint) *commission.Commission {
	return commission.Reconstruct(commission.CommissionReconstructParams{
		ID:           id,
		SubscriberID: subscriberID,
		AgentID:      3,
		Status:       commission.PaymentStatusUnpaid,
	})
}

func TestSyncCommission(t *testing.T) {
	paidAt := time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)

	t.Run("marks the unpaid commission collected", func(t *testing.T) {
		repo := newFakeCommissionRepo()
		pending := unpaidCommission(1, 42)
		repo.put(pending)

		uc := NewSyncCommissionUseCase(repo, testLogger())
		err := uc.Execute(context.Background(), SyncCommissionCommand{
			SubscriberID:         42,
			GatewayTransactionID: "tx-100",
			PaidAt:               paidAt,
		})
		require.NoError(t, err)

		assert.True(t, pending.IsPaid())
		require.NotNil(t, pending.PaidDate())
		assert.Equal(t, paidAt, *pending.PaidDate())
		assert.Equal(t, "tx-100", *pending.CollectedTransactionID())
	})

	t.Run("re-delivery of the same transaction is a no-op", func(t *testing.T) {
		repo := newFakeCommissionRepo()
		pending := unpaidCommission(1, 42)
		repo.put(pending)
		// A second unpaid commission that must stay unpaid on replay.
		other := unpaidCommission(2, 42)
		repo.put(other)

		uc := NewSyncCommissionUseCase(repo, testLogger())
		cmd := SyncCommissionCommand{SubscriberID: 42, GatewayTransactionID: "tx-100", PaidAt: paidAt}
		require.NoError(t, uc.Execute(context.Background(), cmd))
		require.NoError(t, uc.Execute(context.Background(), cmd))

		paidCount := 0
		for _, c := range []*commission.Commission{pending, other} {
			if c.IsPaid() {
				paidCount++
			}
		}
		assert.Equal(t, 1, paidCount, "one transaction collects exactly one commission")
	})

	t.Run("no unpaid commission is not an error", func(t *testing.T) {
		repo := newFakeCommissionRepo()
		uc := NewSyncCommissionUseCase(repo, testLogger())
		err := uc.Execute(context.Background(), SyncCommissionCommand{
			SubscriberID:         42,
			GatewayTransactionID: "tx-100",
			PaidAt:               paidAt,
		})
		assert.NoError(t, err)
	})

	t.Run("missing transaction ID is rejected", func(t *testing.T) {
		uc := NewSyncCommissionUseCase(newFakeCommissionRepo(), testLogger())
		err := uc.Execute(context.Background(), SyncCommissionCommand{SubscriberID: 42, PaidAt: paidAt})
		assert.Error(t, err)
	})
}
