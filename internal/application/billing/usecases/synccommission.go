package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planpay/internal/domain/commission"
	"planpay/internal/shared/logger"
)

type SyncCommissionCommand struct {
	SubscriberID         uint
	GatewayTransactionID string
	PaidAt               time.Time
}

// SyncCommissionUseCase marks the subscriber's oldest unpaid commission
// collected after a successful charge. It is safe to re-run with the same
// transaction: the collected-transaction lookup makes delivery idempotent.
type SyncCommissionUseCase struct {
	commissionRepo commission.Repository
	logger         logger.Interface
}

func NewSyncCommissionUseCase(commissionRepo commission.Repository, logger logger.Interface) *SyncCommissionUseCase {
	return &SyncCommissionUseCase{
		commissionRepo: commissionRepo,
		logger:         logger,
	}
}

func (uc *SyncCommissionUseCase) Execute(ctx context.Context, cmd SyncCommissionCommand) error {
	if cmd.GatewayTransactionID == "" {
		return fmt.Errorf("gateway transaction ID is required")
	}

	// Re-delivered result: this transaction already collected a commission.
	existing, err := uc.commissionRepo.GetByCollectedTransactionID(ctx, cmd.GatewayTransactionID)
	if err != nil && !errors.Is(err, commission.ErrNotFound) {
		return fmt.Errorf("failed to check commission ledger: %w", err)
	}
	if existing != nil {
		uc.logger.Debugw("commission already collected by this transaction",
			"commission_id", existing.ID(),
			"gateway_transaction_id", cmd.GatewayTransactionID,
		)
		return nil
	}

	pending, err := uc.commissionRepo.GetLatestUnpaidBySubscriber(ctx, cmd.SubscriberID)
	if err != nil {
		if errors.Is(err, commission.ErrNotFound) {
			// Not every billing period carries a commission.
			uc.logger.Debugw("no unpaid commission for subscriber",
				"subscriber_id", cmd.SubscriberID,
			)
			return nil
		}
		return fmt.Errorf("failed to find unpaid commission: %w", err)
	}

	if err := pending.MarkCollected(cmd.GatewayTransactionID, cmd.PaidAt); err != nil {
		return fmt.Errorf("failed to mark commission collected: %w", err)
	}
	if err := uc.commissionRepo.Update(ctx, pending); err != nil {
		return fmt.Errorf("failed to update commission: %w", err)
	}

	uc.logger.Infow("commission marked collected",
		"commission_id", pending.ID(),
		"subscriber_id", cmd.SubscriberID,
		"gateway_transaction_id", cmd.GatewayTransactionID,
	)

	return nil
}
