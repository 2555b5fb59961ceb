package usecases

import (
	"context"
	"errors"
	"fmt"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/domain/billing"
	"planpay/internal/shared/logger"
)

type ReplaceTokenCommand struct {
	SubscriberID uint
	CardNumber   string
	ExpMonth     int
	ExpYear      int
	CVV          string
	ZIP          string
}

type ReplaceTokenResult struct {
	TokenID   uint
	CardBrand string
	LastFour  string
}

// transactionRunner runs a function inside one database transaction; the
// repositories observe it through the context.
type transactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReplaceTokenUseCase tokenizes a new card at the gateway and makes it the
// subscriber's primary. The raw card data lives only for the duration of the
// storage call; everything persisted afterwards is the opaque token.
type ReplaceTokenUseCase struct {
	tokenRepo    billing.TokenRepository
	scheduleRepo billing.ScheduleRepository
	gateway      paymentgateway.Gateway
	tx           transactionRunner
	logger       logger.Interface
}

func NewReplaceTokenUseCase(
	tokenRepo billing.TokenRepository,
	scheduleRepo billing.ScheduleRepository,
	gateway paymentgateway.Gateway,
	tx transactionRunner,
	logger logger.Interface,
) *ReplaceTokenUseCase {
	return &ReplaceTokenUseCase{
		tokenRepo:    tokenRepo,
		scheduleRepo: scheduleRepo,
		gateway:      gateway,
		tx:           tx,
		logger:       logger,
	}
}

func (uc *ReplaceTokenUseCase) Execute(ctx context.Context, cmd ReplaceTokenCommand) (*ReplaceTokenResult, error) {
	stored, err := uc.gateway.StoreToken(ctx, paymentgateway.StorageRequest{
		CardNumber: cmd.CardNumber,
		ExpMonth:   cmd.ExpMonth,
		ExpYear:    cmd.ExpYear,
		CVV:        cmd.CVV,
		ZIP:        cmd.ZIP,
	})
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	token, err := billing.NewPaymentToken(
		cmd.SubscriberID,
		stored.TokenRef,
		stored.CardBrand,
		stored.LastFour,
		cmd.ExpMonth,
		cmd.ExpYear,
		stored.NetworkTransactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment token: %w", err)
	}

	// Save, promotion, and schedule repoint commit or roll back together;
	// a failure midway must not leave the schedule on the old card with a
	// saved-but-unpromoted replacement sitting next to it.
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.tokenRepo.Create(ctx, token); err != nil {
			return fmt.Errorf("failed to save payment token: %w", err)
		}

		// Demotes any existing primary in the same transaction.
		if err := uc.tokenRepo.MakePrimary(ctx, token); err != nil {
			return fmt.Errorf("failed to promote payment token: %w", err)
		}

		// Point the subscriber's schedule at the new card.
		schedule, err := uc.scheduleRepo.GetBySubscriberID(ctx, cmd.SubscriberID)
		if err != nil && !errors.Is(err, billing.ErrScheduleNotFound) {
			return fmt.Errorf("failed to get billing schedule: %w", err)
		}
		if schedule != nil {
			if err := schedule.ReplaceToken(token.ID()); err != nil {
				return fmt.Errorf("failed to attach token to schedule: %w", err)
			}
			if err := uc.scheduleRepo.Update(ctx, schedule); err != nil {
				return fmt.Errorf("failed to update billing schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("payment token replaced",
		"subscriber_id", cmd.SubscriberID,
		"token_id", token.ID(),
		"card_brand", stored.CardBrand,
		"last_four", stored.LastFour,
	)

	return &ReplaceTokenResult{
		TokenID:   token.ID(),
		CardBrand: stored.CardBrand,
		LastFour:  stored.LastFour,
	}, nil
}
