package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

// ResponseCodeNoActiveToken marks attempts that never reached the gateway
// because the subscriber has no chargeable card on file.
const ResponseCodeNoActiveToken = "NO_ACTIVE_TOKEN"

type ChargeScheduleCommand struct {
	ScheduleID uint

	// AsOf is the moment the charge is evaluated. Zero means now.
	AsOf time.Time
}

type ChargeResult struct {
	Outcome vo.AttemptOutcome
	Action  billing.RetryAction

	// Skipped is true when no attempt was made: the schedule is not
	// chargeable or it was already attempted on this sweep date.
	Skipped    bool
	SkipReason string

	// CalledGateway tells the sweep loop whether to apply the pacing gap.
	CalledGateway bool
}

// commissionSyncer decouples the charge path from the commission ledger so a
// commission outage can never roll back a collected payment.
type commissionSyncer interface {
	Execute(ctx context.Context, cmd SyncCommissionCommand) error
}

type ChargeScheduleUseCase struct {
	scheduleRepo billing.ScheduleRepository
	tokenRepo    billing.TokenRepository
	attemptRepo  billing.AttemptRepository
	gateway      paymentgateway.Gateway
	commissions  commissionSyncer
	logger       logger.Interface
}

func NewChargeScheduleUseCase(
	scheduleRepo billing.ScheduleRepository,
	tokenRepo billing.TokenRepository,
	attemptRepo billing.AttemptRepository,
	gateway paymentgateway.Gateway,
	commissions commissionSyncer,
	logger logger.Interface,
) *ChargeScheduleUseCase {
	return &ChargeScheduleUseCase{
		scheduleRepo: scheduleRepo,
		tokenRepo:    tokenRepo,
		attemptRepo:  attemptRepo,
		gateway:      gateway,
		commissions:  commissions,
		logger:       logger,
	}
}

// Execute runs exactly one charge attempt for a schedule. It re-checks the
// schedule state and the per-sweep-date attempt log before touching the
// gateway, so re-running a crashed sweep never double-charges anyone.
func (uc *ChargeScheduleUseCase) Execute(ctx context.Context, cmd ChargeScheduleCommand) (*ChargeResult, error) {
	asOf := cmd.AsOf
	if asOf.IsZero() {
		asOf = biztime.NowUTC()
	}
	sweepDate := biztime.StartOfDayUTC(asOf)

	schedule, err := uc.scheduleRepo.GetByID(ctx, cmd.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get billing schedule: %w", err)
	}

	// State may have changed between selection and processing.
	if !schedule.Status().IsChargeable() {
		uc.logger.Infow("skipping schedule, not chargeable",
			"schedule_id", schedule.ID(),
			"status", schedule.Status(),
		)
		return &ChargeResult{Skipped: true, SkipReason: "schedule is " + schedule.Status().String()}, nil
	}

	attempted, err := uc.attemptRepo.ExistsForSweepDate(ctx, schedule.ID(), sweepDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check attempt log: %w", err)
	}
	if attempted {
		uc.logger.Infow("skipping schedule, already attempted on this sweep date",
			"schedule_id", schedule.ID(),
			"sweep_date", sweepDate.Format(time.DateOnly),
		)
		return &ChargeResult{Skipped: true, SkipReason: billing.ErrAlreadyAttemptedToday.Error()}, nil
	}

	token, err := uc.resolveToken(ctx, schedule, asOf)
	if err != nil {
		if errors.Is(err, billing.ErrNoActiveToken) {
			// Terminal decline without a gateway round trip.
			return uc.recordOutcome(ctx, schedule, sweepDate, asOf, &paymentgateway.SaleResult{
				Outcome:      vo.OutcomeDeclined,
				ResponseCode: ResponseCodeNoActiveToken,
				Reason:       err.Error(),
			}, false)
		}
		return nil, err
	}

	firstRecurring, err := uc.isFirstRecurring(ctx, schedule.ID())
	if err != nil {
		return nil, err
	}

	saleReq := paymentgateway.SaleRequest{
		TokenRef:                  token.TokenRef(),
		Amount:                    schedule.Amount(),
		StoredCredentialIndicator: paymentgateway.StoredCredentialRecurring,
		FirstRecurringPayment:     firstRecurring,
		IdempotencyKey:            fmt.Sprintf("schedule-%d:%s", schedule.ID(), sweepDate.Format(time.DateOnly)),
	}
	if !firstRecurring {
		saleReq.OriginalNetworkTransactionID = token.NetworkTransactionID()
	}

	sale, err := uc.gateway.Sale(ctx, saleReq)
	if err != nil {
		// Auth and transport-level failures propagate; the caller decides
		// whether the whole sweep must stop.
		return nil, fmt.Errorf("sale failed for schedule %d: %w", schedule.ID(), err)
	}

	return uc.recordOutcome(ctx, schedule, sweepDate, asOf, sale, true)
}

// resolveToken returns the chargeable primary token or ErrNoActiveToken.
func (uc *ChargeScheduleUseCase) resolveToken(ctx context.Context, schedule *billing.BillingSchedule, asOf time.Time) (*billing.PaymentToken, error) {
	token, err := uc.tokenRepo.GetActivePrimaryBySubscriber(ctx, schedule.SubscriberID())
	if err != nil {
		if errors.Is(err, billing.ErrTokenNotFound) {
			return nil, billing.ErrNoActiveToken
		}
		return nil, fmt.Errorf("failed to resolve payment token: %w", err)
	}
	if !token.IsChargeable() || token.IsExpired(asOf) {
		return nil, billing.ErrNoActiveToken
	}
	return token, nil
}

func (uc *ChargeScheduleUseCase) isFirstRecurring(ctx context.Context, scheduleID uint) (bool, error) {
	has, err := uc.attemptRepo.HasAnyAttempt(ctx, scheduleID)
	if err != nil {
		return false, fmt.Errorf("failed to check attempt history: %w", err)
	}
	return !has, nil
}

// recordOutcome appends the attempt, applies the retry decision to the
// schedule, and on success marks the pending commission collected. The
// attempt is written first: if the schedule update is lost, replaying the
// sweep is still blocked by the attempt log.
func (uc *ChargeScheduleUseCase) recordOutcome(
	ctx context.Context,
	schedule *billing.BillingSchedule,
	sweepDate, asOf time.Time,
	sale *paymentgateway.SaleResult,
	calledGateway bool,
) (*ChargeResult, error) {
	decision := billing.Decide(schedule.ConsecutiveFailures(), sale.Outcome, schedule.Cadence(), schedule.NextBillingDate(), asOf)

	params := billing.NewBillingAttemptParams{
		ScheduleID:      schedule.ID(),
		SubscriberID:    schedule.SubscriberID(),
		SweepDate:       sweepDate,
		AttemptNumber:   schedule.ConsecutiveFailures() + 1,
		Outcome:         sale.Outcome,
		ResponseCode:    sale.ResponseCode,
		Reason:          sale.Reason,
		RequestPayload:  sale.RequestPayload,
		ResponsePayload: sale.ResponsePayload,
	}
	if sale.GatewayTransactionID != "" {
		txID := sale.GatewayTransactionID
		params.GatewayTransactionID = &txID
	}
	if sale.NetworkTransactionID != "" {
		ntxID := sale.NetworkTransactionID
		params.NetworkTransactionID = &ntxID
	}
	if decision.Action == billing.ActionRetryLater {
		retryDate := decision.NextBillingDate
		params.NextRetryDate = &retryDate
	}

	attempt, err := billing.NewBillingAttempt(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build billing attempt: %w", err)
	}
	if err := uc.attemptRepo.Append(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to append billing attempt: %w", err)
	}

	schedule.ApplyDecision(decision)
	if err := uc.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to update billing schedule: %w", err)
	}

	uc.logger.Infow("charge attempt recorded",
		"schedule_id", schedule.ID(),
		"subscriber_id", schedule.SubscriberID(),
		"outcome", sale.Outcome,
		"action", decision.Action,
		"response_code", sale.ResponseCode,
		"next_billing_date", decision.NextBillingDate.Format(time.DateOnly),
	)

	if sale.Outcome.IsSuccess() && uc.commissions != nil {
		syncErr := uc.commissions.Execute(ctx, SyncCommissionCommand{
			SubscriberID:         schedule.SubscriberID(),
			GatewayTransactionID: sale.GatewayTransactionID,
			PaidAt:               asOf,
		})
		if syncErr != nil {
			// The charge already collected; the ledger catches up later.
			uc.logger.Errorw("commission sync failed after successful charge",
				"error", syncErr,
				"subscriber_id", schedule.SubscriberID(),
				"gateway_transaction_id", sale.GatewayTransactionID,
			)
		}
	}

	return &ChargeResult{
		Outcome:       sale.Outcome,
		Action:        decision.Action,
		CalledGateway: calledGateway,
	}, nil
}
