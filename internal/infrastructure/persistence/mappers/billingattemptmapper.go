package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/infrastructure/persistence/models"
)

func BillingAttemptToModel(a *billing.BillingAttempt) *models.BillingAttemptModel {
	model := &models.BillingAttemptModel{
		ID:                   a.ID(),
		ScheduleID:           a.ScheduleID(),
		SubscriberID:         a.SubscriberID(),
		SweepDate:            a.SweepDate(),
		AttemptNumber:        a.AttemptNumber(),
		Outcome:              a.Outcome().String(),
		ResponseCode:         a.ResponseCode(),
		Reason:               a.Reason(),
		GatewayTransactionID: a.GatewayTransactionID(),
		NetworkTransactionID: a.NetworkTransactionID(),
		NextRetryDate:        a.NextRetryDate(),
		CreatedAt:            a.CreatedAt(),
	}

	if len(a.RequestPayload()) > 0 {
		model.RequestPayload = datatypes.JSON(a.RequestPayload())
	}
	if len(a.ResponsePayload()) > 0 {
		model.ResponsePayload = datatypes.JSON(a.ResponsePayload())
	}

	return model
}

func BillingAttemptToDomain(model *models.BillingAttemptModel) (*billing.BillingAttempt, error) {
	outcome := vo.AttemptOutcome(model.Outcome)
	if !outcome.IsValid() {
		return nil, fmt.Errorf("invalid attempt outcome: %s", model.Outcome)
	}

	return billing.ReconstructBillingAttempt(billing.BillingAttemptReconstructParams{
		ID:                   model.ID,
		ScheduleID:           model.ScheduleID,
		SubscriberID:         model.SubscriberID,
		SweepDate:            model.SweepDate,
		AttemptNumber:        model.AttemptNumber,
		Outcome:              outcome,
		ResponseCode:         model.ResponseCode,
		Reason:               model.Reason,
		GatewayTransactionID: model.GatewayTransactionID,
		NetworkTransactionID: model.NetworkTransactionID,
		RequestPayload:       []byte(model.RequestPayload),
		ResponsePayload:      []byte(model.ResponsePayload),
		NextRetryDate:        model.NextRetryDate,
		CreatedAt:            model.CreatedAt,
	}), nil
}
