package mappers

import (
	"fmt"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	"planpay/internal/infrastructure/persistence/models"
)

func BillingScheduleToModel(s *billing.BillingSchedule) *models.BillingScheduleModel {
	return &models.BillingScheduleModel{
		ID:                  s.ID(),
		SubscriberID:        s.SubscriberID(),
		TokenID:             s.TokenID(),
		AmountCents:         s.Amount().AmountInCents(),
		Currency:            s.Amount().Currency(),
		Cadence:             s.Cadence().String(),
		NextBillingDate:     s.NextBillingDate(),
		ConsecutiveFailures: s.ConsecutiveFailures(),
		Status:              s.Status().String(),
		Version:             s.Version(),
		CreatedAt:           s.CreatedAt(),
		UpdatedAt:           s.UpdatedAt(),
	}
}

func BillingScheduleToDomain(model *models.BillingScheduleModel) (*billing.BillingSchedule, error) {
	cadence, err := vo.NewCadence(model.Cadence)
	if err != nil {
		return nil, fmt.Errorf("invalid cadence: %w", err)
	}

	status := vo.ScheduleStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid schedule status: %s", model.Status)
	}

	return billing.ReconstructBillingSchedule(billing.BillingScheduleReconstructParams{
		ID:                  model.ID,
		SubscriberID:        model.SubscriberID,
		TokenID:             model.TokenID,
		Amount:              vo.NewMoney(model.AmountCents, model.Currency),
		Cadence:             cadence,
		NextBillingDate:     model.NextBillingDate,
		ConsecutiveFailures: model.ConsecutiveFailures,
		Status:              status,
		Version:             model.Version,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}), nil
}
