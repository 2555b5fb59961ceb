package mappers

import (
	"fmt"

	"planpay/internal/domain/commission"
	"planpay/internal/infrastructure/persistence/models"
)

func CommissionToModel(c *commission.Commission) *models.CommissionModel {
	return &models.CommissionModel{
		ID:                     c.ID(),
		SubscriberID:           c.SubscriberID(),
		AgentID:                c.AgentID(),
		Status:                 string(c.Status()),
		PaidDate:               c.PaidDate(),
		CollectedTransactionID: c.CollectedTransactionID(),
		Version:                c.Version(),
		CreatedAt:              c.CreatedAt(),
		UpdatedAt:              c.UpdatedAt(),
	}
}

func CommissionToDomain(model *models.CommissionModel) (*commission.Commission, error) {
	status := commission.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid commission status: %s", model.Status)
	}

	return commission.Reconstruct(commission.CommissionReconstructParams{
		ID:                     model.ID,
		SubscriberID:           model.SubscriberID,
		AgentID:                model.AgentID,
		Status:                 status,
		PaidDate:               model.PaidDate,
		CollectedTransactionID: model.CollectedTransactionID,
		Version:                model.Version,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}), nil
}
