package mappers

import (
	"planpay/internal/domain/billing"
	"planpay/internal/infrastructure/persistence/models"
)

func PaymentTokenToModel(t *billing.PaymentToken) *models.PaymentTokenModel {
	return &models.PaymentTokenModel{
		ID:                   t.ID(),
		SubscriberID:         t.SubscriberID(),
		TokenRef:             t.TokenRef(),
		CardBrand:            t.CardBrand(),
		LastFour:             t.LastFour(),
		ExpMonth:             t.ExpMonth(),
		ExpYear:              t.ExpYear(),
		IsPrimary:            t.IsPrimary(),
		IsActive:             t.IsActive(),
		NetworkTransactionID: t.NetworkTransactionID(),
		DeactivatedReason:    t.DeactivatedReason(),
		Version:              t.Version(),
		CreatedAt:            t.CreatedAt(),
		UpdatedAt:            t.UpdatedAt(),
	}
}

func PaymentTokenToDomain(model *models.PaymentTokenModel) *billing.PaymentToken {
	return billing.ReconstructPaymentToken(billing.PaymentTokenReconstructParams{
		ID:                   model.ID,
		TokenRef:             model.TokenRef,
		SubscriberID:         model.SubscriberID,
		CardBrand:            model.CardBrand,
		LastFour:             model.LastFour,
		ExpMonth:             model.ExpMonth,
		ExpYear:              model.ExpYear,
		IsPrimary:            model.IsPrimary,
		IsActive:             model.IsActive,
		NetworkTransactionID: model.NetworkTransactionID,
		DeactivatedReason:    model.DeactivatedReason,
		Version:              model.Version,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	})
}
