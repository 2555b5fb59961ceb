package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"planpay/internal/domain/billing"
	"planpay/internal/infrastructure/persistence/mappers"
	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/db"
)

type PaymentTokenRepository struct {
	db *gorm.DB
}

func NewPaymentTokenRepository(db *gorm.DB) *PaymentTokenRepository {
	return &PaymentTokenRepository{db: db}
}

var _ billing.TokenRepository = (*PaymentTokenRepository)(nil)

func (r *PaymentTokenRepository) Create(ctx context.Context, token *billing.PaymentToken) error {
	model := mappers.PaymentTokenToModel(token)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment token: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	token.SetID(model.ID)

	return nil
}

func (r *PaymentTokenRepository) Update(ctx context.Context, token *billing.PaymentToken) error {
	model := mappers.PaymentTokenToModel(token)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentTokenModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"is_primary":         model.IsPrimary,
			"is_active":          model.IsActive,
			"deactivated_reason": model.DeactivatedReason,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment token: %w", result.Error)
	}

	return nil
}

func (r *PaymentTokenRepository) GetByID(ctx context.Context, id uint) (*billing.PaymentToken, error) {
	var model models.PaymentTokenModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get payment token: %w", err)
	}

	return mappers.PaymentTokenToDomain(&model), nil
}

func (r *PaymentTokenRepository) GetActivePrimaryBySubscriber(ctx context.Context, subscriberID uint) (*billing.PaymentToken, error) {
	var model models.PaymentTokenModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("subscriber_id = ? AND is_active = ? AND is_primary = ?", subscriberID, true, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get primary payment token: %w", err)
	}

	return mappers.PaymentTokenToDomain(&model), nil
}

func (r *PaymentTokenRepository) ListBySubscriber(ctx context.Context, subscriberID uint) ([]*billing.PaymentToken, error) {
	var rows []models.PaymentTokenModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("subscriber_id = ?", subscriberID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment tokens: %w", err)
	}

	tokens := make([]*billing.PaymentToken, 0, len(rows))
	for i := range rows {
		tokens = append(tokens, mappers.PaymentTokenToDomain(&rows[i]))
	}

	return tokens, nil
}

// MakePrimary promotes the token and demotes every sibling in one transaction,
// so the subscriber never has two primaries.
func (r *PaymentTokenRepository) MakePrimary(ctx context.Context, token *billing.PaymentToken) error {
	tx := db.GetTxFromContext(ctx, r.db)

	return tx.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PaymentTokenModel{}).
			Where("subscriber_id = ? AND id != ?", token.SubscriberID(), token.ID()).
			Update("is_primary", false).Error
		if err != nil {
			return fmt.Errorf("failed to demote sibling tokens: %w", err)
		}

		if err := token.MarkPrimary(); err != nil {
			return err
		}

		err = tx.Model(&models.PaymentTokenModel{}).
			Where("id = ?", token.ID()).
			Update("is_primary", true).Error
		if err != nil {
			return fmt.Errorf("failed to promote token: %w", err)
		}

		return nil
	})
}
