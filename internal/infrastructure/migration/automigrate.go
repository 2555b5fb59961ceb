package migration

import (
	"fmt"

	"gorm.io/gorm"

	"planpay/internal/infrastructure/persistence/models"
	"planpay/internal/shared/logger"
)

// BillingModels returns every model the schema migration covers.
func BillingModels() []interface{} {
	return []interface{}{
		&models.PaymentTokenModel{},
		&models.BillingScheduleModel{},
		&models.BillingAttemptModel{},
		&models.SweepRunModel{},
		&models.CommissionModel{},
	}
}

// GormAutoMigrateStrategy lets GORM derive the schema from the model structs.
// Development only; releases run versioned SQL scripts.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.auto"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = BillingModels()
	}

	s.logger.Infow("running gorm auto-migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
