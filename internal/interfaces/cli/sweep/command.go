// Package sweep runs a one-shot billing sweep from the command line.
package sweep

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/application/billing/usecases"
	"planpay/internal/infrastructure/alert"
	"planpay/internal/infrastructure/config"
	"planpay/internal/infrastructure/database"
	"planpay/internal/infrastructure/repository"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

var (
	env     string
	asOfStr string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the daily billing sweep once",
		Long: `Run one billing sweep and exit. Useful for operators replaying a missed
day (--as-of) or for cron-style external triggering. Safe to re-run: schedules
already attempted on the sweep date are skipped.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "Sweep date in YYYY-MM-DD (business timezone); empty means today")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Billing.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	var asOf time.Time
	if asOfStr != "" {
		asOf, err = biztime.ParseDateInBizTimezone(asOfStr)
		if err != nil {
			return fmt.Errorf("invalid --as-of date: %w", err)
		}
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	uc := buildSweepUseCase(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
	defer cancel()

	summary, err := uc.Execute(ctx, usecases.RunDueSweepCommand{AsOf: asOf})
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("\nSweep %s (%s):\n", summary.SweepID, summary.SweepDate.Format(time.DateOnly))
	fmt.Printf("  Due:       %d\n", summary.Due)
	fmt.Printf("  Succeeded: %d\n", summary.Succeeded)
	fmt.Printf("  Failed:    %d\n", summary.Failed)
	fmt.Printf("  Skipped:   %d\n", summary.Skipped)
	if summary.Aborted {
		fmt.Printf("  ABORTED\n")
	}

	return nil
}

// buildSweepUseCase wires the full charge path against the live database.
func buildSweepUseCase(cfg *config.Config, log logger.Interface) *usecases.RunDueSweepUseCase {
	db := database.Get()

	tokenRepo := repository.NewPaymentTokenRepository(db)
	scheduleRepo := repository.NewBillingScheduleRepository(db)
	attemptRepo := repository.NewBillingAttemptRepository(db)
	sweepRunRepo := repository.NewSweepRunRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	gateway := paymentgateway.NewCustomPayClient(&cfg.Gateway, log)

	syncUC := usecases.NewSyncCommissionUseCase(commissionRepo, log)
	chargeUC := usecases.NewChargeScheduleUseCase(scheduleRepo, tokenRepo, attemptRepo, gateway, syncUC, log)

	var alerter usecases.OpsAlerter
	if cfg.Alert.Configured() {
		alerter = alert.NewSMTPAlerter(cfg.Alert, log)
	} else {
		alerter = alert.NewNoopAlerter(log)
	}

	return usecases.NewRunDueSweepUseCase(
		sweepRunRepo,
		scheduleRepo,
		chargeUC,
		alerter,
		cfg.Billing.GatewayCallGap(),
		log,
	)
}
