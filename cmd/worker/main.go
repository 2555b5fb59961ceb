// The worker hosts the daily billing sweep scheduler. It runs as a single
// instance; the database run lock protects against an accidental second copy.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"planpay/internal/application/billing/paymentgateway"
	"planpay/internal/application/billing/usecases"
	"planpay/internal/infrastructure/alert"
	"planpay/internal/infrastructure/config"
	"planpay/internal/infrastructure/database"
	"planpay/internal/infrastructure/repository"
	"planpay/internal/infrastructure/scheduler"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/logger"
)

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting billing sweep worker", "environment", env)

	if err := biztime.Init(cfg.Billing.Timezone); err != nil {
		log.Fatalw("failed to initialize business timezone", "error", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

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
		log.Infow("ops alerting enabled", "ops_address", cfg.Alert.OpsAddress)
	} else {
		alerter = alert.NewNoopAlerter(log)
		log.Warnw("ops alerting not configured, sweep aborts will only be logged")
	}

	sweepUC := usecases.NewRunDueSweepUseCase(
		sweepRunRepo,
		scheduleRepo,
		chargeUC,
		alerter,
		cfg.Billing.GatewayCallGap(),
		log,
	)

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Fatalw("failed to create scheduler", "error", err)
	}

	if err := manager.RegisterBillingSweepJob(sweepUC, cfg.Billing.SweepTime); err != nil {
		log.Fatalw("failed to register billing sweep job", "error", err)
	}

	manager.Start()
	log.Infow("billing sweep worker started", "sweep_time", cfg.Billing.SweepTime)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)

	if err := manager.Stop(); err != nil {
		log.Errorw("scheduler shutdown failed", "error", err)
	}

	log.Infow("billing sweep worker stopped")
}
