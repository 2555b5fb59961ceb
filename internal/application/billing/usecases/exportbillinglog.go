package usecases

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"planpay/internal/domain/billing"
	"planpay/internal/shared/logger"
)

type ExportBillingLogCommand struct {
	// ScheduleID limits the export to one schedule. Zero exports everything.
	ScheduleID uint
}

// ExportBillingLogUseCase streams the append-only attempt log as CSV for
// reconciliation against gateway settlement reports.
type ExportBillingLogUseCase struct {
	attemptRepo billing.AttemptRepository
	logger      logger.Interface
}

func NewExportBillingLogUseCase(attemptRepo billing.AttemptRepository, logger logger.Interface) *ExportBillingLogUseCase {
	return &ExportBillingLogUseCase{
		attemptRepo: attemptRepo,
		logger:      logger,
	}
}

var exportHeader = []string{
	"attempt_id",
	"schedule_id",
	"subscriber_id",
	"sweep_date",
	"attempt_number",
	"outcome",
	"response_code",
	"reason",
	"gateway_transaction_id",
	"network_transaction_id",
	"next_retry_date",
	"created_at",
}

func (uc *ExportBillingLogUseCase) Execute(ctx context.Context, cmd ExportBillingLogCommand, w io.Writer) error {
	var (
		attempts []*billing.BillingAttempt
		err      error
	)
	if cmd.ScheduleID != 0 {
		attempts, err = uc.attemptRepo.ListBySchedule(ctx, cmd.ScheduleID)
	} else {
		attempts, err = uc.attemptRepo.ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load billing attempts: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, a := range attempts {
		row := []string{
			strconv.FormatUint(uint64(a.ID()), 10),
			strconv.FormatUint(uint64(a.ScheduleID()), 10),
			strconv.FormatUint(uint64(a.SubscriberID()), 10),
			a.SweepDate().Format(time.DateOnly),
			strconv.Itoa(a.AttemptNumber()),
			a.Outcome().String(),
			a.ResponseCode(),
			a.Reason(),
			derefOr(a.GatewayTransactionID(), ""),
			derefOr(a.NetworkTransactionID(), ""),
			formatDateOr(a.NextRetryDate(), ""),
			a.CreatedAt().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	uc.logger.Infow("billing log exported",
		"schedule_id", cmd.ScheduleID,
		"rows", len(attempts),
	)

	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatDateOr(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(time.DateOnly)
}
