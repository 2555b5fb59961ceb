package mappers

import (
	"planpay/internal/domain/billing"
	"planpay/internal/infrastructure/persistence/models"
)

func SweepRunToModel(r *billing.SweepRun) *models.SweepRunModel {
	var live *bool
	if !r.State().IsTerminal() {
		l := true
		live = &l
	}
	return &models.SweepRunModel{
		ID:          r.ID(),
		SweepID:     r.SweepID(),
		SweepDate:   r.SweepDate(),
		State:       string(r.State()),
		Live:        live,
		Processed:   r.Processed(),
		Succeeded:   r.Succeeded(),
		Failed:      r.Failed(),
		Skipped:     r.Skipped(),
		AbortReason: r.AbortReason(),
		StartedAt:   r.StartedAt(),
		FinishedAt:  r.FinishedAt(),
	}
}

func SweepRunToDomain(model *models.SweepRunModel) *billing.SweepRun {
	return billing.ReconstructSweepRun(billing.SweepRunReconstructParams{
		ID:          model.ID,
		SweepID:     model.SweepID,
		SweepDate:   model.SweepDate,
		State:       billing.SweepRunState(model.State),
		Processed:   model.Processed,
		Succeeded:   model.Succeeded,
		Failed:      model.Failed,
		Skipped:     model.Skipped,
		AbortReason: model.AbortReason,
		StartedAt:   model.StartedAt,
		FinishedAt:  model.FinishedAt,
	})
}
