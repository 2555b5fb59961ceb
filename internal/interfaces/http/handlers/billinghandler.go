package handlers

import (
	goerrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planpay/internal/application/billing/usecases"
	"planpay/internal/domain/billing"
	"planpay/internal/shared/biztime"
	"planpay/internal/shared/errors"
	"planpay/internal/shared/logger"
	"planpay/internal/shared/utils"
)

type BillingHandler struct {
	chargeUC     chargeScheduleExecutor
	listFailedUC listFailedSchedulesExecutor
	reactivateUC reactivateScheduleExecutor
	pauseUC      pauseScheduleExecutor
	resumeUC     resumeScheduleExecutor
	exportUC     exportBillingLogExecutor
	logger       logger.Interface
}

func NewBillingHandler(
	chargeUC chargeScheduleExecutor,
	listFailedUC listFailedSchedulesExecutor,
	reactivateUC reactivateScheduleExecutor,
	pauseUC pauseScheduleExecutor,
	resumeUC resumeScheduleExecutor,
	exportUC exportBillingLogExecutor,
) *BillingHandler {
	return &BillingHandler{
		chargeUC:     chargeUC,
		listFailedUC: listFailedUC,
		reactivateUC: reactivateUC,
		pauseUC:      pauseUC,
		resumeUC:     resumeUC,
		exportUC:     exportUC,
		logger:       logger.NewLogger(),
	}
}

// ChargeResponse is the JSON body returned by the manual charge endpoint.
type ChargeResponse struct {
	Outcome    string `json:"outcome,omitempty"`
	Action     string `json:"action,omitempty"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// ChargeSchedule triggers a charge for one schedule outside the daily sweep.
// @Summary Manually charge a billing schedule
// @Description Runs the charge path for one schedule now. Same-day idempotency still applies: if the schedule was already attempted on this sweep date the call is a no-op.
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} utils.APIResponse{data=ChargeResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /admin/billing/schedules/{id}/charge [post]
func (h *BillingHandler) ChargeSchedule(c *gin.Context) {
	scheduleID, err := parseScheduleID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.chargeUC.Execute(c.Request.Context(), usecases.ChargeScheduleCommand{
		ScheduleID: scheduleID,
	})
	if err != nil {
		h.logger.Errorw("manual charge failed", "schedule_id", scheduleID, "error", err)
		utils.ErrorResponseWithError(c, mapBillingError(err))
		return
	}

	resp := ChargeResponse{
		Outcome:    result.Outcome.String(),
		Action:     string(result.Action),
		Skipped:    result.Skipped,
		SkipReason: result.SkipReason,
	}
	if result.Skipped {
		resp.Outcome = ""
		resp.Action = ""
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// ListFailed returns the failed-billing worklist.
// @Summary List failing schedules
// @Description Every schedule with a failure streak or in suspended state, with its most recent attempt.
// @Tags Billing
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]usecases.FailedScheduleDTO}
// @Router /admin/billing/failed [get]
func (h *BillingHandler) ListFailed(c *gin.Context) {
	result, err := h.listFailedUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list failing schedules", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ReactivateSchedule puts a suspended schedule back into rotation.
// @Summary Reactivate a suspended schedule
// @Description Clears the failure streak and sets the next billing date one cadence period out from today.
// @Tags Billing
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /admin/billing/schedules/{id}/reactivate [post]
func (h *BillingHandler) ReactivateSchedule(c *gin.Context) {
	scheduleID, err := parseScheduleID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.ReactivateScheduleCommand{
		ScheduleID: scheduleID,
		AsOf:       biztime.NowUTC(),
	}
	if err := h.reactivateUC.Execute(c.Request.Context(), cmd); err != nil {
		h.logger.Errorw("failed to reactivate schedule", "schedule_id", scheduleID, "error", err)
		utils.ErrorResponseWithError(c, mapBillingError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Schedule reactivated successfully", nil)
}

// PauseSchedule takes a schedule out of the sweep's selection.
// @Summary Pause a billing schedule
// @Tags Billing
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /admin/billing/schedules/{id}/pause [post]
func (h *BillingHandler) PauseSchedule(c *gin.Context) {
	scheduleID, err := parseScheduleID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.pauseUC.Execute(c.Request.Context(), usecases.PauseScheduleCommand{ScheduleID: scheduleID}); err != nil {
		h.logger.Errorw("failed to pause schedule", "schedule_id", scheduleID, "error", err)
		utils.ErrorResponseWithError(c, mapBillingError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Schedule paused successfully", nil)
}

// ResumeSchedule returns a paused schedule to active.
// @Summary Resume a paused billing schedule
// @Tags Billing
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /admin/billing/schedules/{id}/resume [post]
func (h *BillingHandler) ResumeSchedule(c *gin.Context) {
	scheduleID, err := parseScheduleID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.resumeUC.Execute(c.Request.Context(), usecases.ResumeScheduleCommand{ScheduleID: scheduleID}); err != nil {
		h.logger.Errorw("failed to resume schedule", "schedule_id", scheduleID, "error", err)
		utils.ErrorResponseWithError(c, mapBillingError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Schedule resumed successfully", nil)
}

// ExportAttempts streams the attempt log as CSV.
// @Summary Export the billing attempt log
// @Description Streams the append-only attempt log as CSV in timestamp order, optionally limited to one schedule.
// @Tags Billing
// @Produce text/csv
// @Param schedule_id query int false "Limit the export to one schedule"
// @Success 200 {string} string "CSV body"
// @Failure 400 {object} utils.APIResponse
// @Router /admin/billing/attempts [get]
func (h *BillingHandler) ExportAttempts(c *gin.Context) {
	cmd := usecases.ExportBillingLogCommand{}

	if idStr := c.Query("schedule_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid schedule_id parameter"))
			return
		}
		cmd.ScheduleID = uint(id)
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="billing_attempts.csv"`)
	c.Status(http.StatusOK)

	if err := h.exportUC.Execute(c.Request.Context(), cmd, c.Writer); err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		h.logger.Errorw("billing log export failed", "error", err)
	}
}

func parseScheduleID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return 0, errors.NewValidationError("Schedule ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("Invalid schedule ID format")
	}

	if id == 0 {
		return 0, errors.NewValidationError("Schedule ID cannot be zero")
	}

	return uint(id), nil
}

// mapBillingError converts domain sentinels into responses with the right
// status code. Anything unmapped falls through as an internal error.
func mapBillingError(err error) error {
	switch {
	case goerrors.Is(err, billing.ErrScheduleNotFound),
		goerrors.Is(err, billing.ErrTokenNotFound):
		return errors.NewNotFoundError(err.Error())
	case goerrors.Is(err, billing.ErrAlreadyAttemptedToday),
		goerrors.Is(err, billing.ErrSweepAlreadyRunning):
		return errors.NewConflictError(err.Error())
	case goerrors.Is(err, billing.ErrGatewayAuth):
		return errors.NewInternalError("gateway authentication failed")
	default:
		return err
	}
}
