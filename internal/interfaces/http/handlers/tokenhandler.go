package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planpay/internal/application/billing/usecases"
	"planpay/internal/shared/errors"
	"planpay/internal/shared/logger"
	"planpay/internal/shared/utils"
)

type TokenHandler struct {
	replaceTokenUC replaceTokenExecutor
	logger         logger.Interface
}

func NewTokenHandler(replaceTokenUC replaceTokenExecutor) *TokenHandler {
	return &TokenHandler{
		replaceTokenUC: replaceTokenUC,
		logger:         logger.NewLogger(),
	}
}

// ReplaceTokenRequest carries raw card data for tokenization. It is never
// persisted; only the gateway token comes back out.
type ReplaceTokenRequest struct {
	CardNumber string `json:"card_number" binding:"required,min=12,max=19"`
	ExpMonth   int    `json:"exp_month" binding:"required,min=1,max=12"`
	ExpYear    int    `json:"exp_year" binding:"required,min=2000"`
	CVV        string `json:"cvv" binding:"required,min=3,max=4"`
	ZIP        string `json:"zip" binding:"required"`
}

type ReplaceTokenResponse struct {
	TokenID   uint   `json:"token_id"`
	CardBrand string `json:"card_brand"`
	LastFour  string `json:"last_four"`
}

// ReplaceToken tokenizes a new card and makes it the subscriber's primary.
// @Summary Replace a subscriber's payment card
// @Description Tokenizes the card at the gateway, stores the opaque token as the new primary, and points the subscriber's schedule at it. The next charge uses the new card.
// @Tags Tokens
// @Accept json
// @Produce json
// @Param id path int true "Subscriber ID"
// @Param request body ReplaceTokenRequest true "Card data"
// @Success 200 {object} utils.APIResponse{data=ReplaceTokenResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /admin/subscribers/{id}/token [post]
func (h *TokenHandler) ReplaceToken(c *gin.Context) {
	subscriberID, err := parseSubscriberID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReplaceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for replace token", "subscriber_id", subscriberID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid card data"))
		return
	}

	result, err := h.replaceTokenUC.Execute(c.Request.Context(), usecases.ReplaceTokenCommand{
		SubscriberID: subscriberID,
		CardNumber:   req.CardNumber,
		ExpMonth:     req.ExpMonth,
		ExpYear:      req.ExpYear,
		CVV:          req.CVV,
		ZIP:          req.ZIP,
	})
	if err != nil {
		h.logger.Errorw("token replacement failed", "subscriber_id", subscriberID, "error", err)
		utils.ErrorResponseWithError(c, mapBillingError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment card replaced successfully", ReplaceTokenResponse{
		TokenID:   result.TokenID,
		CardBrand: result.CardBrand,
		LastFour:  result.LastFour,
	})
}

func parseSubscriberID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return 0, errors.NewValidationError("Subscriber ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("Invalid subscriber ID")
	}

	return uint(id), nil
}
