package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	sharedConfig "planpay/internal/shared/config"
	"planpay/internal/shared/logger"
)

// Gateway route paths. The path is part of the signed payload.
const (
	routeSale    = "/sale"
	routeStorage = "/storage"
	routeVoid    = "/void"
	routeRefund  = "/refund"
)

const (
	headerEPIID        = "EPI-Id"
	headerEPISignature = "EPI-Signature"
)

// CustomPayClient talks to the card-network gateway over HTTP with signed
// requests. It implements Gateway.
type CustomPayClient struct {
	baseURL    string
	epiID      string
	signer     *Signer
	httpClient *http.Client
	logger     logger.Interface
}

var _ Gateway = (*CustomPayClient)(nil)

func NewCustomPayClient(cfg *sharedConfig.GatewayConfig, log logger.Interface) *CustomPayClient {
	return &CustomPayClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		epiID:   cfg.EPIID,
		signer:  NewSigner(cfg.HMACKey),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: log,
	}
}

// wire types

type saleRequestBody struct {
	BRIC                         string `json:"bric"`
	Amount                       string `json:"amount"`
	Currency                     string `json:"currency"`
	StoredCredentialIndicator    string `json:"stored_credential_indicator"`
	FirstRecurringPayment        bool   `json:"first_recurring_payment"`
	OriginalNetworkTransactionID string `json:"original_network_transaction_id"`
	IdempotencyKey               string `json:"idempotency_key"`
}

type saleResponseBody struct {
	Status               string `json:"status"`
	ResponseCode         string `json:"response_code"`
	Text                 string `json:"text"`
	TransactionID        string `json:"transaction_id"`
	NetworkTransactionID string `json:"network_transaction_id"`
}

type storageRequestBody struct {
	CardNumber string `json:"card_number"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	CVV        string `json:"cvv"`
	ZIP        string `json:"zip"`
}

type storageResponseBody struct {
	Status               string `json:"status"`
	ResponseCode         string `json:"response_code"`
	BRIC                 string `json:"bric"`
	CardBrand            string `json:"card_brand"`
	LastFour             string `json:"last_four"`
	NetworkTransactionID string `json:"network_transaction_id"`
}

type adminRequestBody struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount,omitempty"`
}

type adminResponseBody struct {
	Status       string `json:"status"`
	ResponseCode string `json:"response_code"`
	Text         string `json:"text"`
}

// Sale charges a stored token. Transient failures (timeout, network, 5xx)
// come back as Outcome error results; only authentication/configuration
// problems return a Go error, wrapping billing.ErrGatewayAuth so the sweep
// aborts instead of walking the retry ladder.
func (c *CustomPayClient) Sale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	body := saleRequestBody{
		BRIC:                         req.TokenRef,
		Amount:                       fmt.Sprintf("%.2f", req.Amount.AmountInDollars()),
		Currency:                     req.Amount.Currency(),
		StoredCredentialIndicator:    req.StoredCredentialIndicator,
		FirstRecurringPayment:        req.FirstRecurringPayment,
		OriginalNetworkTransactionID: req.OriginalNetworkTransactionID,
		IdempotencyKey:               req.IdempotencyKey,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sale request: %w", err)
	}

	respBytes, statusCode, err := c.post(ctx, routeSale, payload)
	if err != nil {
		// Transient transport problems feed the retry ladder as errors.
		return c.transientSaleResult(err, payload), nil
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		c.logger.Errorw("gateway rejected request authentication",
			"status_code", statusCode,
			"epi_id", c.epiID,
		)
		return nil, fmt.Errorf("%w: gateway returned HTTP %d", billing.ErrGatewayAuth, statusCode)
	}

	if statusCode >= http.StatusInternalServerError {
		return &SaleResult{
			Outcome:         vo.OutcomeError,
			ResponseCode:    ResponseCodeServer,
			Reason:          fmt.Sprintf("gateway returned HTTP %d", statusCode),
			RequestPayload:  payload,
			ResponsePayload: respBytes,
		}, nil
	}

	var parsed saleResponseBody
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return &SaleResult{
			Outcome:         vo.OutcomeError,
			ResponseCode:    ResponseCodeNetwork,
			Reason:          fmt.Sprintf("unparseable gateway response: %v", err),
			RequestPayload:  payload,
			ResponsePayload: respBytes,
		}, nil
	}

	result := &SaleResult{
		GatewayTransactionID: parsed.TransactionID,
		NetworkTransactionID: parsed.NetworkTransactionID,
		ResponseCode:         parsed.ResponseCode,
		Reason:               parsed.Text,
		RequestPayload:       payload,
		ResponsePayload:      respBytes,
	}

	switch strings.ToUpper(parsed.Status) {
	case "APPROVED":
		result.Outcome = vo.OutcomeSuccess
	case "DECLINED":
		result.Outcome = vo.OutcomeDeclined
	default:
		result.Outcome = vo.OutcomeError
	}

	return result, nil
}

// StoreToken tokenizes card data at enrollment time.
func (c *CustomPayClient) StoreToken(ctx context.Context, req StorageRequest) (*StorageResult, error) {
	payload, err := json.Marshal(storageRequestBody{
		CardNumber: req.CardNumber,
		ExpMonth:   req.ExpMonth,
		ExpYear:    req.ExpYear,
		CVV:        req.CVV,
		ZIP:        req.ZIP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal storage request: %w", err)
	}

	respBytes, statusCode, err := c.post(ctx, routeStorage, payload)
	if err != nil {
		return nil, fmt.Errorf("storage call failed: %w", err)
	}
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: gateway returned HTTP %d", billing.ErrGatewayAuth, statusCode)
	}
	if statusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("storage call returned HTTP %d", statusCode)
	}

	var parsed storageResponseBody
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("unparseable storage response: %w", err)
	}
	if !strings.EqualFold(parsed.Status, "APPROVED") {
		return nil, fmt.Errorf("tokenization declined: %s", parsed.ResponseCode)
	}

	return &StorageResult{
		TokenRef:             parsed.BRIC,
		CardBrand:            parsed.CardBrand,
		LastFour:             parsed.LastFour,
		NetworkTransactionID: parsed.NetworkTransactionID,
		ResponseCode:         parsed.ResponseCode,
	}, nil
}

// Void cancels a same-day transaction.
func (c *CustomPayClient) Void(ctx context.Context, req VoidRequest) (*AdminResult, error) {
	return c.admin(ctx, routeVoid, adminRequestBody{TransactionID: req.GatewayTransactionID})
}

// Refund returns settled funds.
func (c *CustomPayClient) Refund(ctx context.Context, req RefundRequest) (*AdminResult, error) {
	return c.admin(ctx, routeRefund, adminRequestBody{
		TransactionID: req.GatewayTransactionID,
		Amount:        fmt.Sprintf("%.2f", req.Amount.AmountInDollars()),
	})
}

func (c *CustomPayClient) admin(ctx context.Context, route string, body adminRequestBody) (*AdminResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", route, err)
	}

	respBytes, statusCode, err := c.post(ctx, route, payload)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", route, err)
	}
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: gateway returned HTTP %d", billing.ErrGatewayAuth, statusCode)
	}

	var parsed adminResponseBody
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("unparseable %s response: %w", route, err)
	}

	return &AdminResult{
		Approved:     strings.EqualFold(parsed.Status, "APPROVED"),
		ResponseCode: parsed.ResponseCode,
		Reason:       parsed.Text,
	}, nil
}

// post sends a signed request and returns the raw response body and status.
// The returned error covers transport-level failures only.
func (c *CustomPayClient) post(ctx context.Context, route string, payload []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(headerEPIID, c.epiID)
	httpReq.Header.Set(headerEPISignature, c.signer.Sign(route, payload))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBytes, resp.StatusCode, nil
}

func (c *CustomPayClient) transientSaleResult(err error, payload []byte) *SaleResult {
	code := ResponseCodeNetwork
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		code = ResponseCodeTimeout
	}

	c.logger.Warnw("gateway sale call failed, treating as retryable error",
		"error", err,
		"response_code", code,
	)

	return &SaleResult{
		Outcome:        vo.OutcomeError,
		ResponseCode:   code,
		Reason:         err.Error(),
		RequestPayload: payload,
	}
}
