// Package paymentgateway is the port to the external card-network gateway.
// The engine's sole outbound call is Sale against a stored token; Storage,
// Void and Refund ride the same signed transport for the enrollment flow and
// admin tooling.
package paymentgateway

import (
	"context"
	"time"

	vo "planpay/internal/domain/billing/valueobjects"
)

// StoredCredentialRecurring is the card-on-file indicator for
// merchant-initiated recurring charges.
const StoredCredentialRecurring = "RECURRING"

// SaleRequest charges a previously stored token.
type SaleRequest struct {
	TokenRef string
	Amount   vo.Money

	// Card-network stored-credential compliance fields.
	StoredCredentialIndicator    string
	FirstRecurringPayment        bool
	OriginalNetworkTransactionID string

	// IdempotencyKey is stable per (schedule, due date) so a crash between
	// the gateway call and the audit write cannot double-charge.
	IdempotencyKey string
}

// SaleResult is the normalized gateway response.
type SaleResult struct {
	Outcome              vo.AttemptOutcome
	GatewayTransactionID string
	NetworkTransactionID string
	ResponseCode         string
	Reason               string

	// RequestPayload and ResponsePayload are the exact wire bytes, retained
	// for the audit log.
	RequestPayload  []byte
	ResponsePayload []byte
}

// StorageRequest tokenizes card data. Consumed by the enrollment flow, not by
// the sweep.
type StorageRequest struct {
	CardNumber string
	ExpMonth   int
	ExpYear    int
	CVV        string
	ZIP        string
}

// StorageResult carries the issued token and the network transaction id that
// all later recurring charges must reference.
type StorageResult struct {
	TokenRef             string
	CardBrand            string
	LastFour             string
	NetworkTransactionID string
	ResponseCode         string
}

// VoidRequest cancels a same-day transaction; RefundRequest returns settled
// funds. Both are administrative.
type VoidRequest struct {
	GatewayTransactionID string
}

type RefundRequest struct {
	GatewayTransactionID string
	Amount               vo.Money
}

type AdminResult struct {
	Approved     bool
	ResponseCode string
	Reason       string
}

// Gateway is the outbound port. Sale returns an error only for fatal
// conditions (authentication/configuration, request construction); network
// trouble and declines come back as a SaleResult so the retry policy can
// treat them uniformly.
type Gateway interface {
	Sale(ctx context.Context, req SaleRequest) (*SaleResult, error)
	StoreToken(ctx context.Context, req StorageRequest) (*StorageResult, error)
	Void(ctx context.Context, req VoidRequest) (*AdminResult, error)
	Refund(ctx context.Context, req RefundRequest) (*AdminResult, error)
}

// Timeout codes surfaced in SaleResult.ResponseCode for transient failures.
const (
	ResponseCodeTimeout = "TIMEOUT"
	ResponseCodeNetwork = "NETWORK_ERROR"
	ResponseCodeServer  = "GATEWAY_5XX"
)

// DefaultTimeout bounds a single gateway call when config does not say otherwise.
const DefaultTimeout = 30 * time.Second
