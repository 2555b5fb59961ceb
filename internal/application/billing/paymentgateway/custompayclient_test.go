package paymentgateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpay/internal/domain/billing"
	vo "planpay/internal/domain/billing/valueobjects"
	sharedConfig "planpay/internal/shared/config"
	"planpay/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(baseURL string) *CustomPayClient {
	return NewCustomPayClient(&sharedConfig.GatewayConfig{
		BaseURL:        baseURL,
		EPIID:          "merchant-123",
		HMACKey:        "test-hmac-key",
		TimeoutSeconds: 2,
	}, testLogger())
}

func saleRequestFixture() SaleRequest {
	return SaleRequest{
		TokenRef:                  "bric-abc",
		Amount:                    vo.NewMoney(4900, "USD"),
		StoredCredentialIndicator: StoredCredentialRecurring,
		FirstRecurringPayment:     false,
		IdempotencyKey:            "sch-1:2026-09-01",
	}
}

func TestCustomPayClient_Sale(t *testing.T) {
	t.Run("approved sale", func(t *testing.T) {
		var gotEPIID, gotSignature string
		var gotBody []byte

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sale", r.URL.Path)
			gotEPIID = r.Header.Get("EPI-Id")
			gotSignature = r.Header.Get("EPI-Signature")
			gotBody, _ = io.ReadAll(r.Body)

			json.NewEncoder(w).Encode(saleResponseBody{
				Status:               "APPROVED",
				ResponseCode:         "00",
				Text:                 "APPROVAL",
				TransactionID:        "tx-1001",
				NetworkTransactionID: "ntx-1001",
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)

		assert.True(t, result.Outcome.IsSuccess())
		assert.Equal(t, "tx-1001", result.GatewayTransactionID)
		assert.Equal(t, "ntx-1001", result.NetworkTransactionID)
		assert.Equal(t, "00", result.ResponseCode)
		assert.NotEmpty(t, result.RequestPayload)
		assert.NotEmpty(t, result.ResponsePayload)

		assert.Equal(t, "merchant-123", gotEPIID)
		assert.True(t, NewSigner("test-hmac-key").Verify("/sale", gotBody, gotSignature),
			"signature must cover the route path and the exact request bytes")
	})

	t.Run("declined sale is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(saleResponseBody{
				Status:       "DECLINED",
				ResponseCode: "51",
				Text:         "INSUFF FUNDS",
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)

		assert.Equal(t, vo.OutcomeDeclined, result.Outcome)
		assert.Equal(t, "51", result.ResponseCode)
		assert.Equal(t, "INSUFF FUNDS", result.Reason)
		assert.Empty(t, result.GatewayTransactionID)
	})

	t.Run("401 surfaces as fatal auth error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, billing.ErrGatewayAuth)
	})

	t.Run("403 surfaces as fatal auth error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Sale(context.Background(), saleRequestFixture())
		assert.ErrorIs(t, err, billing.ErrGatewayAuth)
	})

	t.Run("5xx maps to transient error outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)

		assert.Equal(t, vo.OutcomeError, result.Outcome)
		assert.Equal(t, ResponseCodeServer, result.ResponseCode)
	})

	t.Run("timeout maps to transient error outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		client := NewCustomPayClient(&sharedConfig.GatewayConfig{
			BaseURL:        server.URL,
			EPIID:          "merchant-123",
			HMACKey:        "test-hmac-key",
			TimeoutSeconds: 1,
		}, testLogger())
		client.httpClient.Timeout = 50 * time.Millisecond

		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)

		assert.Equal(t, vo.OutcomeError, result.Outcome)
		assert.Equal(t, ResponseCodeTimeout, result.ResponseCode)
	})

	t.Run("connection refused maps to network error", func(t *testing.T) {
		// Port from a server that is already closed.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := newTestClient(url)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)

		assert.Equal(t, vo.OutcomeError, result.Outcome)
		assert.Equal(t, ResponseCodeNetwork, result.ResponseCode)
	})

	t.Run("unparseable body maps to transient error outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Sale(context.Background(), saleRequestFixture())
		require.NoError(t, err)
		assert.Equal(t, vo.OutcomeError, result.Outcome)
	})
}

func TestCustomPayClient_StoreToken(t *testing.T) {
	t.Run("approved tokenization", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/storage", r.URL.Path)
			json.NewEncoder(w).Encode(storageResponseBody{
				Status:               "APPROVED",
				ResponseCode:         "00",
				BRIC:                 "bric-new",
				CardBrand:            "VISA",
				LastFour:             "4242",
				NetworkTransactionID: "ntx-2001",
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.StoreToken(context.Background(), StorageRequest{
			CardNumber: "4242424242424242",
			ExpMonth:   12,
			ExpYear:    2030,
			CVV:        "123",
			ZIP:        "30301",
		})
		require.NoError(t, err)

		assert.Equal(t, "bric-new", result.TokenRef)
		assert.Equal(t, "VISA", result.CardBrand)
		assert.Equal(t, "4242", result.LastFour)
		assert.Equal(t, "ntx-2001", result.NetworkTransactionID)
	})

	t.Run("declined tokenization is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(storageResponseBody{Status: "DECLINED", ResponseCode: "05"})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.StoreToken(context.Background(), StorageRequest{CardNumber: "4000000000000002"})
		assert.Error(t, err)
	})
}

func TestCustomPayClient_VoidAndRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/void", "/refund":
			json.NewEncoder(w).Encode(adminResponseBody{Status: "APPROVED", ResponseCode: "00"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	voided, err := client.Void(context.Background(), VoidRequest{GatewayTransactionID: "tx-1001"})
	require.NoError(t, err)
	assert.True(t, voided.Approved)

	refunded, err := client.Refund(context.Background(), RefundRequest{
		GatewayTransactionID: "tx-1001",
		Amount:               vo.NewMoney(4900, "USD"),
	})
	require.NoError(t, err)
	assert.True(t, refunded.Approved)
}
