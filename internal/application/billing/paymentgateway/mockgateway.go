package paymentgateway

import (
	"context"
	"fmt"
	"sync"

	vo "planpay/internal/domain/billing/valueobjects"
)

// MockGateway is a scriptable Gateway for tests and local development.
// Results are consumed in FIFO order per call; when the script runs dry every
// sale approves.
type MockGateway struct {
	mu sync.Mutex

	saleResults []saleScript
	saleErr     error

	// SaleCalls records every request for assertions.
	SaleCalls []SaleRequest

	txCounter int
}

type saleScript struct {
	outcome      vo.AttemptOutcome
	responseCode string
	reason       string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// QueueDecline scripts the next sale to decline with the given code.
func (m *MockGateway) QueueDecline(responseCode, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleResults = append(m.saleResults, saleScript{vo.OutcomeDeclined, responseCode, reason})
}

// QueueError scripts the next sale to fail transiently.
func (m *MockGateway) QueueError(responseCode, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleResults = append(m.saleResults, saleScript{vo.OutcomeError, responseCode, reason})
}

// QueueApproval scripts the next sale to approve.
func (m *MockGateway) QueueApproval() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleResults = append(m.saleResults, saleScript{vo.OutcomeSuccess, "00", "APPROVAL"})
}

// FailAuth makes every subsequent sale return err (typically wrapping
// billing.ErrGatewayAuth).
func (m *MockGateway) FailAuth(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleErr = err
}

func (m *MockGateway) Sale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaleCalls = append(m.SaleCalls, req)

	if m.saleErr != nil {
		return nil, m.saleErr
	}

	script := saleScript{vo.OutcomeSuccess, "00", "APPROVAL"}
	if len(m.saleResults) > 0 {
		script = m.saleResults[0]
		m.saleResults = m.saleResults[1:]
	}

	result := &SaleResult{
		Outcome:      script.outcome,
		ResponseCode: script.responseCode,
		Reason:       script.reason,
	}

	if script.outcome.IsSuccess() {
		m.txCounter++
		result.GatewayTransactionID = fmt.Sprintf("mock-tx-%06d", m.txCounter)
		result.NetworkTransactionID = fmt.Sprintf("mock-ntx-%06d", m.txCounter)
	}

	return result, nil
}

func (m *MockGateway) StoreToken(ctx context.Context, req StorageRequest) (*StorageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txCounter++
	last4 := req.CardNumber
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	return &StorageResult{
		TokenRef:             fmt.Sprintf("mock-bric-%06d", m.txCounter),
		CardBrand:            "VISA",
		LastFour:             last4,
		NetworkTransactionID: fmt.Sprintf("mock-ntx-%06d", m.txCounter),
		ResponseCode:         "00",
	}, nil
}

func (m *MockGateway) Void(ctx context.Context, req VoidRequest) (*AdminResult, error) {
	return &AdminResult{Approved: true, ResponseCode: "00"}, nil
}

func (m *MockGateway) Refund(ctx context.Context, req RefundRequest) (*AdminResult, error) {
	return &AdminResult{Approved: true, ResponseCode: "00"}, nil
}

var _ Gateway = (*MockGateway)(nil)
