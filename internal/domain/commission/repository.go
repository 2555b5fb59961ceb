package commission

import (
	"context"
	"errors"
)

// ErrNotFound means no commission matched the query. A missing commission is
// not fatal to billing; callers log and continue.
var ErrNotFound = errors.New("commission not found")

type Repository interface {
	Update(ctx context.Context, c *Commission) error
	// GetLatestUnpaidBySubscriber returns the subscriber's most recent
	// commission still awaiting collection, or ErrNotFound.
	GetLatestUnpaidBySubscriber(ctx context.Context, subscriberID uint) (*Commission, error)
	// GetByCollectedTransactionID supports the idempotency check: a gateway
	// transaction that already collected a commission must not collect twice.
	GetByCollectedTransactionID(ctx context.Context, transactionID string) (*Commission, error)
}
