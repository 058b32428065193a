package ports

import (
	"context"
	"errors"
	"time"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
)

// PaymentRequest asks an online wallet to start a payment.
type PaymentRequest struct {
	OrderID         string
	TransactionCode string
	Amount          int64
	Description     string
}

// PaymentLink is where the customer completes an online payment.
type PaymentLink struct {
	Gateway string `json:"gateway"`
	PayURL  string `json:"payUrl"`
}

// PaymentGateway is the online-wallet collaborator.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentLink, error)
}

// EventPublisher announces committed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
}

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrIdempotencyInProgress indicates the first request for a key has not finished.
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
)

// IdempotencyRecord ties a client-supplied key to the order it produced.
type IdempotencyRecord struct {
	Key         string    `json:"key"`
	RequestHash string    `json:"requestHash"`
	OrderID     string    `json:"orderId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IdempotencyStore persists idempotency keys so retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save stores record unless the key exists. When it exists with another
	// hash, ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// Delete releases a key whose request failed.
	Delete(ctx context.Context, key string) error
}
