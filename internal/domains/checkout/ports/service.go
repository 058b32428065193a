package ports

import (
	"context"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

// LineInput is a cart line as submitted. Price is what the client displayed.
type LineInput struct {
	ItemID   string `json:"itemId"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Note     string `json:"note,omitempty"`
}

// PlaceOrderCommand is the checkout payload after transport decoding.
type PlaceOrderCommand struct {
	IdempotencyKey  string                     `json:"idempotencyKey,omitempty"`
	CustomerID      string                     `json:"customerId,omitempty"`
	OrderType       string                     `json:"orderType"`
	Items           []LineInput                `json:"items"`
	PointsRequested int64                      `json:"pointsRequested"`
	PromoCode       string                     `json:"promoCode,omitempty"`
	PaymentMethod   string                     `json:"paymentMethod"`
	DeliveryAddress *fulfillmentdomain.Address `json:"deliveryAddress,omitempty"`
	TableNumber     int                        `json:"tableNumber,omitempty"`
	// Client-side figures; logged when they disagree, never trusted.
	ClientDeliveryFee int64 `json:"clientDeliveryFee,omitempty"`
	ClientTotal       int64 `json:"clientTotal,omitempty"`
	// DeferPayment skips the gateway call; durable workflows run it as a
	// separate retried step.
	DeferPayment bool `json:"deferPayment,omitempty"`
}

// PlaceOrderResult is returned for every created order, including online
// orders whose payment link could not be obtained.
type PlaceOrderResult struct {
	OrderID         string           `json:"orderId"`
	TransactionCode string           `json:"transactionCode"`
	Status          domain.Status    `json:"status"`
	Breakdown       domain.Breakdown `json:"breakdown"`
	PointsEarned    int64            `json:"pointsEarned"`
	PayURL          string           `json:"payUrl,omitempty"`
	PaymentError    string           `json:"paymentError,omitempty"`
	Replayed        bool             `json:"replayed,omitempty"`
}

// Service exposes checkout use cases to transports and workflows.
type Service interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error)
	InitiatePayment(ctx context.Context, orderID string) (*PaymentLink, error)
	GetOrder(ctx context.Context, rawOrderID string) (*domain.Aggregate, error)
}

// WorkflowOrchestrator runs order placement durably or inline.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error)
}
