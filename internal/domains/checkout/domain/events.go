package domain

import "time"

// Event is the base interface for checkout domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// OrderPlaced is raised once an order aggregate is committed.
type OrderPlaced struct {
	OrderID         string        `json:"orderId"`
	CustomerID      string        `json:"customerId,omitempty"`
	OrderType       string        `json:"orderType"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Status          Status        `json:"status"`
	TotalAmount     int64         `json:"totalAmount"`
	PointsRedeemed  int64         `json:"pointsRedeemed"`
	PointsEarned    int64         `json:"pointsEarned"`
	TransactionCode string        `json:"transactionCode"`
	Items           int           `json:"items"`
	Timestamp       time.Time     `json:"occurredAt"`
}

func (e OrderPlaced) EventName() string     { return "checkout.order.placed" }
func (e OrderPlaced) OccurredAt() time.Time { return e.Timestamp }
