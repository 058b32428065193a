package domain

import (
	"errors"
	"strings"
	"time"

	fulfillment "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

// Status enumerates order progression at creation time.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPaymentPending Status = "PAYMENT_PENDING"
)

// PaymentMethod is how the customer settles the order.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentOnline       PaymentMethod = "ONLINE"
)

// PaymentStatus tracks settlement of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

var (
	ErrInvalidOrderID       = errors.New("order id is required")
	ErrInvalidPaymentMethod = errors.New("payment method must be CASH, BANK_TRANSFER or ONLINE")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrTotalMismatch        = errors.New("order total does not match its breakdown")
	ErrNegativeAmount       = errors.New("order amounts must not be negative")
	ErrDetailMismatch       = errors.New("fulfillment detail does not match order type")
	ErrMissingTransaction   = errors.New("payment transaction code is required")
)

// ParsePaymentMethod accepts the method name in any case.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentCash:
		return PaymentCash, nil
	case PaymentBankTransfer:
		return PaymentBankTransfer, nil
	case PaymentOnline:
		return PaymentOnline, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// InitialStatus is PAYMENT_PENDING for online wallets and PENDING otherwise.
func InitialStatus(method PaymentMethod) Status {
	if method == PaymentOnline {
		return StatusPaymentPending
	}
	return StatusPending
}

// Order is the root of the order aggregate.
type Order struct {
	ID                string
	CustomerID        string
	Type              fulfillment.Mode
	Subtotal          int64
	DeliveryFee       int64
	PointsRedeemed    int64
	PromotionID       string
	PromotionDiscount int64
	TotalAmount       int64
	Status            Status
	CreatedAt         time.Time
}

// NewOrder builds an order from an authoritative breakdown.
func NewOrder(id, customerID string, mode fulfillment.Mode, b Breakdown, promotionID string, method PaymentMethod, now time.Time) (*Order, error) {
	o := &Order{
		ID:                id,
		CustomerID:        customerID,
		Type:              mode,
		Subtotal:          b.Subtotal,
		DeliveryFee:       b.DeliveryFee,
		PointsRedeemed:    b.PointsDiscount,
		PromotionID:       promotionID,
		PromotionDiscount: b.PromoDiscount,
		TotalAmount:       b.Total,
		Status:            InitialStatus(method),
		CreatedAt:         now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Breakdown reconstructs the pricing breakdown stored on the order.
func (o *Order) Breakdown() Breakdown {
	return Breakdown{
		Subtotal:       o.Subtotal,
		PointsDiscount: o.PointsRedeemed,
		PromoDiscount:  o.PromotionDiscount,
		DeliveryFee:    o.DeliveryFee,
		Total:          o.TotalAmount,
	}
}

// Validate enforces the order invariants, including the total formula.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrInvalidOrderID
	}
	if _, err := fulfillment.ParseMode(string(o.Type)); err != nil {
		return err
	}
	if o.Subtotal < 0 || o.DeliveryFee < 0 || o.PointsRedeemed < 0 || o.PromotionDiscount < 0 || o.TotalAmount < 0 {
		return ErrNegativeAmount
	}
	switch o.Status {
	case StatusPending, StatusPaymentPending:
	default:
		return ErrInvalidStatus
	}
	expected := max(0, o.Subtotal-o.PointsRedeemed-o.PromotionDiscount+o.DeliveryFee)
	if o.TotalAmount != expected || o.PointsRedeemed > o.Subtotal {
		return ErrTotalMismatch
	}
	return nil
}

// OrderLine snapshots a cart line at order time.
type OrderLine struct {
	OrderID          string
	MenuItemID       string
	Name             string
	Quantity         int
	PriceAtOrderTime int64
	Size             string
	Note             string
}

// Payment is the single payment record created with the order.
type Payment struct {
	OrderID         string
	Method          PaymentMethod
	Amount          int64
	TransactionCode string
	Status          PaymentStatus
	PaidAt          *time.Time
}

// Validate enforces invariants on a payment.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.OrderID) == "" {
		return ErrInvalidOrderID
	}
	if _, err := ParsePaymentMethod(string(p.Method)); err != nil {
		return err
	}
	if p.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(p.TransactionCode) == "" {
		return ErrMissingTransaction
	}
	return nil
}

// Aggregate is the unit written atomically at checkout.
type Aggregate struct {
	Order       Order
	Lines       []OrderLine
	Fulfillment fulfillment.Detail
	Payment     Payment
}

// Validate checks the aggregate as a whole.
func (a Aggregate) Validate() error {
	if err := a.Order.Validate(); err != nil {
		return err
	}
	if len(a.Lines) == 0 {
		return ErrEmptyCart
	}
	if a.Fulfillment.Mode != a.Order.Type {
		return ErrDetailMismatch
	}
	if err := a.Fulfillment.Validate(); err != nil {
		return ErrDetailMismatch
	}
	return a.Payment.Validate()
}
