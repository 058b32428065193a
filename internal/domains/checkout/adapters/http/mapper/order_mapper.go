package mapper

import (
	"time"

	checkoutdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	checkoutports "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

// IdempotencyKeyHeader lets clients retry order submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderItem is one cart line in the checkout payload.
type OrderItem struct {
	ID       string `json:"id" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Size     string `json:"size,omitempty"`
	Note     string `json:"note,omitempty" validate:"max=255"`
}

// DeliveryAddress is the delivery destination entered at checkout.
type DeliveryAddress struct {
	Address  string `json:"address"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Street   string `json:"street,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Note     string `json:"note,omitempty"`
}

// PlaceOrder is the body of POST /api/orders. Price, deliveryFee and total
// are what the client displayed.
type PlaceOrder struct {
	OrderType       string           `json:"orderType" validate:"required"`
	Items           []OrderItem      `json:"items" validate:"required,min=1,dive"`
	PointsUsed      int64            `json:"pointsUsed" validate:"gte=0"`
	PromoCode       string           `json:"promoCode,omitempty" validate:"max=64"`
	DeliveryFee     int64            `json:"deliveryFee" validate:"gte=0"`
	Total           int64            `json:"total" validate:"gte=0"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	TableNumber     int              `json:"tableNumber,omitempty" validate:"gte=0"`
}

// ToCommand converts the payload into a checkout command.
func ToCommand(req PlaceOrder, customerID, idempotencyKey string) checkoutports.PlaceOrderCommand {
	cmd := checkoutports.PlaceOrderCommand{
		IdempotencyKey:    idempotencyKey,
		CustomerID:        customerID,
		OrderType:         req.OrderType,
		PointsRequested:   req.PointsUsed,
		PromoCode:         req.PromoCode,
		PaymentMethod:     req.PaymentMethod,
		TableNumber:       req.TableNumber,
		ClientDeliveryFee: req.DeliveryFee,
		ClientTotal:       req.Total,
	}
	for _, it := range req.Items {
		cmd.Items = append(cmd.Items, checkoutports.LineInput{
			ItemID:   it.ID,
			Price:    it.Price,
			Quantity: it.Quantity,
			Size:     it.Size,
			Note:     it.Note,
		})
	}
	if a := req.DeliveryAddress; a != nil {
		cmd.DeliveryAddress = &fulfillmentdomain.Address{
			Address:  a.Address,
			Ward:     a.Ward,
			District: a.District,
			Street:   a.Street,
			Phone:    a.Phone,
			Note:     a.Note,
		}
	}
	return cmd
}

// Breakdown mirrors the pricing breakdown.
type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`
	PointsDiscount int64 `json:"pointsDiscount"`
	PromoDiscount  int64 `json:"promoDiscount"`
	DeliveryFee    int64 `json:"deliveryFee"`
	Total          int64 `json:"total"`
}

func FromBreakdown(b checkoutdomain.Breakdown) Breakdown {
	return Breakdown{
		Subtotal:       b.Subtotal,
		PointsDiscount: b.PointsDiscount,
		PromoDiscount:  b.PromoDiscount,
		DeliveryFee:    b.DeliveryFee,
		Total:          b.Total,
	}
}

// PlacedOrder is the response of POST /api/orders.
type PlacedOrder struct {
	OrderID         string    `json:"orderId"`
	TransactionCode string    `json:"transactionCode"`
	Total           int64     `json:"total"`
	Status          string    `json:"status"`
	Breakdown       Breakdown `json:"breakdown"`
	PointsEarned    int64     `json:"pointsEarned"`
	PayURL          string    `json:"payUrl,omitempty"`
	PaymentError    string    `json:"paymentError,omitempty"`
}

func FromResult(res *checkoutports.PlaceOrderResult) PlacedOrder {
	if res == nil {
		return PlacedOrder{}
	}
	return PlacedOrder{
		OrderID:         res.OrderID,
		TransactionCode: res.TransactionCode,
		Total:           res.Breakdown.Total,
		Status:          string(res.Status),
		Breakdown:       FromBreakdown(res.Breakdown),
		PointsEarned:    res.PointsEarned,
		PayURL:          res.PayURL,
		PaymentError:    res.PaymentError,
	}
}

type Order struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId,omitempty"`
	OrderType         string    `json:"orderType"`
	Subtotal          int64     `json:"subtotal"`
	DeliveryFee       int64     `json:"deliveryFee"`
	PointsUsed        int64     `json:"pointsUsed"`
	PromotionID       string    `json:"promotionId,omitempty"`
	PromotionDiscount int64     `json:"promotionDiscount"`
	TotalAmount       int64     `json:"totalAmount"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

type OrderLine struct {
	MenuItemID       string `json:"menuItemId"`
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	PriceAtOrderTime int64  `json:"priceAtOrderTime"`
	Size             string `json:"size,omitempty"`
	Note             string `json:"note,omitempty"`
}

type Payment struct {
	Method          string     `json:"method"`
	Amount          int64      `json:"amount"`
	TransactionCode string     `json:"transactionCode"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
}

type DeliveryDetail struct {
	Address  string `json:"address"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Street   string `json:"street,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Note     string `json:"note,omitempty"`
}

type DineInDetail struct {
	TableNumber int       `json:"tableNumber"`
	CheckInTime time.Time `json:"checkInTime"`
}

// OrderDetail is the response of GET /api/orders/:orderId.
type OrderDetail struct {
	Order    Order           `json:"order"`
	Items    []OrderLine     `json:"items"`
	Payment  Payment         `json:"payment"`
	Delivery *DeliveryDetail `json:"delivery,omitempty"`
	DineIn   *DineInDetail   `json:"dineIn,omitempty"`
}

// FromAggregate converts a stored order aggregate to its transport shape.
func FromAggregate(agg *checkoutdomain.Aggregate) OrderDetail {
	if agg == nil {
		return OrderDetail{}
	}
	o := agg.Order
	out := OrderDetail{
		Order: Order{
			ID:                o.ID,
			CustomerID:        o.CustomerID,
			OrderType:         string(o.Type),
			Subtotal:          o.Subtotal,
			DeliveryFee:       o.DeliveryFee,
			PointsUsed:        o.PointsRedeemed,
			PromotionID:       o.PromotionID,
			PromotionDiscount: o.PromotionDiscount,
			TotalAmount:       o.TotalAmount,
			Status:            string(o.Status),
			CreatedAt:         o.CreatedAt,
		},
		Items: make([]OrderLine, 0, len(agg.Lines)),
		Payment: Payment{
			Method:          string(agg.Payment.Method),
			Amount:          agg.Payment.Amount,
			TransactionCode: agg.Payment.TransactionCode,
			Status:          string(agg.Payment.Status),
			PaidAt:          agg.Payment.PaidAt,
		},
	}
	for _, l := range agg.Lines {
		out.Items = append(out.Items, OrderLine{
			MenuItemID:       l.MenuItemID,
			Name:             l.Name,
			Quantity:         l.Quantity,
			PriceAtOrderTime: l.PriceAtOrderTime,
			Size:             l.Size,
			Note:             l.Note,
		})
	}
	if d := agg.Fulfillment.Delivery; d != nil {
		out.Delivery = &DeliveryDetail{
			Address:  d.Address,
			Ward:     d.Ward,
			District: d.District,
			Street:   d.Street,
			Phone:    d.Phone,
			Note:     d.Note,
		}
	}
	if d := agg.Fulfillment.DineIn; d != nil {
		out.DineIn = &DineInDetail{TableNumber: d.TableNumber, CheckInTime: d.CheckInTime}
	}
	return out
}

// CreatePayment is the body of POST /api/payments/:gateway/create.
type CreatePayment struct {
	OrderID    string `json:"orderId" validate:"required"`
	PointsUsed int64  `json:"pointsUsed" validate:"gte=0"`
}

type PaymentLink struct {
	Success bool   `json:"success"`
	PayURL  string `json:"payUrl"`
}
