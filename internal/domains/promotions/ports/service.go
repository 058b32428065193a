package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
)

// Quote is the outcome of a successful promotion validation.
type Quote struct {
	PromotionID    string
	Code           string
	Name           string
	DiscountType   domain.DiscountType
	Value          decimal.Decimal
	MinOrderAmount int64
	Discount       int64
}

// Service exposes promotion validation to checkout and HTTP adapters.
type Service interface {
	Validate(ctx context.Context, code string, subtotal int64) (*Quote, error)
}
