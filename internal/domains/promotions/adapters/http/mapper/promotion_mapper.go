package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

// PromotionValidation is the wizard's view of a promotion code.
type PromotionValidation struct {
	Valid          bool             `json:"valid"`
	Code           string           `json:"code,omitempty"`
	Name           string           `json:"name,omitempty"`
	Discount       int64            `json:"discount,omitempty"`
	DiscountType   string           `json:"discountType,omitempty"`
	Value          *decimal.Decimal `json:"value,omitempty"`
	MinOrderAmount int64            `json:"minOrderAmount,omitempty"`
	Message        string           `json:"message,omitempty"`
}

func FromQuote(quote ports.Quote) PromotionValidation {
	value := quote.Value
	return PromotionValidation{
		Valid:          true,
		Code:           quote.Code,
		Name:           quote.Name,
		Discount:       quote.Discount,
		DiscountType:   string(quote.DiscountType),
		Value:          &value,
		MinOrderAmount: quote.MinOrderAmount,
	}
}

// Rejected reports a business rejection; the HTTP status stays 200.
func Rejected(message string) PromotionValidation {
	return PromotionValidation{Valid: false, Message: message}
}
