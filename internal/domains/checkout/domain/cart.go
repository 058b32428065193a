package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidItem     = errors.New("cart line item id is required")
	ErrInvalidPrice    = errors.New("cart line price must not be negative")
	ErrInvalidQuantity = errors.New("cart line quantity must be at least one")
)

// CartLine is one entry of the customer's cart.
type CartLine struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Note      string `json:"note,omitempty"`
}

func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l CartLine) Validate() error {
	if strings.TrimSpace(l.ItemID) == "" {
		return ErrInvalidItem
	}
	if l.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// ValidateCart checks every line of a non-empty cart.
func ValidateCart(lines []CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}
