package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidItemID   = errors.New("menu item id is required")
	ErrInvalidPrice    = errors.New("menu item price must not be negative")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrInvalidSize     = errors.New("menu item size is not offered")
	ErrInvalidQuantity = errors.New("quantity must be at least one")
)

// MenuItem is a catalog entry. Price is the current unit price in VND.
type MenuItem struct {
	ID        string
	Name      string
	Price     int64
	Sizes     []string
	Available bool
}

func NewMenuItem(id, name string, price int64, sizes []string, available bool) (*MenuItem, error) {
	item := &MenuItem{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Sizes:     append([]string(nil), sizes...),
		Available: available,
	}
	if item.ID == "" {
		return nil, ErrInvalidItemID
	}
	if item.Price < 0 {
		return nil, ErrInvalidPrice
	}
	return item, nil
}

// Offers reports whether size may be ordered. Items without sizes accept
// only the empty size.
func (m *MenuItem) Offers(size string) bool {
	size = strings.TrimSpace(size)
	if size == "" {
		return true
	}
	for _, s := range m.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}
