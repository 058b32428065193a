package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/ports"
)

// ErrInvalidInput signals a cart line the catalog cannot honour.
var ErrInvalidInput = errors.New("invalid cart line")

// LineRequest is a cart line as submitted by the client.
type LineRequest struct {
	ItemID      string
	Quantity    int
	Size        string
	Note        string
	ClientPrice int64
}

// PricedLine carries the authoritative unit price for a cart line.
type PricedLine struct {
	ItemID      string
	Name        string
	UnitPrice   int64
	Quantity    int
	Size        string
	Note        string
	ClientPrice int64
}

// Stale reports whether the client displayed a different price.
func (l PricedLine) Stale() bool { return l.ClientPrice != l.UnitPrice }

// Repricer resolves cart lines against the catalog so client prices are
// never trusted.
type Repricer struct {
	repo ports.Repository
}

func NewRepricer(repo ports.Repository) *Repricer {
	return &Repricer{repo: repo}
}

func (r *Repricer) Reprice(ctx context.Context, lines []LineRequest) ([]PricedLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	priced := make([]PricedLine, 0, len(lines))
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidInput, i, domain.ErrInvalidQuantity)
		}
		item, err := r.repo.Get(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidInput, i, err)
			}
			return nil, err
		}
		if !item.Available {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, item.Name, domain.ErrItemUnavailable)
		}
		if !item.Offers(line.Size) {
			return nil, fmt.Errorf("%w: %s size %q: %w", ErrInvalidInput, item.Name, line.Size, domain.ErrInvalidSize)
		}
		priced = append(priced, PricedLine{
			ItemID:      item.ID,
			Name:        item.Name,
			UnitPrice:   item.Price,
			Quantity:    line.Quantity,
			Size:        strings.TrimSpace(line.Size),
			Note:        strings.TrimSpace(line.Note),
			ClientPrice: line.ClientPrice,
		})
	}
	return priced, nil
}
