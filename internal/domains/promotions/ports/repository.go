package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
)

var ErrNotFound = errors.New("promotion not found")

// Repository looks up promotions by normalized code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*domain.Promotion, error)
	Save(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error)
}
