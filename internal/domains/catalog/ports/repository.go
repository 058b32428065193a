package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("menu item not found")

// Repository is the read side of the menu catalog.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
	Save(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error)
}
