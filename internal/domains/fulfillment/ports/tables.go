package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

var ErrTableNotFound = errors.New("table not found")

// TableRepository is the slice of table management used at checkout.
type TableRepository interface {
	FindByNumber(ctx context.Context, number int) (*domain.Table, error)
	Create(ctx context.Context, table *domain.Table) (*domain.Table, error)
	UpdateStatus(ctx context.Context, id string, status domain.TableStatus) error
	Delete(ctx context.Context, id string) error
}
