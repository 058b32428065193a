package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore abstracts session/token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// AddressBook stores customers' saved delivery addresses.
type AddressBook interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.DeliveryAddress, error)
	Save(ctx context.Context, address domain.DeliveryAddress) (*domain.DeliveryAddress, error)
}

// Service exposes authentication lookup and the address book.
type Service interface {
	StartSession(ctx context.Context, customerID string) (*domain.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	EndSession(ctx context.Context, token string) error
	Addresses(ctx context.Context, customerID string) ([]domain.DeliveryAddress, error)
	SaveAddress(ctx context.Context, address domain.DeliveryAddress) (*domain.DeliveryAddress, error)
}
