package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid customer input")

type Service struct {
	sessions ports.SessionStore
	book     ports.AddressBook
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(sessions ports.SessionStore, book ports.AddressBook, opts ...Option) *Service {
	s := &Service{sessions: sessions, book: book, ttl: DefaultSessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession issues a fresh opaque token for customerID.
func (s *Service) StartSession(ctx context.Context, customerID string) (*domain.Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidCustomer)
	}
	session := domain.Session{
		Token:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		CustomerID: customerID,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Authenticate resolves token to a customer id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ports.ErrSessionNotFound
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if session.ExpiredAt(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return "", ports.ErrSessionNotFound
	}
	return session.CustomerID, nil
}

func (s *Service) EndSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, strings.TrimSpace(token))
}

// Addresses lists saved addresses, default address first.
func (s *Service) Addresses(ctx context.Context, customerID string) ([]domain.DeliveryAddress, error) {
	if strings.TrimSpace(customerID) == "" {
		return []domain.DeliveryAddress{}, nil
	}
	list, err := s.book.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].IsDefault && !list[j].IsDefault })
	return list, nil
}

func (s *Service) SaveAddress(ctx context.Context, address domain.DeliveryAddress) (*domain.DeliveryAddress, error) {
	if err := address.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if address.ID == "" {
		address.ID = ids.New()
	}
	return s.book.Save(ctx, address)
}

var _ ports.Service = (*Service)(nil)
