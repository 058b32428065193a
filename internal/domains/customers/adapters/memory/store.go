package memory

import (
	"context"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
)

var (
	_ ports.SessionStore = (*SessionStore)(nil)
	_ ports.AddressBook  = (*AddressBook)(nil)
)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	v, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := v.(domain.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

// AddressBook keeps saved addresses per customer.
type AddressBook struct {
	mu        sync.RWMutex
	addresses map[string][]domain.DeliveryAddress
}

func NewAddressBook() *AddressBook {
	return &AddressBook{addresses: map[string][]domain.DeliveryAddress{}}
}

func (b *AddressBook) ListByCustomer(_ context.Context, customerID string) ([]domain.DeliveryAddress, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.DeliveryAddress, len(b.addresses[customerID]))
	copy(out, b.addresses[customerID])
	return out, nil
}

func (b *AddressBook) Save(_ context.Context, address domain.DeliveryAddress) (*domain.DeliveryAddress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.addresses[address.CustomerID]
	replaced := false
	for i := range list {
		if address.IsDefault {
			list[i].IsDefault = false
		}
		if list[i].ID == address.ID {
			list[i] = address
			replaced = true
		}
	}
	if !replaced {
		list = append(list, address)
	}
	b.addresses[address.CustomerID] = list
	out := address
	return &out, nil
}
