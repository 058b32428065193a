package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/memory"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
)

func TestSessionLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := NewService(memory.NewSessionStore(), memory.NewAddressBook(), WithSessionTTL(time.Hour), WithClock(clock))
	ctx := context.Background()

	session, err := svc.StartSession(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, session.Token, 32)

	customerID, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, "cust-1", customerID)

	now = now.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestAddressesDefaultFirst(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), memory.NewAddressBook())
	ctx := context.Background()

	_, err := svc.SaveAddress(ctx, domain.DeliveryAddress{CustomerID: "cust-1", Address: "1 Hai Ba Trung", Ward: "Da Kao", District: "1"})
	require.NoError(t, err)
	home, err := svc.SaveAddress(ctx, domain.DeliveryAddress{CustomerID: "cust-1", Address: "9 Vo Van Tan", Ward: "6", District: "3", IsDefault: true})
	require.NoError(t, err)

	list, err := svc.Addresses(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, home.ID, list[0].ID)

	_, err = svc.SaveAddress(ctx, domain.DeliveryAddress{CustomerID: "cust-1", Address: "x"})
	require.ErrorIs(t, err, ErrInvalidInput)

	empty, err := svc.Addresses(ctx, "")
	require.NoError(t, err)
	require.Empty(t, empty)
}
