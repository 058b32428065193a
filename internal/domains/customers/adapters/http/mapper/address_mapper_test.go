package mapper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
)

func TestAddressRoundTripTrimsPayload(t *testing.T) {
	payload := Address{Address: " 12 Ly Thuong Kiet ", Ward: "Ward 7 ", District: " District 10", IsDefault: true}

	stored := payload.ToDomain("65c000000000000000000001")
	require.Equal(t, domain.DeliveryAddress{
		CustomerID: "65c000000000000000000001",
		Address:    "12 Ly Thuong Kiet",
		Ward:       "Ward 7",
		District:   "District 10",
		IsDefault:  true,
	}, stored)

	stored.ID = "65d000000000000000000001"
	list := FromDomainList([]domain.DeliveryAddress{stored})
	require.Len(t, list.Addresses, 1)
	require.Equal(t, "65d000000000000000000001", list.Addresses[0].ID)
	require.NotNil(t, FromDomainList(nil).Addresses)
}
