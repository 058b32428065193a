package mapper

import (
	"strings"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
)

// Address is a saved delivery address as exchanged with the wizard.
type Address struct {
	ID        string `json:"id,omitempty"`
	Address   string `json:"address" validate:"required"`
	Ward      string `json:"ward" validate:"required"`
	District  string `json:"district" validate:"required"`
	Street    string `json:"street,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

type AddressList struct {
	Addresses []Address `json:"addresses"`
}

func FromDomain(a domain.DeliveryAddress) Address {
	return Address{
		ID:        a.ID,
		Address:   a.Address,
		Ward:      a.Ward,
		District:  a.District,
		Street:    a.Street,
		Phone:     a.Phone,
		IsDefault: a.IsDefault,
	}
}

func FromDomainList(list []domain.DeliveryAddress) AddressList {
	out := AddressList{Addresses: make([]Address, 0, len(list))}
	for _, a := range list {
		out.Addresses = append(out.Addresses, FromDomain(a))
	}
	return out
}

// ToDomain trims the payload and assigns it to customerID.
func (a Address) ToDomain(customerID string) domain.DeliveryAddress {
	return domain.DeliveryAddress{
		CustomerID: customerID,
		Address:    strings.TrimSpace(a.Address),
		Ward:       strings.TrimSpace(a.Ward),
		District:   strings.TrimSpace(a.District),
		Street:     strings.TrimSpace(a.Street),
		Phone:      strings.TrimSpace(a.Phone),
		IsDefault:  a.IsDefault,
	}
}
