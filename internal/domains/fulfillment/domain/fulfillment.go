package domain

import (
	"errors"
	"strings"
	"time"
)

// Mode is how an order reaches the customer.
type Mode string

const (
	ModeDelivery Mode = "DELIVERY"
	ModeDineIn   Mode = "DINE_IN"
	ModeTakeaway Mode = "TAKEAWAY"
)

var (
	ErrInvalidMode      = errors.New("order type must be DELIVERY, DINE_IN or TAKEAWAY")
	ErrAddressRequired  = errors.New("delivery address, ward and district are required")
	ErrTableRequired    = errors.New("table number is required for dine-in orders")
	ErrUnexpectedDetail = errors.New("fulfillment detail does not match order type")
)

// ParseMode accepts the mode name in any case.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeDelivery:
		return ModeDelivery, nil
	case ModeDineIn:
		return ModeDineIn, nil
	case ModeTakeaway:
		return ModeTakeaway, nil
	default:
		return "", ErrInvalidMode
	}
}

// Address is a delivery destination as entered or picked from the address book.
type Address struct {
	Address  string
	Ward     string
	District string
	Street   string
	Phone    string
	Note     string
}

// Complete reports whether the mandatory address parts are present.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Address) != "" &&
		strings.TrimSpace(a.Ward) != "" &&
		strings.TrimSpace(a.District) != ""
}

// Request is the fulfillment part of a checkout payload.
type Request struct {
	Mode        Mode
	Delivery    *Address
	TableNumber int
}

// Validate checks the request carries what its mode needs.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeDelivery:
		if r.Delivery == nil || !r.Delivery.Complete() {
			return ErrAddressRequired
		}
	case ModeDineIn:
		if r.TableNumber <= 0 {
			return ErrTableRequired
		}
	case ModeTakeaway:
	default:
		return ErrInvalidMode
	}
	return nil
}

// DeliveryDetail is persisted for DELIVERY orders.
type DeliveryDetail struct {
	OrderID  string
	Address  string
	Ward     string
	District string
	Street   string
	Phone    string
	Note     string
}

// DineInDetail is persisted for DINE_IN orders.
type DineInDetail struct {
	OrderID     string
	TableID     string
	TableNumber int
	CheckInTime time.Time
}

// Detail is a tagged union: exactly one pointer is set for DELIVERY and
// DINE_IN, none for TAKEAWAY.
type Detail struct {
	Mode     Mode
	Delivery *DeliveryDetail
	DineIn   *DineInDetail
}

// Validate enforces the one-detail-per-mode rule.
func (d Detail) Validate() error {
	switch d.Mode {
	case ModeDelivery:
		if d.Delivery == nil || d.DineIn != nil {
			return ErrUnexpectedDetail
		}
	case ModeDineIn:
		if d.DineIn == nil || d.Delivery != nil {
			return ErrUnexpectedDetail
		}
	case ModeTakeaway:
		if d.Delivery != nil || d.DineIn != nil {
			return ErrUnexpectedDetail
		}
	default:
		return ErrInvalidMode
	}
	return nil
}
