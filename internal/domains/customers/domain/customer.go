package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidToken    = errors.New("session token is required")
	ErrInvalidCustomer = errors.New("customer id is required")
	ErrInvalidAddress  = errors.New("address, ward and district are required")
)

// Session binds a bearer token or cookie to a signed-in customer.
type Session struct {
	Token      string
	CustomerID string
	ExpiresAt  time.Time
}

// ExpiredAt reports whether the session is no longer valid at now.
func (s Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// DeliveryAddress is a saved address from the customer's address book.
type DeliveryAddress struct {
	ID         string
	CustomerID string
	Address    string
	Ward       string
	District   string
	Street     string
	Phone      string
	IsDefault  bool
}

// Validate enforces the mandatory address parts.
func (a DeliveryAddress) Validate() error {
	if strings.TrimSpace(a.CustomerID) == "" {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(a.Address) == "" || strings.TrimSpace(a.Ward) == "" || strings.TrimSpace(a.District) == "" {
		return ErrInvalidAddress
	}
	return nil
}
