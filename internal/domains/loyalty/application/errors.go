package application

import (
	"errors"
	"fmt"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid loyalty input")
	// ErrContention is returned when optimistic retries are exhausted.
	ErrContention = errors.New("loyalty account is busy, retry later")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAccount) ||
		errors.Is(err, domain.ErrInvalidCustomer) ||
		errors.Is(err, domain.ErrInvalidPoints) ||
		errors.Is(err, domain.ErrInvalidDirection) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
