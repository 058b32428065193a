package application

import (
	"errors"
	"fmt"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid promotion input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidCode) ||
		errors.Is(err, domain.ErrInvalidSubtotal) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
