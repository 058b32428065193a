package application

import (
	"errors"
	"fmt"
	"strings"

	catalogapp "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/application"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	fulfillmentapp "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/application"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

var (
	// ErrInvalidInput signals the checkout payload is malformed or incomplete.
	ErrInvalidInput = errors.New("invalid checkout input")
	// ErrLoginRequired is returned when a guest asks to redeem points.
	ErrLoginRequired = errors.New("sign in to redeem loyalty points")
	// ErrGateway wraps online wallet failures.
	ErrGateway = errors.New("payment gateway error")
	// ErrNotOnlinePayment is returned when a payment link is requested for a
	// cash or bank transfer order.
	ErrNotOnlinePayment = errors.New("order is not paid with an online wallet")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, fulfillmentdomain.ErrInvalidMode) ||
		errors.Is(err, fulfillmentapp.ErrInvalidInput) ||
		errors.Is(err, catalogapp.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidPaymentMethod) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, ErrLoginRequired) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// SagaError reports a failed checkout whose compensations did not fully
// succeed. Residual lists the records that remain committed.
type SagaError struct {
	Step     string
	Cause    error
	Residual []string
}

func (e *SagaError) Error() string {
	msg := fmt.Sprintf("checkout failed at %s: %v", e.Step, e.Cause)
	if len(e.Residual) > 0 {
		msg += "; residual records: " + strings.Join(e.Residual, ", ")
	}
	return msg
}

func (e *SagaError) Unwrap() error { return e.Cause }
