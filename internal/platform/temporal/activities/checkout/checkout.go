package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	checkoutapp "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/application"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentports "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	promotiondomain "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	promotionports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

const (
	// PlaceOrderActivityName commits the order aggregate without calling the wallet.
	PlaceOrderActivityName = "checkout.activities.PlaceOrder"
	// InitiatePaymentActivityName requests the online wallet payment link.
	InitiatePaymentActivityName = "checkout.activities.InitiatePayment"
)

// Activities groups activities that operate on the checkout bounded context.
type Activities struct {
	service ports.Service
}

func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder commits the order. The command must carry an idempotency key so
// a retried attempt replays the first commit.
func (a *Activities) PlaceOrder(ctx context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized")
		return nil, errors.New("place order activity not initialized")
	}
	cmd.DeferPayment = true
	logger.Info("PlaceOrder activity started", "orderType", cmd.OrderType, "items", len(cmd.Items))
	result, err := a.service.PlaceOrder(ctx, cmd)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "error", err)
		return nil, ClassifyError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", result.OrderID, "replayed", result.Replayed)
	return result, nil
}

// InitiatePayment asks the wallet for a pay URL. A recorded heartbeat marks
// a completed attempt so a retry after a lost response returns it again.
func (a *Activities) InitiatePayment(ctx context.Context, orderID string) (*ports.PaymentLink, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("initiate payment activity not initialized")
	}
	var hb paymentHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Link != nil {
		logger.Info("InitiatePayment already completed in prior attempt", "orderId", orderID)
		return hb.Link, nil
	}
	link, err := a.service.InitiatePayment(ctx, orderID)
	if err != nil {
		logger.Error("InitiatePayment activity failed", "orderId", orderID, "error", err)
		return nil, ClassifyError(err)
	}
	activity.RecordHeartbeat(ctx, paymentHeartbeat{Link: link})
	logger.Info("InitiatePayment activity completed", "orderId", orderID, "gateway", link.Gateway)
	return link, nil
}

type paymentHeartbeat struct {
	Link *ports.PaymentLink
}

// Error types carried across the Temporal boundary.
const (
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeInsufficientBalance = "InsufficientBalance"
	ErrTypePromotionExpired    = "PromotionExpired"
	ErrTypeMinimumNotMet       = "MinimumNotMet"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
	ErrTypeNotFound            = "NotFound"
	ErrTypePromotionNotFound   = "PromotionNotFound"
	ErrTypeTableNotFound       = "TableNotFound"
)

var errorTypes = []struct {
	name     string
	sentinel error
}{
	{ErrTypeInvalidInput, checkoutapp.ErrInvalidInput},
	{ErrTypeInsufficientBalance, loyaltydomain.ErrInsufficientBalance},
	{ErrTypePromotionExpired, promotiondomain.ErrExpired},
	{ErrTypeMinimumNotMet, promotiondomain.ErrMinimumNotMet},
	{ErrTypeIdempotencyConflict, ports.ErrIdempotencyConflict},
	{ErrTypeNotFound, ports.ErrNotFound},
	{ErrTypePromotionNotFound, promotionports.ErrNotFound},
	{ErrTypeTableNotFound, fulfillmentports.ErrTableNotFound},
}

// ClassifyError marks business failures non-retryable and tags them so
// RestoreError can rebuild the sentinel on the caller's side.
func ClassifyError(err error) error {
	for _, t := range errorTypes {
		if errors.Is(err, t.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), t.name, err)
		}
	}
	return err
}

// RestoreError maps a workflow failure back onto the checkout sentinels.
func RestoreError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, t := range errorTypes {
		if appErr.Type() == t.name {
			return fmt.Errorf("%w: %s", t.sentinel, appErr.Message())
		}
	}
	return err
}
