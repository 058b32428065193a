package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	checkoutdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	checkoutactivities "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/activities/checkout"
)

// RunOrderPlacementSequence commits the order, then for online payments asks
// the wallet for a pay URL under its own retry policy. A replayed commit still
// gets a link, since the earlier attempt may have stopped before asking. A wallet that keeps
// failing leaves the order PAYMENT_PENDING with the error on the result.
func RunOrderPlacementSequence(ctx workflow.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	logger := workflow.GetLogger(ctx)
	placeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	paymentOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    20 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				checkoutactivities.ErrTypeInvalidInput,
				checkoutactivities.ErrTypeNotFound,
			},
		},
	}

	var result ports.PlaceOrderResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, placeOptions), checkoutactivities.PlaceOrderActivityName, cmd).Get(ctx, &result)
	if err != nil {
		logger.Error("order placement sequence failed", "error", err)
		return nil, err
	}
	logger.Info("order placement sequence committed", "orderId", result.OrderID)

	if result.Status != checkoutdomain.StatusPaymentPending {
		return &result, nil
	}
	var link ports.PaymentLink
	err = workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, paymentOptions), checkoutactivities.InitiatePaymentActivityName, result.OrderID).Get(ctx, &link)
	if err != nil {
		logger.Warn("order placement sequence payment link failed", "orderId", result.OrderID, "error", err)
		result.PaymentError = err.Error()
		return &result, nil
	}
	result.PayURL = link.PayURL
	logger.Info("order placement sequence payment link created", "orderId", result.OrderID)
	return &result, nil
}
