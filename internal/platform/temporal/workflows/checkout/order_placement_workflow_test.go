package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	checkoutapp "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/application"
	checkoutdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentports "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	promotionports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
	checkoutactivities "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/activities/checkout"
)

type fakeCheckout struct {
	placeErr     error
	paymentErr   error
	status       checkoutdomain.Status
	replayed     bool
	placed       []ports.PlaceOrderCommand
	paymentCalls int
}

func (f *fakeCheckout) PlaceOrder(_ context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	f.placed = append(f.placed, cmd)
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &ports.PlaceOrderResult{OrderID: "65a1b2c3d4e5f6a7b8c9d0e1", TransactionCode: "TX1", Status: f.status, Replayed: f.replayed}, nil
}

func (f *fakeCheckout) InitiatePayment(_ context.Context, orderID string) (*ports.PaymentLink, error) {
	f.paymentCalls++
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &ports.PaymentLink{Gateway: "momo", PayURL: "https://wallet.test/" + orderID}, nil
}

func (f *fakeCheckout) GetOrder(context.Context, string) (*checkoutdomain.Aggregate, error) {
	return nil, ports.ErrNotFound
}

func newEnv(t *testing.T, svc *fakeCheckout) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := checkoutactivities.NewActivities(svc)
	env.RegisterActivityWithOptions(acts.PlaceOrder, activity.RegisterOptions{Name: checkoutactivities.PlaceOrderActivityName})
	env.RegisterActivityWithOptions(acts.InitiatePayment, activity.RegisterOptions{Name: checkoutactivities.InitiatePaymentActivityName})
	return env
}

func TestOrderPlacementWorkflow_OnlineOrderGetsPayURL(t *testing.T) {
	svc := &fakeCheckout{status: checkoutdomain.StatusPaymentPending}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{OrderType: "TAKEAWAY", PaymentMethod: "ONLINE"}})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result ports.PlaceOrderResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "https://wallet.test/65a1b2c3d4e5f6a7b8c9d0e1", result.PayURL)
	require.Len(t, svc.placed, 1)
	require.True(t, svc.placed[0].DeferPayment)
	require.NotEmpty(t, svc.placed[0].IdempotencyKey)
}

func TestOrderPlacementWorkflow_ReplayedOnlineOrderStillGetsPayURL(t *testing.T) {
	svc := &fakeCheckout{status: checkoutdomain.StatusPaymentPending, replayed: true}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{IdempotencyKey: "k2", OrderType: "TAKEAWAY", PaymentMethod: "ONLINE"}})

	require.NoError(t, env.GetWorkflowError())
	var result ports.PlaceOrderResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.True(t, result.Replayed)
	require.Equal(t, "https://wallet.test/65a1b2c3d4e5f6a7b8c9d0e1", result.PayURL)
	require.Equal(t, 1, svc.paymentCalls)
}

func TestOrderPlacementWorkflow_CashOrderSkipsWallet(t *testing.T) {
	svc := &fakeCheckout{status: checkoutdomain.StatusPending}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{IdempotencyKey: "k1", OrderType: "TAKEAWAY", PaymentMethod: "CASH"}})

	require.NoError(t, env.GetWorkflowError())
	require.Zero(t, svc.paymentCalls)
	require.Equal(t, "k1", svc.placed[0].IdempotencyKey)
}

func TestOrderPlacementWorkflow_WalletFailureKeepsOrder(t *testing.T) {
	svc := &fakeCheckout{status: checkoutdomain.StatusPaymentPending, paymentErr: fmt.Errorf("%w: timeout", checkoutapp.ErrGateway)}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{OrderType: "TAKEAWAY", PaymentMethod: "ONLINE"}})

	require.NoError(t, env.GetWorkflowError())
	var result ports.PlaceOrderResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "65a1b2c3d4e5f6a7b8c9d0e1", result.OrderID)
	require.Empty(t, result.PayURL)
	require.NotEmpty(t, result.PaymentError)
	require.Equal(t, 3, svc.paymentCalls)
}

func TestOrderPlacementWorkflow_ValidationErrorIsNotRetried(t *testing.T) {
	svc := &fakeCheckout{placeErr: fmt.Errorf("%w: table number is required", checkoutapp.ErrInvalidInput)}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{OrderType: "DINE_IN", PaymentMethod: "CASH"}})

	err := env.GetWorkflowError()
	require.Error(t, err)
	require.Len(t, svc.placed, 1)
	require.True(t, errors.Is(checkoutactivities.RestoreError(err), checkoutapp.ErrInvalidInput))
}

func TestOrderPlacementWorkflow_MissingLookupsAreNotRetried(t *testing.T) {
	cases := map[string]error{
		"promotion": fmt.Errorf("promotion %q: %w", "NOPE", promotionports.ErrNotFound),
		"table":     fmt.Errorf("table %d: %w", 12, fulfillmentports.ErrTableNotFound),
	}
	for name, placeErr := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeCheckout{placeErr: placeErr}
			env := newEnv(t, svc)

			env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{Command: ports.PlaceOrderCommand{OrderType: "DINE_IN", PaymentMethod: "CASH"}})

			err := env.GetWorkflowError()
			require.Error(t, err)
			require.Len(t, svc.placed, 1)
			require.ErrorIs(t, checkoutactivities.RestoreError(err), errors.Unwrap(placeErr))
		})
	}
}
