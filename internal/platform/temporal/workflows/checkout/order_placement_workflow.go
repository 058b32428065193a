package checkout

import (
	"strings"

	"go.temporal.io/sdk/workflow"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/sequences"
)

const (
	// OrderPlacementWorkflowName is the public identifier for registering the workflow.
	OrderPlacementWorkflowName = "checkout.workflows.OrderPlacement"
	// OrderPlacementTaskQueue is the queue consumed by the checkout worker.
	OrderPlacementTaskQueue = "ORDER_PLACEMENT"
)

// OrderPlacementWorkflowInput captures the checkout submission.
type OrderPlacementWorkflowInput struct {
	Command ports.PlaceOrderCommand
	TraceID string
}

// OrderPlacementWorkflow places an order durably. Without a client key the
// workflow ID becomes the idempotency key so activity retries replay.
func OrderPlacementWorkflow(ctx workflow.Context, input OrderPlacementWorkflowInput) (*ports.PlaceOrderResult, error) {
	logger := workflow.GetLogger(ctx)
	cmd := input.Command
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		cmd.IdempotencyKey = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	logger.Info("OrderPlacementWorkflow started", withTraceID(input.TraceID, "orderType", cmd.OrderType)...)
	result, err := sequences.RunOrderPlacementSequence(ctx, cmd)
	if err != nil {
		logger.Error("OrderPlacementWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderPlacementWorkflow completed", withTraceID(input.TraceID, "orderId", result.OrderID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
