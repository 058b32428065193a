package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	checkoutactivities "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalCheckoutWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineCheckoutWorkflows)(nil)
)

// TemporalCheckoutWorkflows starts order placement on a Temporal cluster.
type TemporalCheckoutWorkflows struct {
	client    client.Client
	taskQueue string
}

func NewTemporalCheckoutWorkflows(c client.Client) *TemporalCheckoutWorkflows {
	return &TemporalCheckoutWorkflows{client: c, taskQueue: checkoutworkflows.OrderPlacementTaskQueue}
}

// PlaceOrder runs the placement workflow and waits for its result. A
// resubmitted idempotency key attaches to the workflow already running.
func (o *TemporalCheckoutWorkflows) PlaceOrder(ctx context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildWorkflowID(cmd, traceComponent)
	run, err := o.client.ExecuteWorkflow(
		ctx,
		client.StartWorkflowOptions{ID: workflowID, TaskQueue: o.taskQueue},
		checkoutworkflows.OrderPlacementWorkflowName,
		checkoutworkflows.OrderPlacementWorkflowInput{Command: cmd, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(cmd.IdempotencyKey) == "" {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.PlaceOrderResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, checkoutactivities.RestoreError(err)
	}
	return &result, nil
}

// InlineCheckoutWorkflows calls the service directly, for development and
// tests without a Temporal cluster.
type InlineCheckoutWorkflows struct {
	service ports.Service
}

func NewInlineCheckoutWorkflows(service ports.Service) *InlineCheckoutWorkflows {
	return &InlineCheckoutWorkflows{service: service}
}

func (o *InlineCheckoutWorkflows) PlaceOrder(ctx context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.service.PlaceOrder(ctx, cmd)
}

func buildWorkflowID(cmd ports.PlaceOrderCommand, traceComponent string) string {
	if key := strings.TrimSpace(cmd.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("order-placement-%s", traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if span := oteltrace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() && sc.TraceID().IsValid() {
			return sc.TraceID().String()
		}
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
