package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/vuhk2k6/web-order-sub000/internal/app/api"
	platformobservability "github.com/vuhk2k6/web-order-sub000/internal/platform/observability"
	checkoutactivities "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/vuhk2k6/web-order-sub000/internal/platform/temporal/workflows/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "order-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := api.Build(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to wire checkout service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()
	activities := checkoutactivities.NewActivities(stack.Checkout)

	// The worker always needs Temporal, whatever TEMPORAL_DISABLED says for the API.
	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: checkoutactivities.PlaceOrderActivityName})
	w.RegisterActivityWithOptions(activities.InitiatePayment, activity.RegisterOptions{Name: checkoutactivities.InitiatePaymentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.OrderPlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
