package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/vuhk2k6/web-order-sub000/internal/app/api"
	platformobservability "github.com/vuhk2k6/web-order-sub000/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = api.IdempotencyDynamoDB
	}
	instruments, shutdown, err := platformobservability.Init(ctx, api.ServiceName)
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

	stack, err := api.Build(ctx, cfg, instruments)
	if err != nil {
		log.Fatalf("failed to wire ordering API: %v", err)
	}
	defer stack.Close()
	r := api.NewEngine(stack)

	// RUN_LOCAL=true serves plain HTTP for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		instruments.Logger.Info("running local server", slog.String("addr", cfg.Addr()))
		if err := r.Run(cfg.Addr()); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
