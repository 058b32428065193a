package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/vuhk2k6/web-order-sub000/internal/app/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := api.Run(ctx); err != nil {
		log.Fatalf("ordering API exited: %v", err)
	}
}
