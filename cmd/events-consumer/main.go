// Command events-consumer drains the account events queue and writes one
// structured log line per event.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/logger"
	"github.com/iliyamo/ecomm-delivery-backend/internal/queue"
)

func main() {
	_ = godotenv.Load()

	zl, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadRabbitMQConfig()
	zl.Info("consuming account events", zap.String("queue", cfg.Queue))

	err = queue.Consume(ctx, cfg, func(_ context.Context, ev queue.AccountEvent) error {
		zl.Info("account event",
			zap.String("event_id", ev.ID),
			zap.String("type", ev.Type),
			zap.String("actor", string(ev.Actor)),
			zap.Uint64("actor_id", ev.ActorID),
			zap.String("email", ev.Email),
			zap.String("detail", ev.Detail),
			zap.Time("occurred_at", ev.OccurredAt))
		return nil
	}, zl)
	if err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("consumer stopped", zap.Error(err))
	}
}
