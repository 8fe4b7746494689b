package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	kafkaGo "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/config"
	"github.com/mkuznecov/ticketgate/internal/kafka"
	"github.com/mkuznecov/ticketgate/internal/notify"
)

// The worker binary consumes ticket events published by the gateway and
// turns them into user notifications.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New().WithField("app", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := notify.NewSender(logger.WithField("component", "notify"))

	if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.TicketEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.WithError(err).Warn("decode event error, skipping")
			return nil
		}
		return sender.Send(ctx, event)
	}); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("consumer stopped")
	}
}
