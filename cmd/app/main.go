package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/mkuznecov/ticketgate/config"
	"github.com/mkuznecov/ticketgate/internal/bootstrap"
	"github.com/mkuznecov/ticketgate/internal/breaker"
	"github.com/mkuznecov/ticketgate/internal/cache"
	"github.com/mkuznecov/ticketgate/internal/clients"
	"github.com/mkuznecov/ticketgate/internal/compensation"
	"github.com/mkuznecov/ticketgate/internal/kafka"
	"github.com/mkuznecov/ticketgate/internal/metrics"
	"github.com/mkuznecov/ticketgate/internal/service/flights"
	"github.com/mkuznecov/ticketgate/internal/service/tickets"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New().WithField("app", "gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gatewayMetrics := metrics.NewGatewayMetrics()

	registry := breaker.NewRegistry(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		RecoveryTimeout:  cfg.Breaker.RecoveryTimeout(),
	}, logger.WithField("component", "breaker"))
	registry.OnStateChange(func(service string, from, to gobreaker.State) {
		gatewayMetrics.SetBreakerState(service, breakerStateValue(to))
	})

	timeout := cfg.Breaker.RequestTimeout()
	clientLogger := logger.WithField("component", "client")
	flightClient := clients.NewFlightClient(cfg.Services.FlightURL, timeout, registry, clientLogger)
	ticketClient := clients.NewTicketClient(cfg.Services.TicketURL, timeout, registry, clientLogger)
	bonusClient := clients.NewBonusClient(cfg.Services.BonusURL, timeout, registry, clientLogger)

	worker := compensation.NewWorker(cfg.Compensation.RetryInterval(), logger.WithField("component", "compensation"), gatewayMetrics)
	go worker.Run(ctx)

	var flightCache flights.Cache
	if cfg.Redis.Addr != "" {
		flightCache = cache.NewRedisCache(cfg.Redis, cfg.Cache.FlightsTTL())
	}

	ticketOpts := []tickets.TicketServiceOption{tickets.WithMetrics(gatewayMetrics)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		ticketOpts = append(ticketOpts, tickets.WithProducer(producer, cfg.Kafka.TicketEventsTopic))
		logger.WithField("brokers", cfg.Kafka.Brokers).Info("kafka producer initialized")
	}

	flightService := flights.NewFlightService(flightClient, flightCache)
	ticketService := tickets.NewTicketService(
		flightClient,
		ticketClient,
		bonusClient,
		worker,
		logger.WithField("component", "tickets"),
		ticketOpts...,
	)

	if err := bootstrap.Run(ctx, cfg, flightService, ticketService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}
