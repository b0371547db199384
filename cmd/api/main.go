package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/mc-scenario-pricer/config"
	"github.com/rzzdr/mc-scenario-pricer/internal/kafka"
	"github.com/rzzdr/mc-scenario-pricer/internal/pricing"
	"github.com/rzzdr/mc-scenario-pricer/internal/store"
	"github.com/rzzdr/mc-scenario-pricer/internal/websocket"
	"github.com/rzzdr/mc-scenario-pricer/pkg/api"
	"github.com/rzzdr/mc-scenario-pricer/pkg/metrics"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/circuit"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

var (
	configFile = flag.String("config", config.GetConfigPath(), "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("api.main")
	log.Infof("Starting %s API service (%s)", cfg.App.Name, cfg.App.Environment)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()

	hub := websocket.NewHub(recorder)
	go hub.Run(ctx)

	engine := pricing.NewEngine(pricing.EngineConfig{
		Workers:  cfg.Engine.Workers,
		Seed:     cfg.Engine.Seed,
		MaxPaths: cfg.Engine.MaxPaths,
		MaxRows:  cfg.Engine.MaxRows,
	}, recorder)
	engine.SetObserver(hub)

	deps := api.Dependencies{
		Simulator: engine,
		Store:     store.NewLatestResultStore(),
		Notifier:  hub,
		Recorder:  recorder,
	}

	var publisher *kafka.ResultPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}
		publisher = kafka.NewResultPublisher(producer, cfg.Kafka.BatchSize)
		publisher.SetBreaker(circuit.New("kafka-publisher", circuit.Config{
			MaxFailures: cfg.Kafka.Breaker.MaxFailures,
			Timeout:     cfg.Kafka.Breaker.Timeout,
			MaxRequests: 1,
		}))
		deps.Publisher = publisher
		log.Infof("Publishing results to %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	var promServer *metrics.PrometheusServer
	if cfg.Metrics.Prometheus.Enabled {
		promServer = metrics.NewPrometheusServer(cfg.Metrics.Prometheus.Port)
		go func() {
			if err := promServer.Start(); err != nil {
				log.Errorf("Prometheus server error: %v", err)
			}
		}()
	}

	apiServer := api.NewServer(api.Config{
		Host:              cfg.API.Host,
		Port:              cfg.API.Port,
		ReadTimeout:       cfg.API.ReadTimeout,
		WriteTimeout:      cfg.API.WriteTimeout,
		RunTimeout:        cfg.API.RunTimeout,
		RateLimit:         cfg.API.RateLimit,
		RateBurst:         cfg.API.RateBurst,
		MaxBodyBytes:      cfg.API.MaxBodyBytes,
		DefaultParameters: cfg.SimulationParameters(),
	}, deps)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Errorf("API server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
	case <-ctx.Done():
		log.Info("API server stopped, initiating shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Errorf("API server shutdown error: %v", err)
	}

	if promServer != nil {
		if err := promServer.Stop(shutdownCtx); err != nil {
			log.Errorf("Prometheus server shutdown error: %v", err)
		}
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Errorf("Kafka publisher shutdown error: %v", err)
		}
	}

	cancel()
	log.Info("Shutdown complete")
}
