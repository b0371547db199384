package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rzzdr/mc-scenario-pricer/config"
	"github.com/rzzdr/mc-scenario-pricer/internal/kafka"
	"github.com/rzzdr/mc-scenario-pricer/internal/pricing"
	"github.com/rzzdr/mc-scenario-pricer/pkg/metrics"
	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

var (
	configFile = flag.String("config", config.GetConfigPath(), "Path to configuration file")
	seed       = flag.Uint64("seed", 0, "Run seed, 0 uses engine.seed from the configuration")
	paths      = flag.Int("paths", 0, "Override simulation.n_paths")
	output     = flag.String("output", "", "Write the full result as JSON to this file")
	publish    = flag.Bool("publish", false, "Publish the result to Kafka even if kafka.enabled is false")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("pricer.main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params := cfg.SimulationParameters()
	if *paths > 0 {
		params.Paths = *paths
	}

	runSeed := cfg.Engine.Seed
	if *seed != 0 {
		runSeed = *seed
	}

	recorder := metrics.NewRecorder()
	engine := pricing.NewEngine(pricing.EngineConfig{
		Workers:  cfg.Engine.Workers,
		Seed:     cfg.Engine.Seed,
		MaxPaths: cfg.Engine.MaxPaths,
		MaxRows:  cfg.Engine.MaxRows,
	}, recorder)

	result, err := engine.RunWithSeed(ctx, params, runSeed)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	logSummary(log, result)

	if *output != "" {
		if err := writeResult(*output, result); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
		log.Infof("Wrote result to %s", *output)
	}

	if cfg.Kafka.Enabled || *publish {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}

		publisher := kafka.NewResultPublisher(producer, cfg.Kafka.BatchSize)
		status := "ok"
		if err := publisher.Publish(ctx, result); err != nil {
			status = "error"
			log.Errorf("Failed to publish run %s: %v", result.RunID, err)
		} else {
			log.Infof("Published run %s to %s", result.RunID, cfg.Kafka.Topic)
		}
		recorder.RecordPublish(status)

		if err := publisher.Close(); err != nil {
			log.Errorf("Kafka publisher shutdown error: %v", err)
		}
	}
}

func logSummary(log *logger.Logger, result *models.SimulationResult) {
	s := result.CentralSummary
	log.Infof("Run %s (seed %d) finished in %v: %d rows, %d detailed slots",
		result.RunID, result.Seed, result.Duration, len(result.Rows), result.PopulatedSlots())
	log.Infof("Central sample: mean %.4f, forward %.4f, stddev %.4f, p05 %.4f, p50 %.4f, p95 %.4f",
		s.Mean, s.Forward, s.StdDev, s.P05, s.P50, s.P95)

	for _, row := range result.Rows {
		if row.SpotIndex != models.PivotIndex || row.VolIndex != models.PivotIndex {
			continue
		}
		log.Infof("S=%.2f vol=%.4f T=%g K=%g price=%.4f stderr=%.4f closed_form=%.4f",
			row.Spot, row.Volatility, row.Maturity, row.Strike, row.Price, row.StdError, row.ClosedForm)
	}
}

func writeResult(path string, result *models.SimulationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	return f.Close()
}
