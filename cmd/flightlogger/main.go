package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flightlogger/internal/config"
	"flightlogger/internal/flightlog"
	"flightlogger/internal/statusled"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		log.Fatalf("sensor init failed: %v", err)
	}
	defer closeSrc()

	if err := os.MkdirAll(cfg.Logger.Dir, 0o755); err != nil {
		log.Fatalf("logs dir init failed: %v", err)
	}
	path, err := flightlog.NextLogPath(cfg.Logger.Dir)
	if err != nil {
		log.Fatalf("log path probe failed: %v", err)
	}
	sink, err := flightlog.NewWriter(path)
	if err != nil {
		log.Fatalf("log create failed: %v", err)
	}
	defer sink.Close()

	led := statusled.New(statusled.Config{
		Enable: cfg.LED.Enable,
		Pin:    cfg.LED.Pin,
		Period: cfg.LED.Period.Std(),
	})
	// The LED is observational only; a missing line must not stop logging.
	if err := led.Start(ctx); err != nil {
		log.Printf("status led unavailable: %v", err)
	}
	defer led.Close()

	logger := flightlog.New(flightlog.Config{
		Interval:    cfg.Logger.Interval.Std(),
		FlushEvery:  cfg.Logger.FlushEvery,
		StatusEvery: cfg.Logger.StatusInterval.Std(),
	}, src, sink)

	log.Printf("flightlogger starting")
	log.Printf("logging to %s interval=%s", path, cfg.Logger.Interval.Std())

	if err := logger.Run(ctx); err != nil {
		log.Fatalf("logging loop failed: %v", err)
	}

	st := logger.Stats()
	log.Printf("flightlogger stopping (records=%d flushes=%d sensor_failures=%d)",
		st.Records, st.Flushes, st.SensorFailures)
}
