package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drugtrack/m/internal/api"
	"drugtrack/m/internal/config"
	"drugtrack/m/internal/database"
	"drugtrack/m/internal/logger"
	"drugtrack/m/internal/metrics"
	"drugtrack/m/internal/migrations"
	"drugtrack/m/internal/monitor"
	"drugtrack/m/internal/notify"
	"drugtrack/m/internal/seed"
	"drugtrack/m/internal/store"
	"drugtrack/m/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Error("store setup failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	var (
		recorder *metrics.Recorder
		promView http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.New(reg)
		promView = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	var notifier notify.Publisher = notify.Noop{}
	if cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Error("amqp connect failed, status notifications disabled", "err", err)
		} else {
			notifier = pub
			log.Info("publishing status changes", "exchange", cfg.AMQPExchange)
		}
	}
	defer notifier.Close()

	var policy workflow.TransitionPolicy = workflow.Lenient{}
	if cfg.StrictStatusOrder {
		policy = workflow.ForwardOnly{}
	}

	svc := workflow.NewService(workflow.Dependencies{
		Store:  st,
		Engine: workflow.NewEngine(policy),
		Monitor: monitor.Config{
			LowStockThreshold: cfg.LowStockThreshold,
			ExpiryHorizonDays: cfg.ExpiryHorizonDays,
		},
		Logger:   log,
		Metrics:  recorder,
		Notifier: notifier,
	})
	handler := api.New(svc, log, promView)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("drug tracking server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

// openStore builds the record store named by cfg.StoreDriver. SQL backends
// are migrated and seeded from the CSV datasets on first start.
func openStore(cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == "csv" {
		return store.NewCSVStore(store.Paths{
			Orders:      cfg.OrdersFile,
			Hospitals:   cfg.HospitalsFile,
			Inventory:   cfg.InventoryFile,
			Consumption: cfg.ConsumptionFile,
		}), func() {}, nil
	}

	db, err := database.Connect(cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	if err := migrations.Run(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	if _, err := seed.LoadInventory(db, cfg.InventoryFile, log); err != nil {
		log.Warn("inventory seed skipped", "path", cfg.InventoryFile, "err", err)
	}
	if _, err := seed.LoadConsumption(db, cfg.ConsumptionFile, log); err != nil {
		log.Warn("consumption seed skipped", "path", cfg.ConsumptionFile, "err", err)
	}
	return store.NewSQLStore(db), closeDB, nil
}
