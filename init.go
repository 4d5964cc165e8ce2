package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storeship/dhlbridge/internal/batch"
	"github.com/storeship/dhlbridge/internal/config"
	"github.com/storeship/dhlbridge/internal/fulfillment"
	"github.com/storeship/dhlbridge/internal/labels"
	"github.com/storeship/dhlbridge/internal/server"
	"github.com/storeship/dhlbridge/internal/store"
	"github.com/storeship/dhlbridge/internal/telemetry"
	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == "memory" {
		return store.NewMemoryStore(), nil
	}
	return store.NewRedisStore(cfg.RedisURL)
}

func initDeps(cfg *config.Config, logger *otelzap.Logger) (server.Deps, func(), error) {
	kv, err := initStore(cfg)
	if err != nil {
		return server.Deps{}, nil, fmt.Errorf("initializing store: %w", err)
	}

	if err := os.MkdirAll(cfg.LabelDir, 0o755); err != nil {
		kv.Close()
		return server.Deps{}, nil, fmt.Errorf("creating label directory: %w", err)
	}

	carrier := dhlecs.New(dhlecs.Config{
		BaseURL:      cfg.DHLBaseURL,
		EKP:          cfg.DHLEKP,
		APIToken:     cfg.DHLAPIToken,
		ContactName:  cfg.DHLContactName,
		AWBCopyCount: cfg.DHLAWBCopyCount,
		UseMock:      cfg.DHLUseMock,
	}, logger)

	orders := batch.NewRepository(kv)
	aggregator := batch.NewAggregator(orders, carrier, logger)
	storage := labels.NewStorageWithFormat(cfg.LabelDir, cfg.LabelBaseURL, cfg.LabelFormat)
	waybills := labels.NewWaybill(orders, storage, carrier, labels.NewPDFCPUMerger(), logger)
	linker := fulfillment.NewStoreLinker(kv)
	workflow := fulfillment.NewWorkflow(aggregator, waybills, linker, logger)

	deps := server.Deps{
		Aggregator: aggregator,
		Orders:     orders,
		Workflow:   workflow,
		Waybills:   waybills,
		Linker:     linker,
		Carrier:    carrier,
	}

	cleanup := func() {
		kv.Close()
	}

	return deps, cleanup, nil
}
