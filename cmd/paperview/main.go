package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/openscholar/paperview/internal/config"
	"github.com/openscholar/paperview/internal/infrastructure/providers"
	"github.com/openscholar/paperview/internal/present/rest"
	"github.com/openscholar/paperview/internal/service"
	"github.com/openscholar/paperview/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := setupTrace(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	eth, err := providers.NewEthClient(conf.Server)
	if err != nil {
		slog.Error("failed to connect RPC", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer eth.Close()

	reader, err := providers.NewChainReader(eth, conf)
	if err != nil {
		slog.Error("failed to bind contracts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)
	mc := providers.NewMemcache(conf.Server)
	gatewayClient := providers.NewGatewayClient(conf.Server)
	metadata := providers.NewMetadataGateway(gatewayClient, mc)
	snapshots := providers.NewSnapshotRepository(db)

	tuning := conf.DomainTuning()
	queryCache := service.NewQueryCache(tuning.Cache)
	signal := service.NewSignalService(rdb)
	hub := service.NewHub()

	// Invalidations arrive over redis from any instance; apply them to the
	// local cache and fan out to connected UI clients.
	signal.Subscribe(ctx, func(event service.InvalidationEvent) {
		for _, key := range event.Keys {
			queryCache.Invalidate(key)
		}
		for _, prefix := range event.Prefixes {
			queryCache.InvalidatePrefix(prefix)
		}
		hub.Broadcast(event)
	})

	paperUC := usecase.NewPaperUsecase(reader, metadata, queryCache, snapshots, tuning)
	governanceUC := usecase.NewGovernanceUsecase(reader, queryCache, snapshots, tuning)
	verifierUC := usecase.NewVerifierUsecase(reader, queryCache)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("paperview"))
	}

	handler := rest.NewHandler(paperUC, governanceUC, verifierUC, signal, hub)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTrace(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
