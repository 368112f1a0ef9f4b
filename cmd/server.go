package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"tickerdash/internal/export"
	"tickerdash/internal/pipeline"
	"tickerdash/internal/provider"
	"tickerdash/internal/web"
)

type config struct {
	ListenAddress string `env:"ADDR" envDefault:":8080"`
	Provider      string `env:"PROVIDER" envDefault:"yahoo"`
	YahooBaseURL  string `env:"YAHOO_BASE_URL"`
	ProxyURL      string `env:"PROXY_URL"`
	SymbolMapPath string `env:"SYMBOL_MAP"`
	ExportDir     string `env:"EXPORT_DIR" envDefault:"./exports"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// set global logger with custom options
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.DateTime,
		}),
	))

	cfg := config{}
	err := loadConfig(&cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	src, err := buildProvider(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build provider", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "market data source ready", "provider", src.Name())

	promExporter, err := prometheus.New()
	if err != nil {
		slog.ErrorContext(ctx, "failed to create prometheus exporter", "error", err)
		os.Exit(1)
	}
	meterProvider := metric.NewMeterProvider(metric.WithReader(promExporter))

	pl, err := pipeline.New(src, meterProvider)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create pipeline", "error", err)
		os.Exit(1)
	}

	store, err := export.NewStore(afero.NewOsFs(), cfg.ExportDir)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create export store", "error", err)
		os.Exit(1)
	}

	handler := web.NewHandler(pl, store)
	srv, err := web.New(ctx, cfg.ListenAddress, handler.Routes())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create server", "error", err)
		os.Exit(1)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.InfoContext(ctx, "starting server", "listen_address", cfg.ListenAddress)
		if err := runHttpServer(ctx, cfg.ListenAddress, srv); err != nil {
			slog.ErrorContext(ctx, "failed to start server", "error", err)
			cancel()
			return err
		}
		return nil
	})

	// Handle graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("shutting down server gracefully")

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server terminated", "err", err)
	}
}

func buildProvider(cfg config) (provider.Provider, error) {
	if cfg.Provider == "mock" {
		return &provider.Mock{}, nil
	}

	aliases, err := provider.LoadSymbolMap(cfg.SymbolMapPath)
	if err != nil {
		return nil, err
	}

	opts := []provider.YahooOption{provider.WithSymbolMap(aliases)}
	if cfg.YahooBaseURL != "" {
		opts = append(opts, provider.WithBaseURL(cfg.YahooBaseURL))
	}
	if cfg.ProxyURL != "" {
		opts = append(opts, provider.WithProxy(cfg.ProxyURL))
	}
	return provider.NewYahooClient(opts...), nil
}

func runHttpServer(ctx context.Context, listenAddress string, srv *web.Server) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return err
	}

	err = srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func loadConfig(config any) error {
	// Ignore error if .env is missing
	err := godotenv.Load()

	if err != nil && !os.IsNotExist(err) {
		return err
	}

	// Parse for built-in types
	if err := env.Parse(config); err != nil {
		return err
	}

	return nil
}
