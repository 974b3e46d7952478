package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	handler "github.com/zdziszkee/swiftcodes-api/internal/api/handlers"
	"github.com/zdziszkee/swiftcodes-api/internal/api/router"
	config "github.com/zdziszkee/swiftcodes-api/internal/configurations"
	"github.com/zdziszkee/swiftcodes-api/internal/database"
	"github.com/zdziszkee/swiftcodes-api/internal/logging"
	"github.com/zdziszkee/swiftcodes-api/internal/metrics"
	parser "github.com/zdziszkee/swiftcodes-api/internal/parsers"
	"github.com/zdziszkee/swiftcodes-api/internal/readers/csv"
	repository "github.com/zdziszkee/swiftcodes-api/internal/repositories"
	service "github.com/zdziszkee/swiftcodes-api/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	loadFile := flag.String("load", "", "Path to SWIFT codes CSV file to load")
	flag.Parse()

	if err := run(*configPath, *loadFile); err != nil {
		slog.Error("swift-codes stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath, loadFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override config with command line flags if provided
	if loadFile != "" {
		cfg.EnableAutoLoad(loadFile)
	}

	if _, err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	slog.Info("database ready", "type", db.Dialect, "table", db.TableName())

	m := metrics.New(prometheus.DefaultRegisterer)

	repo := repository.NewSQLSwiftBanksRepository(db)
	swiftService := service.NewSwiftService(repo, m)

	if cfg.Data.AutoLoad {
		seedCtx, cancel := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
		seeder := service.NewSwiftSeeder(&csv.CSVSwiftBanksReader{}, parser.DefaultSwiftBanksParser{}, repo, m, cfg.Data.BatchSize)

		slog.Info("loading SWIFT codes", "file", cfg.Data.SwiftCodesFile)
		_, err := seeder.SeedFile(seedCtx, cfg.Data.SwiftCodesFile)
		cancel()
		if err != nil {
			slog.Warn("failed to load SWIFT codes", "error", err)
		}
	}

	routerCfg := router.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Health:       handler.NewHealthHandler(repo, 0),
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.Gatherer = prometheus.DefaultGatherer
	}
	app := router.SetupRoutes(routerCfg, handler.NewSwiftHandler(swiftService))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", cfg.Addr())
		return app.Listen(cfg.Addr(), fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("server exiting")
	return nil
}
