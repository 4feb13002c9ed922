package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"printfleet/internal/adapter/repo"
	"printfleet/internal/discovery"
	"printfleet/internal/fleet"
	"printfleet/internal/http/handlers"
	"printfleet/internal/http/httpapi"
	"printfleet/internal/infra"
	"printfleet/internal/infra/geoip"
	"printfleet/internal/ws"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	printerRepo := repo.NewPrinterRepository(pool)
	jobRepo := repo.NewPrintJobRepository(pool)
	maintenanceRepo := repo.NewMaintenanceRepository(pool)

	hub := ws.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	scanner := discovery.NewScanner(cfg.DiscoveryPort, cfg.DiscoveryTimeout, hub, logger)
	hub.OnDiscover(func() {
		go func() {
			if err := scanner.Scan(context.Background()); err != nil {
				logger.Error().Err(err).Msg("discovery scan failed")
			}
		}()
	})

	lifecycle := fleet.NewLifecycle(printerRepo, jobRepo, hub, logger)
	jobs := fleet.NewJobQueue(jobRepo, printerRepo, logger)
	maintenance := fleet.NewMaintenance(maintenanceRepo, printerRepo, logger)
	printers := fleet.NewPrinters(printerRepo, jobRepo, maintenanceRepo, hub, logger)

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer countries.Close()

	app := handlers.NewApp(printers, jobs, maintenance, lifecycle, scanner, logger)
	router := httpapi.NewRouter(app, hub, cfg, logger, countries)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
