// Package main is the development web server of the grade form.
//
// It serves the page and the gradeform.wasm bundle from WEB_STATIC_DIR and
// forwards /calculate to the calculation server at CALC_API_URL, so the
// page, its wasm controller and the session cookie share one origin.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gradecalc/gradeform/config"
	"github.com/gradecalc/gradeform/internal/infrastructure/external/calcapi"
	httpserver "github.com/gradecalc/gradeform/internal/interface/http"
	"github.com/gradecalc/gradeform/internal/interface/http/handlers"
	"github.com/gradecalc/gradeform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(logger.String("app", cfg.App.Name), logger.String("version", cfg.App.Version))

	log.Info("starting gradeweb",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("calc_api", cfg.CalcAPI.BaseURL),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. CALCULATION SERVER
	// ─────────────────────────────────────────────────────────────────────────
	upstream, err := url.Parse(cfg.CalcAPI.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid CALC_API_URL: %w", err)
	}

	calcConfig := calcapi.DefaultClientConfig(cfg.CalcAPI.BaseURL)
	calcConfig.Timeout = cfg.CalcAPI.RequestTimeout
	calcConfig.Logger = setupSlog(cfg)
	calcConfig.Debug = cfg.App.Debug
	calcClient := calcapi.NewClient(calcConfig)

	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.SetTimeout(cfg.CalcAPI.RequestTimeout)
	checker.AddCheck("calc_api", handlers.NewExternalAPICheck(calcClient))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.Web.Host
	serverConfig.Port = cfg.Web.Port
	serverConfig.StaticDir = cfg.Web.StaticDir
	serverConfig.Upstream = upstream
	serverConfig.ProxyPaths = cfg.Web.ProxyPaths
	serverConfig.ReadTimeout = cfg.Web.ReadTimeout
	serverConfig.WriteTimeout = cfg.Web.WriteTimeout
	serverConfig.IdleTimeout = cfg.Web.IdleTimeout

	server, err := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		Logger:        log,
		HealthChecker: checker,
		Version:       cfg.App.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Error("server error", logger.Err(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupSlog builds the slog logger of the calculation client.
func setupSlog(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
