package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relaygate/sms_relay/internal/platform/config"
	"github.com/relaygate/sms_relay/internal/platform/logger"
	"github.com/relaygate/sms_relay/internal/relay_service/adapters/crm"
	"github.com/relaygate/sms_relay/internal/relay_service/adapters/smsprovider"
	"github.com/relaygate/sms_relay/internal/relay_service/app"
	"github.com/relaygate/sms_relay/internal/relay_service/domain"
	"github.com/relaygate/sms_relay/internal/relay_service/registry"
	httptransport "github.com/relaygate/sms_relay/internal/relay_service/transport/http"
)

const serviceName = "relay_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Relay service starting...", "port", cfg.ServerPort, "test_mode", cfg.TestMode)

	if cfg.ClientPhone == "" {
		appLogger.Error("CLIENT_PHONE is not configured")
		os.Exit(1)
	}
	maskedNumber := cfg.ActiveMaskedNumber()
	if maskedNumber == "" {
		appLogger.Error("No outbound masked number configured for current mode", "test_mode", cfg.TestMode)
		os.Exit(1)
	}

	roleDirectory := domain.NewRoleDirectory(cfg.RoleNumbers)
	bindingRegistry := registry.New(appLogger)

	provider := smsprovider.NewTwilioProvider(
		appLogger,
		cfg.TwilioAPIBaseURL,
		cfg.ActiveAccountSID(),
		cfg.ActiveAuthToken(),
		cfg.TwilioProxyServiceSID,
		&http.Client{Timeout: cfg.ProviderTimeout},
	)

	crmLogger := crm.NewHubSpotClient(
		appLogger,
		cfg.HubSpotAPIBaseURL,
		cfg.HubSpotAPIKey,
		&http.Client{Timeout: cfg.CRMTimeout},
	)

	relayService := app.NewRelayService(
		bindingRegistry,
		roleDirectory,
		provider,
		crmLogger,
		cfg.ClientPhone,
		maskedNumber,
		cfg.ProviderTimeout,
		cfg.CRMTimeout,
		appLogger,
	)

	validate := validator.New()
	relayHandler := httptransport.NewRelayHandler(relayService, bindingRegistry, appLogger, validate)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(httptransport.PrometheusMetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "Relay service is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	relayHandler.RegisterRoutes(r)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ServerPort), Handler: r}
	appLogger.Info(fmt.Sprintf("Relay server listening on port %d", cfg.ServerPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Relay service shut down.")
}
