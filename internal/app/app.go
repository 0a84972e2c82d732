// Package app wires the storefront together: catalog, sessions, the
// assistant, the HTTP server, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/api"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/chat"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/checkout"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/session"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/pkg/health"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Embedded catalog.
	cat, err := catalog.Load()
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	lg.Info("Catalog loaded", zap.Int("products", cat.Len()))

	// Shopping assistant. A missing key degrades to a fixed reply instead
	// of failing startup; the rest of the store works without it.
	var assistant chat.Assistant
	if cfg.Chat.APIKey == "" {
		lg.Warn("Gemini API key not set, assistant is unavailable")
		assistant = chat.Unavailable()
	} else {
		assistant, err = chat.NewGeminiAssistant(ctx, chat.GeminiConfig{
			APIKey:  cfg.Chat.APIKey,
			Model:   cfg.Chat.Model,
			Timeout: cfg.Chat.Timeout,
		})
		if err != nil {
			return errors.Wrap(err, "create assistant")
		}
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Visitor sessions.
	sessions := session.NewStore(ctx, session.Deps{
		Promos:    checkout.NewPromoSet(checkout.DefaultPromoRules()...),
		Gateway:   checkout.NewSimulatedGateway(cfg.Gateway.Delay),
		Assistant: assistant,
		Logger:    lg.Named("session"),
	}, cfg.Session.TTL)

	// HTTP handlers.
	h := api.NewHandler(cat, sessions)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(mux)

	handler := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", api.SessionHeader},
			ExposeHeaders:    []string{api.SessionHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)
	handler = otelhttp.NewHandler(handler, "aquila-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.RunJanitor(gctx, cfg.Session.JanitorInterval)
		return nil
	})
	g.Go(func() error {
		// Graceful shutdown: mark not ready, drain, then stop.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}
