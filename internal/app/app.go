// Package app wires the parts depot API server together.
package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/parts-depot/db"
	"github.com/xenking/parts-depot/internal/catalog"
	"github.com/xenking/parts-depot/internal/domain/order"
	"github.com/xenking/parts-depot/internal/domain/part"
	"github.com/xenking/parts-depot/internal/handler"
	"github.com/xenking/parts-depot/internal/storage/memory"
	"github.com/xenking/parts-depot/pkg/health"
	"github.com/xenking/parts-depot/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	parts := memory.NewPartStore()
	if err := seedCatalog(ctx, lg, parts, cfg.CatalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	orders, err := order.NewService(parts, memory.NewOrderStore(), m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create order service")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("catalog", time.Second, health.PingCheck("catalog", func(ctx context.Context) error {
		_, err := parts.List(ctx)
		return err
	}))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(parts, orders).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, mux, m, cfg),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		defer healthSvc.Stop()
		<-gCtx.Done()

		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			// Only drain on a real shutdown, not on a listen failure.
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// newRouter applies the middleware chain. Route lookups go through the mux
// itself so logs and metrics are labelled with patterns, not raw paths.
// The request logger is installed ahead of Recovery so panics are logged
// with their request id.
func newRouter(ctx context.Context, mux *http.ServeMux, m httpmiddleware.Telemetry, cfg *Config) http.Handler {
	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		}),
		httpmiddleware.Instrument("parts-depot", routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	)
}

// seedCatalog fills an empty store from path, or from the built-in catalog
// when path is empty.
func seedCatalog(ctx context.Context, lg *zap.Logger, store catalog.Creator, path string) error {
	var (
		parts []part.NewPart
		err   error
	)
	if path == "" {
		parts, err = catalog.Decode(db.DefaultCatalog)
	} else {
		parts, err = catalog.LoadFile(path)
	}
	if err != nil {
		return err
	}
	if err := catalog.Seed(ctx, store, parts); err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in"
	}
	lg.Info("Catalog loaded", zap.String("source", source), zap.Int("parts", len(parts)))
	return nil
}
