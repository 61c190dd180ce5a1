package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SanathKumar1997/teez/internal/domain/admin"
	"github.com/SanathKumar1997/teez/internal/domain/auth"
	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/payment"
	"github.com/SanathKumar1997/teez/internal/handler"
	"github.com/SanathKumar1997/teez/internal/payment/razorpay"
	"github.com/SanathKumar1997/teez/internal/storage/postgres"
	"github.com/SanathKumar1997/teez/pkg/health"
	"github.com/SanathKumar1997/teez/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("payment_provider", cfg.Payment.Provider),
	)

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.Add(health.Readiness, health.Check{
		Name:    "postgres",
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(pool),
	})
	healthSvc.Add(health.Liveness, health.Check{
		Name: "goroutines",
		Func: health.GoroutineCountCheck(10000),
	})

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// Domain services.
	tokens, err := auth.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return errors.Wrap(err, "create token issuer")
	}
	passwords, err := auth.NewPasswords(cfg.Auth.BcryptCost)
	if err != nil {
		return errors.Wrap(err, "create password hasher")
	}
	authService := auth.NewService(userRepo, tokens, passwords, auth.AdminPolicy{
		ReservedEmails: cfg.Auth.AdminEmails,
	})

	gateway, err := newGateway(cfg.Payment, m)
	if err != nil {
		return errors.Wrap(err, "create payment gateway")
	}
	orderService, err := order.NewService(orderRepo, gateway,
		order.WithMeterProvider(m.MeterProvider()),
		order.WithConfirmationRequired(cfg.Payment.RequireConfirmation),
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	adminService, err := admin.NewService(productRepo, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create admin service")
	}

	// HTTP handlers.
	h := handler.NewHandler(
		handler.HandlerConfig{ImageBaseURL: cfg.ImageBaseURL},
		productRepo,
		orderService,
		authService,
		adminService,
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Routes(mux)

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Name:   "global",
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})
	authLimiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Name:       "auth",
		Max:        cfg.AuthRateLimit.Max,
		Window:     cfg.AuthRateLimit.Window,
		PathPrefix: "/api/auth/",
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newHTTPHandler(zctx.From(ctx), mux, m, cfg.CORS, limiter, authLimiter),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gctx, 10*time.Second)
	})
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error { return authLimiter.Run(gctx) })
	g.Go(func() error {
		healthSvc.SetReady(true)
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}

// newHTTPHandler wraps mux with the server middleware chain. RequestID runs
// before InjectLogger so the request logger carries the id.
func newHTTPHandler(
	lg *zap.Logger,
	mux *http.ServeMux,
	t httpmiddleware.Telemetry,
	cfg CORSConfig,
	limiters ...*httpmiddleware.Limiter,
) http.Handler {
	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	chain := []httpmiddleware.Middleware{
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("teez-api", routeFinder, t),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: cfg.AllowCredentials,
			MaxAge:           86400,
		}),
	}
	for _, l := range limiters {
		chain = append(chain, l.Middleware())
	}
	return httpmiddleware.Wrap(mux, chain...)
}

// newGateway builds the configured payment gateway.
func newGateway(cfg PaymentConfig, m *app.Telemetry) (payment.Gateway, error) {
	switch cfg.Provider {
	case ProviderOffline:
		return &payment.Offline{Currency: cfg.Currency}, nil
	case ProviderRazorpay:
		g, err := razorpay.New(razorpay.Config{
			KeyID:     cfg.KeyID,
			KeySecret: cfg.KeySecret,
			Currency:  cfg.Currency,
			BaseURL:   cfg.BaseURL,
		}, m.TracerProvider(), m.MeterProvider())
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, errors.Errorf("unknown payment provider %q", cfg.Provider)
	}
}
