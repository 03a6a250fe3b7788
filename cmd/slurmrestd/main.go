// Command slurmrestd serves the OpenAPI façade: it wires the reference
// backend, the auth boundary, and the data-parser/operation registries
// that register themselves via blank import, then starts the Gin HTTP
// driver. Grounded on bin/server.go and lib/engine.go's component
// construction order.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"

	"slurmrestd/internal/auth"
	"slurmrestd/internal/backend/refstore"
	"slurmrestd/internal/config"
	"slurmrestd/internal/httpdriver"
	"slurmrestd/internal/restapi"
	"slurmrestd/internal/router"
	"slurmrestd/internal/telemetry"
	"slurmrestd/shared/logger"

	// Side-effect imports: every operation file's init() registers its
	// routes against restapi's global router, and v0039 registers
	// itself against the dataparser registry.
	_ "slurmrestd/internal/dataparser/v0039"
	_ "slurmrestd/internal/operations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", logger.Err(err))
	}

	be, err := refstore.New(cfg.DSN())
	if err != nil {
		logger.Fatal("failed to connect reference backend", logger.Err(err))
	}
	defer be.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    "slurmrestd",
		ServiceVersion: cfg.PluginName,
		Endpoint:       cfg.TelemetryEndpoint,
		SampleRate:     cfg.TelemetrySampleRate,
	})
	if err != nil {
		logger.Fatal("failed to initialize telemetry", logger.Err(err))
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("error shutting down telemetry", logger.Err(err))
		}
	}()

	var cache auth.Cache
	if cfg.RedisAddr != "" {
		cache = auth.NewRedisCache(cfg.RedisAddr, "", 0)
	} else {
		cache = auth.NewMemoryCache()
	}

	authenticator, err := auth.NewAuth(ctx, auth.Options{
		Issuer:       cfg.AuthIssuer,
		ClientID:     cfg.AuthClientID,
		ClientSecret: cfg.AuthClientSecret,
		RedirectURL:  cfg.AuthRedirectURL,
		JWKSURL:      cfg.AuthJWKSURL,
		Scopes:       []string{"openid", "profile", "email"},
	}, cache)
	if err != nil {
		logger.Fatal("failed to initialize auth boundary", logger.Err(err))
	}

	driver := httpdriver.NewGinDriver()
	engine := driver.Engine()

	// Sessions back the operator UI's CSRF/redirect state across the
	// login -> callback round trip; harmless on every other route, so
	// it's mounted globally rather than scoped to /auth.
	store := cookie.NewStore([]byte(cfg.AuthSessionKey))
	engine.Use(sessions.Sessions("slurmrestd_auth", store))

	// Registered directly on the engine, before AddMiddleware below,
	// so the bearer check never applies to them: Gin snapshots each
	// route's middleware chain at registration time.
	engine.GET("/auth/login", authenticator.LoginHandler)
	engine.GET("/auth/callback", authenticator.CallbackHandler)
	engine.GET("/auth/logout", authenticator.LogoutHandler)

	if err := driver.AddMiddleware(authenticator.BearerMiddleware()); err != nil {
		logger.Fatal("failed to install auth middleware", logger.Err(err))
	}

	meta := restapi.MetaTemplate{
		PluginType:   cfg.PluginType,
		PluginName:   cfg.PluginName,
		SlurmRelease: cfg.SlurmRelease,
		SlurmMajor:   cfg.SlurmMajor,
		SlurmMinor:   cfg.SlurmMinor,
		SlurmMicro:   cfg.SlurmMicro,
	}

	dispatch := func(hc httpdriver.RequestContext) {
		restapi.Dispatch(hc, be, meta)
	}

	for _, prefix := range []string{"/slurm/*path", "/slurmdb/*path"} {
		for _, method := range []router.Method{router.GET, router.POST, router.DELETE, router.PATCH} {
			if err := driver.AddRoute(string(method), prefix, dispatch); err != nil {
				logger.Fatal("failed to register catch-all route", logger.String("prefix", prefix), logger.Err(err))
			}
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := driver.Start(cfg.Listen); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server exited", logger.Err(err))
		}
	}

	if err := driver.Stop(); err != nil {
		logger.Error("error during shutdown", logger.Err(err))
	}
}
