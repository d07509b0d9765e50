package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pressgate/pressgate/config"
	"github.com/pressgate/pressgate/internal/data"
	"github.com/pressgate/pressgate/internal/gateway"
	httpx "github.com/pressgate/pressgate/internal/http"
	"github.com/pressgate/pressgate/internal/service"
)

// BuildHandler wires the gateway, services, and router into the root HTTP
// handler.
func BuildHandler(cfg config.AppConfig, logger *slog.Logger) (http.Handler, error) {
	gw := gateway.New(gateway.Options{
		Config: gateway.Config{
			BaseURL:  cfg.Backend.BaseURL,
			CSRFPath: cfg.Backend.CSRFPath,
			Timeout:  cfg.Backend.Timeout,
			Policy: gateway.CookiePolicy{
				AccessTokenTTL:  cfg.Session.AccessTokenTTL,
				RefreshTokenTTL: cfg.Session.RefreshTokenTTL,
				Domain:          cfg.Session.CookieDomain,
			},
			DevMode: cfg.IsDev,
		},
		Logger: logger,
	})

	services := httpx.RouterServices{
		Gateway:      gw,
		Auth:         service.NewAuthService(),
		Posts:        service.NewPostService(),
		Categories:   service.NewCategoryService(),
		PageCacheTTL: cfg.Cache.PageTTL,
		IsDev:        cfg.IsDev,
		Logger:       logger,
	}

	cacheClient, err := ConnectCacheRedis(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("connect cache redis: %w", err)
	}
	if cacheClient != nil {
		services.PageCache = data.NewRedisPageCacheRepo(cacheClient)
	}

	return httpx.NewRouter(services), nil
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives, then shuts down gracefully.
func Run(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) error {
	handler, err := BuildHandler(cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr, "dev", cfg.IsDev)
		if serveErr := server.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
