package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/backend"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/handler"
	"github.com/nikolayk812/shopcart/internal/migrations"
	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/nikolayk812/shopcart/internal/session"
	"github.com/nikolayk812/shopcart/internal/shopify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cart API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply the schema before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	if autoMigrate {
		if _, err := migrations.Apply(ctx, pool, logger); err != nil {
			return fmt.Errorf("migrations.Apply: %w", err)
		}
	}

	shop, err := shopify.New(shopify.Config{
		StoreDomain: cfg.ShopifyStoreDomain,
		AccessToken: cfg.ShopifyToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		Timeout:     cfg.HTTPTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("shopify.New: %w", err)
	}

	be, err := backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("backend.NewClient: %w", err)
	}

	sessions, err := session.NewManager(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("session.NewManager: %w", err)
	}

	h, err := handler.New(handler.Deps{
		Shopify:  shop,
		Backend:  be,
		Guest:    repository.NewGuestCart(pool),
		Sessions: sessions,
		Cookies:  handler.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain},
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("handler.New: %w", err)
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(h, logger, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
