// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blockpress/internal/cache"
	"blockpress/internal/components"
	"blockpress/internal/database"
	"blockpress/internal/engine"
	"blockpress/internal/handlers"
	"blockpress/internal/middleware"
	"blockpress/internal/router"
	"blockpress/internal/session"
	"blockpress/internal/snapshot"
	"blockpress/internal/store"
	"blockpress/internal/tenant"
	"blockpress/internal/themes"
)

const (
	shutdownTimeout = 30 * time.Second
	loginAttempts   = 10
	loginWindow     = time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server. Pending migrations are applied first; in
development an empty database is seeded with a master user and a demo site.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.Seed(db, database.SeedOptions{
			AdminEmail:    cfg.App.AdminEmail,
			AdminPassword: cfg.App.AdminPassword,
		}); err != nil {
			return err
		}
	}

	valkey, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.Valkey.Password, cfg.Valkey.DB)
	if err != nil {
		return err
	}
	defer valkey.Close()

	sites := store.NewSiteStore(db)
	pages := store.NewPageStore(db)
	pageBlocks := store.NewPageBlockStore(db)
	templates := store.NewTemplateStore(db)
	templateBlocks := store.NewTemplateBlockStore(db)
	navigation := store.NewNavigationStore(db)
	settings := store.NewSiteSettingStore(db)
	users := store.NewUserStore(db)
	cacheLog := store.NewCacheLogStore(db)

	registry := a.registry()
	loader := components.NewLoader(registry)
	pageCache := cache.NewPageCache(valkey, cache.DefaultPageTTL)

	eng := engine.New(engine.Deps{
		Templates:      templates,
		TemplateBlocks: templateBlocks,
		PageBlocks:     pageBlocks,
		Navigation:     navigation,
		Settings:       settings,
		Components:     loader,
		Cache:          pageCache,
		Log:            cacheLog,
	})

	generator, err := a.generator(db)
	if err != nil {
		return err
	}
	resolver := tenant.NewResolver(sites, tenant.DefaultTTL)
	sessions := session.NewStore(valkey, cfg.HTTP.SecureCookie)
	limiter := middleware.NewRateLimiter(loginAttempts, loginWindow)

	var debug *handlers.Debug
	if cfg.DebugEnabled() {
		debug = handlers.NewDebug(loader, pageCache, cacheLog, resolver)
		zap.S().Warnw("debug endpoints enabled")
	}

	r := router.New(router.Deps{
		Sessions: sessions,
		Tenant:   resolver.Middleware,
		Auth:     handlers.NewAuth(sessions, users),
		Admin: handlers.NewAdmin(handlers.AdminDeps{
			Sites:          sites,
			Pages:          pages,
			PageBlocks:     pageBlocks,
			Templates:      templates,
			TemplateBlocks: templateBlocks,
			Navigation:     navigation,
			Settings:       settings,
			Engine:         eng,
			Components:     loader,
			Themes:         registry,
			Snapshots:      generator,
			Tenants:        resolver,
		}),
		Public: handlers.NewPublic(handlers.PublicDeps{
			Pages:      pages,
			PageBlocks: pageBlocks,
			Navigation: navigation,
			Settings:   settings,
			Engine:     eng,
		}),
		Webhook:      handlers.NewWebhook(generator, cfg.Snapshot.WebhookSecret),
		Debug:        debug,
		LoginLimiter: limiter,
		ThemesDir:    cfg.Themes.Dir,
		SnapshotDir:  cfg.Snapshot.OutputDir,
		SecureCookie: cfg.HTTP.SecureCookie,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return snapshot.NewScheduler(generator, cfg.Snapshot.Interval).Run(gctx)
	})
	if cfg.Themes.Watch {
		watcher, err := themes.NewWatcher(cfg.Themes.Dir, 0, func() {
			registry.Invalidate()
			loader.InvalidateAll()
			n := pageCache.InvalidateAll(context.Background())
			zap.S().Infow("theme caches cleared", "pages", n)
		})
		if err != nil {
			zap.S().Warnw("theme watcher disabled", "dir", cfg.Themes.Dir, "error", err)
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}

	g.Go(func() error {
		zap.S().Infow("server starting", "addr", srv.Addr, "env", cfg.App.Env, "platform", cfg.Platform)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		zap.S().Infow("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
