package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	jwttoken "caregate/internal/jwt_token"
	lifecyclehandler "caregate/internal/lifecycle/handler"
	"caregate/internal/platform/config"
	"caregate/internal/platform/httpserver"
	"caregate/internal/platform/logger"
	"caregate/internal/platform/metrics"
	"caregate/pkg/platform/middleware/admin"
	"caregate/pkg/platform/middleware/metadata"
	"caregate/pkg/platform/middleware/requesttime"
)

const (
	adminIssuer   = "caregate"
	adminAudience = "caregate-admin"
)

// main wires configuration, backends and the admin API, then runs the HTTP
// server next to the background loops until a signal arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New("caregate", cfg.Server.LogLevel, cfg.Server.Development())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("caregate stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	platformMetrics := metrics.New()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(log)
	platformMetrics.SetBuildInfo(cfg.Server.AppEnv, a.directoryBackend, a.blacklistBackend, a.sinkName)

	tokens := jwttoken.NewJWTService(cfg.Server.AdminJWTSecret, adminIssuer, adminAudience)
	router := newRouter(a, tokens, log)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting caregate", "addr", cfg.Server.Addr,
			"directory", a.directoryBackend, "blacklist", a.blacklistBackend,
			"rejections", a.rejectionBackend, "events", a.sinkName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return ignoreCancel(a.service.StartReconciler(gctx, cfg.Lifecycle.ReconcileInterval, func(err error) {
			platformMetrics.IncrementBackgroundRun("termination_reconciler", err)
		}))
	})
	g.Go(func() error {
		return ignoreCancel(a.blacklist.StartCleanup(gctx, cfg.Lifecycle.BlacklistCleanupInterval, func(err error) {
			platformMetrics.IncrementBackgroundRun("blacklist_cleanup", err)
		}))
	})
	if a.buffered != nil {
		g.Go(func() error {
			return ignoreCancel(a.buffered.Run(gctx))
		})
	}
	return g.Wait()
}

func newRouter(a *app, tokens *jwttoken.JWTService, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := a.health(req.Context()); err != nil {
			log.WarnContext(req.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())

	h := lifecyclehandler.New(a.service, log)
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdmin(tokens, log))
		h.Register(r)
	})
	return r
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
