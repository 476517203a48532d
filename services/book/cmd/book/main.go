package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fiftytwobooks/internal/ratelimit"
	"fiftytwobooks/internal/util"
	"fiftytwobooks/pkg/storage"
	"fiftytwobooks/pkg/store"
	"fiftytwobooks/services/book/internal/app"
	"fiftytwobooks/services/book/internal/config"
	"fiftytwobooks/services/book/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Minio: storage.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			Region:        cfg.MinioRegion,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		},
		ScratchDir:              cfg.ScratchDir,
		CompensateFailedInserts: cfg.ShouldCompensate(),
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory book store; records are lost on restart")
		appCfg.Store = store.NewMemoryStore()
	}
	appCore, err := app.New(appCfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if cfg.SeedOnStart {
		if _, err := appCore.SeedDefaults(ctx); err != nil {
			log.Fatalf("failed to seed books: %v", err)
		}
	}

	var createLimiter *ratelimit.FixedWindowLimiter
	if cfg.CreateRateLimitPerMinute > 0 {
		createLimiter, err = ratelimit.NewFixedWindowLimiter(ratelimit.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   "fiftytwobooks:ratelimit:create",
			Limit:    cfg.CreateRateLimitPerMinute,
			Window:   time.Minute,
		})
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
		defer createLimiter.Close()
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		CreateLimiter:  createLimiter,
		TrustedProxies: trustedProxies,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("book server listening", "addr", addr, "store", cfg.StoreDriver, "bucket", cfg.MinioBucket)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down book server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("book server stopped")
}
