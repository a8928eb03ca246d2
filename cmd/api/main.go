package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wizmedik/booking-api/internal/audit"
	"github.com/wizmedik/booking-api/internal/config"
	dbpkg "github.com/wizmedik/booking-api/internal/db"
	"github.com/wizmedik/booking-api/internal/kvstore"
	"github.com/wizmedik/booking-api/internal/logger"
	"github.com/wizmedik/booking-api/internal/routes"
	"github.com/wizmedik/booking-api/internal/storage"
	"github.com/wizmedik/booking-api/internal/timezone"
)

const shutdownTimeout = 15 * time.Second

func main() {

	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := dbpkg.NewDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, counter := keyValueStore(ctx, cfg, zlog)

	var uploader storage.Uploader
	if cfg.MediaEnabled() {
		uploader = storage.NewS3Uploader(storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.PublicMediaBaseURL,
		})
	} else {
		zlog.Info("S3_BUCKET not set, photo uploads disabled")
	}

	auditor := audit.NewDispatcher(audit.New(db), zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Log:      zlog,
		Store:    store,
		Counter:  counter,
		Auditor:  auditor,
		Uploader: uploader,
		Clock:    timezone.SystemClock,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if err := auditor.Close(shutdownCtx); err != nil {
		zlog.Warn("audit queue not drained", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// keyValueStore connects to Redis, or falls back to process memory when
// REDIS_ADDR is empty. The fallback is only correct for a single instance.
func keyValueStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (kvstore.Store, kvstore.Counter) {
	if cfg.RedisAddr == "" {
		zlog.Info("REDIS_ADDR not set, using in-memory store")
		m := kvstore.NewMemoryStore()
		return m, m
	}

	client, err := kvstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zlog.Fatal("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	rs := kvstore.NewRedisStore(client, "booking")
	return rs, rs
}
