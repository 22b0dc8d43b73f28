package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/splitflow/splitflow/internal/api"
	"github.com/splitflow/splitflow/internal/config"
	"github.com/splitflow/splitflow/internal/download"
	"github.com/splitflow/splitflow/internal/engine"
	"github.com/splitflow/splitflow/internal/history"
	"github.com/splitflow/splitflow/internal/job"
	"github.com/splitflow/splitflow/internal/logging"
	"github.com/splitflow/splitflow/internal/objstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.DataDir(), cfg.UploadsDir(), cfg.OutputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting splitflow", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := history.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	repo := history.NewRepository(database.Conn())

	store := job.NewStore(logging.WithComponent(logger, "store"))

	var eng engine.Engine
	ffmpeg, err := engine.NewFFmpegEngine(cfg.FFmpegPath(), cfg.FFprobePath(), logging.WithComponent(logger, "engine"))
	if err != nil {
		logger.Warn("ffmpeg not available, submissions will fail", "error", err)
		eng = engine.NewStubEngine(logger)
	} else {
		eng = ffmpeg
	}

	var publisher job.Publisher
	if cfg.S3Endpoint() != "" && cfg.S3Bucket() != "" {
		pub, err := objstore.NewPublisher(cfg.S3Endpoint(), cfg.S3AccessKey(), cfg.S3SecretKey(), cfg.S3Bucket(), logging.WithComponent(logger, "objstore"))
		if err != nil {
			logger.Warn("object storage unavailable, serving parts locally", "error", err)
		} else {
			publisher = pub
			logger.Info("publishing parts to object storage", "endpoint", cfg.S3Endpoint(), "bucket", cfg.S3Bucket())
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr() != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		logger.Info("rate limiting enabled", "redis", cfg.RedisAddr(), "limit", cfg.RateLimit(), "window", cfg.RateWindow())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := job.NewController(job.ControllerConfig{
		Store:      store,
		Engine:     eng,
		Recorder:   repo,
		Publisher:  publisher,
		Logger:     logging.WithComponent(logger, "controller"),
		OutputDir:  cfg.OutputDir(),
		BundleZip:  cfg.BundleZip(),
		JobTimeout: cfg.JobTimeout(),
		MaxActive:  cfg.MaxActiveJobs(),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Store:      store,
		Controller: ctrl,
		History:    repo,
		Downloads:  download.NewServer(cfg.OutputDir(), logging.WithComponent(logger, "download")),
		RateLimit: api.RateLimitConfig{
			RedisClient: redisClient,
			Limit:       cfg.RateLimit(),
			Window:      cfg.RateWindow(),
		},
		MaxUploadBytes: cfg.MaxUploadBytes(),
		UploadsDir:     cfg.UploadsDir(),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
		Version:        config.Version,
		BaseContext:    ctx,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	// Stop accepting requests first, then cancel running jobs.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	cancel()

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("shutdown complete")
	return nil
}
