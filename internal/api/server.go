package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/splitflow/splitflow/internal/download"
	"github.com/splitflow/splitflow/internal/history"
	"github.com/splitflow/splitflow/internal/job"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// HistoryLister serves the jobs listing from the audit trail.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]*history.Entry, error)
}

type ServerConfig struct {
	Port           int
	Store          *job.Store
	Controller     *job.Controller
	History        HistoryLister // optional
	Downloads      *download.Server
	RateLimit      RateLimitConfig
	MaxUploadBytes int64
	UploadsDir     string
	Logger         *slog.Logger
	StartTime      time.Time
	Version        string

	// BaseContext outlives individual requests; running jobs are cancelled
	// when it is. Nil means context.Background().
	BaseContext context.Context
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
			// No read/write deadlines: uploads and downloads of full-length
			// movies can legitimately take a very long time.
			ReadTimeout:  0,
			WriteTimeout: 0,
			IdleTimeout:  120 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
