package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware())

	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimit))
			r.Post("/split", splitHandler(cfg))
		})
		r.Get("/progress/{jobID}", progressHandler(cfg))
		r.Get("/jobs", listJobsHandler(cfg))
	})

	r.Get("/files/{jobID}/{name}", fileHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func progressHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")
		snap, ok := cfg.Store.Get(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SnapshotToProgress(snap))
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteJSON(w, http.StatusOK, JobsResponse{Jobs: []JobSummaryResponse{}})
			return
		}

		entries, err := cfg.History.ListRecent(r.Context(), 0)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobSummaryResponse, len(entries))}
		for i, e := range entries {
			resp.Jobs[i] = EntryToSummary(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func fileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		name := chi.URLParam(r, "name")

		if err := cfg.Downloads.ServeArtifact(w, r, jobID, name); err != nil {
			cfg.Logger.Error("artifact serve failed", "job_id", jobID, "name", name, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to serve file", "INTERNAL_ERROR")
		}
	}
}
