// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garagehq/servicebot/internal/cache"
)

// Assistant answers customer queries.
type Assistant interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Reloader forces a full data refresh.
type Reloader interface {
	Refresh(ctx context.Context) error
}

// Deps wires the handlers to the rest of the application.
type Deps struct {
	Assist      Assistant
	Cache       *cache.Cache
	Refresher   Reloader
	CORSOrigins []string
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// New builds the HTTP handler.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Get("/api/status", handleStatus(deps.Cache))
	r.Post("/api/reload", handleReload(deps.Refresher, deps.Cache))
	r.Post("/api/query", handleQuery(deps.Assist))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleStatus(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Stats())
	}
}

func handleReload(rl Reloader, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if err := rl.Refresh(r.Context()); err != nil {
			zap.L().Error("reload failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		stats := c.Stats()
		zap.L().Info("reload complete",
			zap.Int("pricing_records", stats.PricingRecords),
			zap.Int("recall_notices", stats.RecallNotices),
			zap.Duration("elapsed", time.Since(start)),
		)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "reloaded",
			"pricing_records": stats.PricingRecords,
			"recall_notices":  stats.RecallNotices,
		})
	}
}

func handleQuery(a Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		queryID := uuid.NewString()
		log := zap.L().With(zap.String("query_id", queryID))
		log.Info("query received", zap.String("query", req.Query))

		start := time.Now()
		answer, err := a.Answer(r.Context(), req.Query)
		if err != nil {
			log.Error("query failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		log.Info("query answered", zap.Duration("elapsed", time.Since(start)))
		writeJSON(w, http.StatusOK, queryResponse{Answer: answer})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
