// Package api serves the game over HTTP.
// GET endpoints are public reads. Gameplay POSTs are rate limited per
// client. Reset and import require the admin bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/logger"
	"github.com/talgya/copclicker/internal/metrics"
	"github.com/talgya/copclicker/internal/persistence"
)

// Server serves one game over HTTP.
type Server struct {
	Game      *engine.Game
	DB        *persistence.DB // Optional; enables persisted event history and save wipes.
	Port      int
	AdminKey  string // Bearer token for reset/import. Empty = disabled.
	RateLimit float64
	RateBurst int

	// Active SSE connection count (atomic).
	sseConns int32

	limiterMu sync.Mutex
	limiters  []*RateLimiter
}

// Router builds the chi handler tree. Each router owns a rate limiter
// that runs until Close.
func (s *Server) Router() http.Handler {
	limiter := NewRateLimiter(s.RateLimit, s.RateBurst)
	s.limiterMu.Lock()
	s.limiters = append(s.limiters, limiter)
	s.limiterMu.Unlock()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/upgrades", s.handleUpgrades)
		r.Get("/legacy", s.handleLegacy)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/events", s.handleEvents)
		r.Get("/events/history", s.handleEventHistory)
		r.Get("/export", s.handleExport)
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/click", s.handleClick)
			r.Post("/upgrades/{kind}/purchase", s.handlePurchase)
			r.Post("/legacy/{kind}/purchase", s.handleLegacyPurchase)
			r.Post("/achievements/{id}/claim", s.handleClaim)
			r.Post("/prestige", s.handlePrestige)
			r.Post("/save", s.handleSave)
		})

		// Admin endpoints (require bearer token).
		r.Post("/import", s.adminOnly(s.handleImport))
		r.Post("/reset", s.adminOnly(s.handleReset))
	})

	return r
}

// Start begins serving the HTTP API in a goroutine. The returned server is
// for Shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Close stops the background work of every router built by s.
func (s *Server) Close() {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	for _, l := range s.limiters {
		l.Stop()
	}
	s.limiters = nil
}

// Shutdown stops srv, giving open requests a few seconds to finish.
func Shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP shutdown", "error", err)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled (no COPCLICKER_ADMIN_KEY set)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// decodeBody reads a JSON body into dst and validates it. It writes the
// 400 itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 2<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": formatValidationError(err),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]string{"error": msg})
}
