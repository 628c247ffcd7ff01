package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/middleware"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/store"
)

var startedAt = time.Now()

// New builds the ops/status API. It is read-only: downloads flow through
// the chat transport, never through here.
func New(q *queue.Queue, st *store.Store) *http.Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	if config.EnvMode == "development" {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(securityHeaders)
	r.Use(middleware.LoadCORS())
	r.Use(middleware.RateLimit)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, 200, map[string]interface{}{
			"status":  "ok",
			"version": config.Version,
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, 200, map[string]interface{}{
			"queued":        q.Len(),
			"uptimeSeconds": int(time.Since(startedAt).Seconds()),
			"version":       config.Version,
		})
	})

	r.Route("/api/users/{userID}/downloads", func(r chi.Router) {
		r.Use(requireSecret)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			userID, err := strconv.ParseInt(chi.URLParam(req, "userID"), 10, 64)
			if err != nil {
				respondJSON(w, 400, map[string]string{"error": "Invalid user id"})
				return
			}
			records, err := st.Recent(userID, config.HistoryLimit)
			if err != nil {
				respondJSON(w, 500, map[string]string{"error": "Query failed"})
				return
			}
			respondJSON(w, 200, records)
		})
	})

	return &http.Server{
		Addr:              ":" + config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.APISecret != "" && r.Header.Get("X-API-Secret") != config.APISecret {
			respondJSON(w, 403, map[string]string{"error": "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
