// Package api exposes the ops HTTP surface: health, Prometheus metrics
// and a read-only view of the ranking. It reads committed ledger
// snapshots straight from the store and never writes.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"breadbot/internal/domain"
)

// Version is reported by /api/version.
const Version = "0.1.0"

type Server struct {
	store domain.Store
}

func NewServer(store domain.Store) *Server {
	return &Server{store: store}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})
	r.Get("/api/rank", s.handleRank)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type rankEntry struct {
	Nickname string `json:"nickname"`
	Balance  int64  `json:"balance"`
}

// handleRank serves the per-scope ranking. Reads go directly against
// the store: a load observes a committed snapshot, so no coordination
// with the dispatcher is needed.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	scope := domain.ScopeID(r.URL.Query().Get("scope"))
	if scope == "" {
		writeError(w, http.StatusBadRequest, "scope query parameter is required")
		return
	}
	ledger, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "ledger unavailable")
		return
	}
	var entries []rankEntry
	var accts []domain.Account
	for _, a := range ledger {
		if a.Scope == scope {
			accts = append(accts, a)
		}
	}
	sort.SliceStable(accts, func(i, j int) bool {
		if accts[i].Balance != accts[j].Balance {
			return accts[i].Balance > accts[j].Balance
		}
		if accts[i].CreatedAt != accts[j].CreatedAt {
			return accts[i].CreatedAt < accts[j].CreatedAt
		}
		return accts[i].Nickname < accts[j].Nickname
	})
	for _, a := range accts {
		entries = append(entries, rankEntry{Nickname: a.Nickname, Balance: a.Balance})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":   scope,
		"ranking": entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
