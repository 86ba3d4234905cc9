// Package api serves a store over HTTP so the remote backend (or any other
// client) can share one task list.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada/internal/store"
)

type Server struct {
	store  store.Store
	feed   *store.Feed
	token  string
	log    *slog.Logger
	router *mux.Router
}

type Option func(*Server)

// WithFeed enables GET /events.
func WithFeed(f *store.Feed) Option { return func(s *Server) { s.feed = f } }

// WithToken requires "Authorization: Bearer <token>" on every route except
// /health.
func WithToken(token string) Option { return func(s *Server) { s.token = token } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		log:    slog.Default(),
		router: mux.NewRouter(),
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(s.requireToken)

	s.router.HandleFunc("/tasks", s.handleTaskList).Methods(http.MethodGet)
	s.router.HandleFunc("/tasks", s.handleTaskCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/tasks/{id}", s.handleTaskGet).Methods(http.MethodGet)
	s.router.HandleFunc("/tasks/{id}", s.handleTaskUpdate).Methods(http.MethodPatch)
	s.router.HandleFunc("/tasks/{id}", s.handleTaskDelete).Methods(http.MethodDelete)

	s.router.HandleFunc("/folders", s.handleFolderList).Methods(http.MethodGet)
	s.router.HandleFunc("/folders", s.handleFolderCreate).Methods(http.MethodPost)

	s.router.HandleFunc("/events", s.handleEventStream).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(got), "bearer ") ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got[7:])), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store sentinels onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
