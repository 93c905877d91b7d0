// Package httpapi is the JSON HTTP surface of sessiond.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/cookie"
	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server serves session endpoints for one engine.
type Server struct {
	Engine *goSession.Engine
	Logger *slog.Logger
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// CreateSessionRequest is the body of POST /api/session.
type CreateSessionRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// SessionResponse carries the current session; Session is null when there
// is none.
type SessionResponse struct {
	Session *SessionView `json:"session"`
}

// SessionView is the part of a session handed to clients.
type SessionView struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewHandler builds the chi router for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", s.createSession)
		r.Get("/session", s.getSession)
		r.Delete("/session", s.deleteSession)

		r.With(middleware.RequireSession(s.Engine)).Get("/me", s.me)
	})
	return r
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := requestContext(r)
	jar := cookie.NewHTTPJar(w, r)
	if err := s.Engine.CreateSession(ctx, jar, body.UserID, body.Email); err != nil {
		if errors.Is(err, goSession.ErrInvalidIdentity) {
			writeError(w, http.StatusBadRequest, "userId and email are required")
			return
		}
		s.Logger.Error("create session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session could not be created")
		return
	}

	// Read back what was just written without counting it as a lookup.
	token, _ := jar.Get(goSession.SessionCookieName)
	payload, err := s.Engine.Inspect(token)
	if err != nil {
		s.Logger.Error("created session unreadable", "error", err)
		writeError(w, http.StatusInternalServerError, "session could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Session: view(payload)})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	payload := s.Engine.GetSession(requestContext(r), cookie.FromRequest(r))
	writeJSON(w, http.StatusOK, SessionResponse{Session: view(payload)})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteSession(requestContext(r), cookie.NewHTTPJar(w, r)); err != nil {
		s.Logger.Warn("delete session incomplete", "error", err)
		writeError(w, http.StatusServiceUnavailable, "session cleared but could not be revoked")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	payload, _ := middleware.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, view(payload))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Ping(r.Context()); err != nil {
		s.Logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   s.Engine.Mode().String(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func requestContext(r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx := goSession.WithClientIP(r.Context(), ip)
	return goSession.WithUserAgent(ctx, r.UserAgent())
}

func view(p *goSession.SessionPayload) *SessionView {
	if p == nil {
		return nil
	}
	return &SessionView{
		UserID:    p.UserID,
		Email:     p.Email,
		IssuedAt:  p.IssuedAt.UTC(),
		ExpiresAt: p.ExpiresAt.UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
