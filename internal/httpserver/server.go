// internal/httpserver/server.go
//
// HTTP server wiring for the 多少錢 backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/regions", "/ranking".
//   - Session endpoints under /session (signed session cookie or bearer token).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every session is a play.Table held in the in-memory store; the browser voices
//     announcements through the speech handoff endpoints.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/duoshao/internal/config"
	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/play"
	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/store"
)

// Server bundles router, session store, engine and catalog.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	engine  *game.Engine
	catalog *regions.Catalog
	tokens  *tokenSigner
	sched   play.Scheduler
}

var validate = validator.New()

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, engine *game.Engine, cat *regions.Catalog) (*Server, error) {
	tokens, err := newTokenSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		engine:  engine,
		catalog: cat,
		tokens:  tokens,
		sched:   play.RealTime{},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(requestIDField)                  // req_id on every access line
	s.r.Use(hlog.AccessHandler(accessLog))   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"duoshao","endpoints":["/health","/regions","/ranking","POST /session","/session/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/regions", s.handleRegions)
	s.r.Get("/ranking", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"coming_soon","entries":[]}`))
	})

	s.mountSession()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]string{"error": "not_found", "path": r.URL.Path})
		http.Error(w, string(body), http.StatusNotFound)
	})

	return s, nil
}

// SetScheduler replaces the clock used for delayed follow-ups of new sessions.
func (s *Server) SetScheduler(sched play.Scheduler) { s.sched = sched }

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context { return c.Str("req_id", id) })
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("dur", d).
		Msg("request")
}

// ------------------------------- helpers -----------------------------------

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// rejectedRes is the 409 body for intents the state machine ignored.
type rejectedRes struct {
	Error    string        `json:"error"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// writeSnapshot answers with the snapshot, or 409 when the intent was rejected.
func writeSnapshot(w http.ResponseWriter, snap game.Snapshot, ok bool) {
	if !ok {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(rejectedRes{Error: "rejected", Snapshot: snap})
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// ------------------------------- catalog -----------------------------------

type regionsRes struct {
	Regions   []regions.Config `json:"regions"`
	Suggested regions.ID       `json:"suggested"`
}

// handleRegions lists the catalog and the region matching Accept-Language.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(regionsRes{
		Regions:   s.catalog.All(),
		Suggested: s.catalog.Match(r.Header.Get("Accept-Language")),
	})
}
