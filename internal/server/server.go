// Package server exposes gin rummy matches over HTTP, with WebSocket
// streams of match snapshots.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/ginrummy/internal/auth"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server serves the match API
type Server struct {
	config    *ServerConfig
	store     *Store
	validator auth.Validator
	logger    *log.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a server for config. The clock drives idle expiry.
func NewServer(config *ServerConfig, logger *log.Logger, clock quartz.Clock) *Server {
	logger = logger.WithPrefix("server")
	return &Server{
		config: config,
		store: NewStore(
			WithClock(clock),
			WithIdleTimeout(config.IdleTimeout()),
			WithRules(config.GameRules()),
			WithLogger(logger),
		),
		validator: config.Validator(),
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Store returns the match store
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler with all routes registered. Everything
// under /api/ requires a valid token when authentication is configured.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/matches", s.handleListMatches)
	api.HandleFunc("POST /api/matches", s.handleCreateMatch)
	api.HandleFunc("GET /api/matches/{id}", s.handleGetMatch)
	api.HandleFunc("DELETE /api/matches/{id}", s.handleDeleteMatch)
	api.HandleFunc("POST /api/matches/{id}/draw", s.handleDraw)
	api.HandleFunc("POST /api/matches/{id}/discard", s.handleDiscard)
	api.HandleFunc("POST /api/matches/{id}/knock", s.handleKnock)
	api.HandleFunc("POST /api/matches/{id}/big-gin", s.handleBigGin)
	api.HandleFunc("POST /api/matches/{id}/recycle", s.handleRecycle)
	api.HandleFunc("POST /api/matches/{id}/next-round", s.handleNextRound)
	api.HandleFunc("GET /api/matches/{id}/ws", s.handleWebSocket)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/", s.requireAuth(api))
	return s.logRequests(mux)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.validator.Validate(r.Context(), auth.TokenFromRequest(r))
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ginrummy"`)
			}
			s.writeError(w, err)
			return
		}
		if identity != nil {
			r = r.WithContext(auth.WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the idle reaper. It shuts down
// gracefully when ctx is cancelled and returns the first fatal error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	reaper := s.store.StartReaper(ctx)

	g.Go(func() error {
		s.logger.Info("Listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := reaper.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reaper: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down", "matches", s.store.Len())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.store.Close()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the WebSocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
