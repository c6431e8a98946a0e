package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dyike/QuantumGPT/internal/market"
	"github.com/dyike/QuantumGPT/internal/storage"
	"github.com/dyike/QuantumGPT/models"
)

// Backend is what the HTTP surface needs. The runtime swaps the engine
// behind it on config reload, so handlers resolve it per request.
type Backend interface {
	Suggest(ctx context.Context, req models.StrategyRequest) (*models.StrategyResult, error)
	Screen(ctx context.Context, req models.ScreenerRequest) (*models.ScreenerResult, error)
	Watchlist() *storage.Watchlist
	Alerts() *storage.Alerts
	Board() *market.Board
}

type Server struct {
	backend Backend
	ws      http.Handler
	mux     *http.ServeMux
}

// New builds the router. ws may be nil when websocket push is disabled.
func New(backend Backend, ws http.Handler) *Server {
	s := &Server{backend: backend, ws: ws, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return withLogging(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.health)

	s.mux.HandleFunc("POST /api/auth/login", s.login)
	s.mux.HandleFunc("POST /api/auth/signup", s.signup)
	s.mux.HandleFunc("POST /api/auth/logout", s.logout)
	s.mux.HandleFunc("GET /api/account/profile", s.getProfile)
	s.mux.HandleFunc("PUT /api/account/profile", s.updateProfile)

	s.mux.HandleFunc("POST /api/strategy", s.strategy)
	s.mux.HandleFunc("POST /api/screener", s.screener)

	s.mux.HandleFunc("GET /api/watchlist", s.listWatchlist)
	s.mux.HandleFunc("POST /api/watchlist", s.addWatchlist)
	s.mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.removeWatchlist)

	s.mux.HandleFunc("GET /api/alerts", s.listAlerts)
	s.mux.HandleFunc("POST /api/alerts", s.createAlert)
	s.mux.HandleFunc("PUT /api/alerts/{id}", s.updateAlert)
	s.mux.HandleFunc("PATCH /api/alerts/{id}/active", s.setAlertActive)
	s.mux.HandleFunc("DELETE /api/alerts/{id}", s.removeAlert)

	s.mux.HandleFunc("GET /api/market/overview", s.overview)
	s.mux.HandleFunc("GET /api/market/trending", s.trending)
	s.mux.HandleFunc("GET /api/market/{symbol}", s.snapshot)

	if s.ws != nil {
		s.mux.Handle("GET /ws", s.ws)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("[Server] shutting down")
	return srv.Shutdown(shutdownCtx)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if r.URL.Path != "/ws" {
			log.Printf("[HTTP] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed by the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
