package health

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/services/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RunningMessage is the body of GET /
const RunningMessage = "✅ Job alert worker is running"

// StatsSource exposes worker statistics
type StatsSource interface {
	Stats() worker.Stats
}

// Server is the liveness HTTP endpoint
type Server struct {
	router *chi.Mux
	http   *http.Server
	stats  StatsSource
	log    *logger.Logger
}

// NewServer creates a liveness server listening on addr
func NewServer(addr string, stats StatsSource) *Server {
	s := &Server{
		router: chi.NewRouter(),
		stats:  stats,
		log:    logger.ForComponent("health"),
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealth)
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("Health server listening")

	if err := s.http.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(RunningMessage))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	respondJSON(w, http.StatusOK, s.stats.Stats())
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request served")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}
