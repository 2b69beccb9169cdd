package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/server/endpoint"
	"github.com/kbukum/edlflash/server/middleware"
)

// Server is the local HTTP bridge: a Gin engine mounted on a ServeMux, with
// the standard middleware applied around the whole mux.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server. The middleware chain wraps every route, including
// handlers mounted later with Handle.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s
}

// handler wraps h with the server-level middleware and h2c, so HTTP/2
// prior-knowledge clients can multiplex event streams over one connection.
func (s *Server) handler(h http.Handler) http.Handler {
	chain := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
	return h2c.NewHandler(chain(h), &http2.Server{
		MaxConcurrentStreams: 100,
		IdleTimeout:          s.config.IdleTimeout,
	})
}

// Name returns the component name.
func (s *Server) Name() string { return "http-server" }

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler including all middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("handler mounted", logger.Fields("pattern", pattern))
}

// RegisterDefaultEndpoints registers /healthz and /version.
func (s *Server) RegisterDefaultEndpoints(checker endpoint.HealthChecker) {
	s.engine.GET("/healthz", endpoint.Health(checker))
	s.engine.GET("/version", endpoint.Version())
}

// Start binds the address and serves in a goroutine. It returns once the
// listener is bound, so the port is ready when Start returns.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	s.logRoutes()
	return nil
}

// Stop gracefully shuts down the server within the configured timeout.
// Open event streams are closed when the timeout expires.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		_ = s.httpServer.Close()
		if !stderrors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
