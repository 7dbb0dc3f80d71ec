package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/coindcx-tracker/internal/model"
	"github.com/rickgao/coindcx-tracker/internal/refresh"
	"github.com/rickgao/coindcx-tracker/internal/snapshot"
)

// Snapshots answers market queries. *snapshot.Assembler satisfies it.
type Snapshots interface {
	Query(ctx context.Context, market string) (snapshot.Snapshot, error)
	ListPairs() []string
	ListTickers() []model.Ticker
}

// EngineStatus reports refresh engine health. *refresh.Engine satisfies it.
type EngineStatus interface {
	State() refresh.State
	Stats() refresh.Stats
}

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	Mode         string // gin mode (default: release)
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Deps are the components the routes read from.
type Deps struct {
	Snapshots Snapshots
	Engine    EngineStatus
	Stream    http.Handler // nil disables /stream
}

// Server is the inbound HTTP API.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	router *gin.Engine
	http   *http.Server
}

// New creates a Server and registers its routes.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.router = s.newRouter()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		accessLog(s.logger),
		recovery(s.logger),
		cors(),
	)

	router.GET("/livedata", s.liveData)
	router.POST("/livedata", s.liveData)
	router.GET("/pairs", s.pairs)
	router.GET("/ticker", s.tickers)
	router.GET("/health", s.health)
	if s.deps.Stream != nil {
		router.GET("/stream", gin.WrapH(s.deps.Stream))
	}

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found")
	})

	return router
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address. It returns nil after
// Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Hijacked websocket connections are not tracked; close the stream hub
// separately.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
