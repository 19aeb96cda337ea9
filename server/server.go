package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kydenul/lotofacil"
)

// Options carries the optional collaborators of a Server
type Options struct {
	Logger       *zap.Logger
	HealthCheck  func(ctx context.Context) error
	BreakerState func() float64
}

// Server is the HTTP front of a GameService
type Server struct {
	cfg        *lotofacil.Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
	sessions   *SessionManager
	metrics    *Metrics
}

// New builds the router for svc
func New(cfg *lotofacil.Config, svc lotofacil.GameService, opts Options) *Server {
	if cfg == nil {
		cfg = lotofacil.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		logger:   logger,
		sessions: NewSessionManager(cfg.Session),
		metrics:  NewMetrics(svc, opts.BreakerState),
	}
	s.routes(NewHandler(svc), opts.HealthCheck)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes(h *Handler, health func(ctx context.Context) error) {
	r := s.engine
	r.Use(gin.Recovery(), RequestLogger(s.logger), s.metrics.Middleware())
	if len(s.cfg.Server.AllowOrigins) > 0 {
		r.Use(CORS(s.cfg.Server.AllowOrigins))
	}

	r.GET("/healthz", Health(health))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api", s.sessions.Middleware(), s.sessions.BlockAnonymous())
	{
		api.GET("/status", h.Status)
		api.POST("/generate", h.Generate)
		api.POST("/activate", h.Activate)
		api.GET("/history", h.History)
		api.DELETE("/history", h.ClearHistory)
	}

	r.NoRoute(s.noRoute)
}

// noRoute answers unknown /api paths with JSON and serves the static front-end otherwise
func (s *Server) noRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api") || s.cfg.Server.StaticDir == "" || c.Request.Method != http.MethodGet {
		NotFound(c, "route not found")
		return
	}

	root := s.cfg.Server.StaticDir
	file := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+path)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}
	c.File(filepath.Join(root, "index.html"))
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}
