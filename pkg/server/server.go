package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/harrisonrobin/taskplan/pkg/extract"
	"github.com/harrisonrobin/taskplan/pkg/llm"
	"github.com/harrisonrobin/taskplan/pkg/planner"
)

// maxUploadBytes bounds multipart bodies held in memory.
const maxUploadBytes = 32 << 20

// Options customizes collaborators; zero values use the real ones.
type Options struct {
	Completer func(*config.Config) llm.Completer
	Now       extract.Clock
}

// Server exposes extraction, planning and export over HTTP. Every request
// builds its own session from the base config plus request overrides.
type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	logger *slog.Logger
	opts   Options
}

// New constructs the HTTP server with routes and middleware configured.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Completer == nil {
		opts.Completer = planner.CompleterFor
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.MaxMultipartMemory = maxUploadBytes

	srv := &Server{
		engine: router,
		cfg:    cfg,
		logger: logger,
		opts:   opts,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/extract", s.handleExtract)
		api.POST("/plan", s.handlePlan)
		api.POST("/export/:format", s.handleExport)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// session builds the per-request planner session.
func (s *Server) session(o planner.Overrides) (*planner.Session, error) {
	cfg := o.Apply(s.cfg)
	return planner.NewSession(cfg, s.opts.Completer(cfg), s.opts.Now)
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
