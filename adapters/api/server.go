package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gocompare/app"
	"gocompare/internal"
	"gocompare/internal/errors"
	"gocompare/internal/render"

	"github.com/gin-gonic/gin"
)

// Server exposes the comparison service over HTTP
type Server struct {
	router  *gin.Engine
	service *app.ComparisonService
	logger  *internal.Logger
	http    *http.Server
}

// NewServer creates the router and registers the routes
func NewServer(service *app.ComparisonService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	router := gin.New()
	s := &Server{router: router, service: service, logger: logger.With("api")}
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.fail(c, errors.InternalError("request failed", fmt.Errorf("panic: %v", recovered)))
	}))
	router.Use(s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	v1.POST("/compare", s.handleCompare)
	v1.POST("/compare/batch", s.handleBatch)
}

// Handler returns the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	cfg := s.service.Config()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"alpha":              cfg.Alpha,
		"normality_strategy": cfg.NormalityStrategy,
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.BadRequest("invalid request body", err))
		return
	}

	cfg := engineConfig(s.service.Config(), req.Alpha, req.NormalityStrategy)
	run, err := s.service.CompareSamples(c.Request.Context(), []app.PairInput{{Name: "a_vs_b", A: req.A, B: req.B}}, cfg)
	if err != nil {
		s.fail(c, err)
		return
	}

	m := run.Metrics[0]
	if wantsRendered(c) {
		s.writeRendered(c, []render.Section{{Title: "A vs B", Report: m.Report}})
		return
	}
	c.JSON(http.StatusOK, CompareResponse{ID: run.ID, InputHash: m.InputHash, Report: m.Report})
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.BadRequest("invalid request body", err))
		return
	}

	cfg := engineConfig(s.service.Config(), req.Alpha, req.NormalityStrategy)
	run, err := s.service.CompareSamples(c.Request.Context(), req.Pairs, cfg)
	if err != nil {
		s.fail(c, err)
		return
	}

	if wantsRendered(c) {
		sections := make([]render.Section, len(run.Metrics))
		for i, m := range run.Metrics {
			sections[i] = render.Section{Title: m.Key.String(), Report: m.Report}
		}
		s.writeRendered(c, sections)
		return
	}
	c.JSON(http.StatusOK, run)
}

func wantsRendered(c *gin.Context) bool {
	f := c.Query("format")
	return f != "" && f != string(render.FormatJSON)
}

// writeRendered answers with ?format=text|markdown|html
func (s *Server) writeRendered(c *gin.Context, sections []render.Section) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		s.fail(c, errors.BadRequest("invalid format", err))
		return
	}
	contentType := map[render.Format]string{
		render.FormatText:     "text/plain; charset=utf-8",
		render.FormatMarkdown: "text/markdown; charset=utf-8",
		render.FormatHTML:     "text/html; charset=utf-8",
	}[format]

	c.Status(http.StatusOK)
	c.Header("Content-Type", contentType)
	if err := render.Write(c.Writer, format, "Comparison", sections); err != nil {
		s.logger.Error("render %s: %v", format, err)
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
