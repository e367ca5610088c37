package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/invoices"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

// Extractor runs an extraction request end to end.
type Extractor interface {
	Extract(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Port       int
	Production bool
	BodyLimit  string // default 50M
}

// Deps are the components the handlers call into.
type Deps struct {
	Files    repository.FileRepository
	Invoices *invoices.Service
	Extract  Extractor
	Export   *export.Service
}

// Server exposes the invoice API over HTTP.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewServer(deps Deps, cfg Config, logger *zap.Logger) (*Server, error) {
	if deps.Files == nil || deps.Invoices == nil || deps.Extract == nil {
		return nil, errors.New("files, invoices and extract dependencies are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port == 0 {
		cfg.Port = 3001
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "50M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, deps: deps, cfg: cfg, logger: logger, now: time.Now}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(s.observe)
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc:  func(string) (bool, error) { return true, nil },
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.GET("/upload/:id", s.handleGetUpload)
	api.POST("/extract", s.handleExtract)

	inv := api.Group("/invoices")
	inv.GET("", s.handleListInvoices)
	inv.GET("/export", s.handleExportInvoices)
	inv.GET("/:id", s.handleGetInvoice)
	inv.POST("", s.handleCreateInvoice)
	inv.PUT("/:id", s.handleUpdateInvoice)
	inv.DELETE("/:id", s.handleDeleteInvoice)
}

// observe logs each request and records its metrics. Errors are rendered
// here so the final status is known.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), rid)))

		if err := next(c); err != nil {
			c.Error(err)
		}

		duration := time.Since(start)
		status := c.Response().Status
		route := c.Path()
		if route == "" || route == "/*" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(req.Method, route).Observe(duration.Seconds())

		s.logger.Info("http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", rid),
		)
		return nil
	}
}

type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "Invoice API is running",
		Timestamp: common.FormatTimestamp(s.now()),
	})
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
