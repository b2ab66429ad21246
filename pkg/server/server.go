package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duynguyendang/geoqa/internal/manager"
	"github.com/duynguyendang/geoqa/pkg/metrics"
	"github.com/duynguyendang/geoqa/pkg/service"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server holds the state for the REST API server.
type Server struct {
	manager *manager.OntologyManager
	qa      *service.QAService
	metrics *metrics.Metrics
	router  *gin.Engine
	logger  *slog.Logger
}

// NewServer creates a new Server instance. m may be nil.
func NewServer(mgr *manager.OntologyManager, qa *service.QAService, m *metrics.Metrics) *Server {
	r := gin.New()
	s := &Server{
		manager: mgr,
		qa:      qa,
		metrics: m,
		router:  r,
		logger:  slog.Default().With("component", "http"),
	}
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.setupRoutes()
	mgr.OnLoad(func(info manager.Info, err error) {
		s.metrics.RecordReload(err, info.Facts)
		if err == nil {
			s.qa.Purge()
		}
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/ask", s.handleAsk)
	v1.GET("/ask", s.handleAsk)
	v1.GET("/stats", s.handleStats)
	v1.GET("/schema", s.handleSchema)
	v1.POST("/reload", s.handleReload)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	info := s.manager.Info()
	if !info.Loaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "ontology": info})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ontology": info})
}

// requestID tags each request with an ID, reusing the caller's if given.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
