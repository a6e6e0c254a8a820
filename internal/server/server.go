package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partmap/internal/config"
	"partmap/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.Config
	batch  *pipeline.BatchService
	router *gin.Engine
	now    func() time.Time
}

func New(cfg config.Config) *Server {
	s := &Server{
		cfg:    cfg,
		batch:  pipeline.NewBatchService(cfg),
		router: gin.New(),
		now:    time.Now,
	}
	s.router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestLogger(), gin.Recovery())

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/replace", s.Replace)
		v1.POST("/resolve", s.Resolve)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.String("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.L().Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()))
	}
}
