// Package service exposes the fixture validator over HTTP.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/percolate/pedantic/raml"
	"github.com/percolate/pedantic/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds a fixture payload.
const maxBodySize = 10 * 1024 * 1024

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the Gin engine serving one validator.
type Server struct {
	engine    *gin.Engine
	validator *validator.Validator
	log       raml.Logger
}

// NewServer constructs a Server with all HTTP routes configured. A nil
// logger disables request logging.
func NewServer(v *validator.Validator, logger raml.Logger) *Server {
	logger = raml.OrNop(logger)
	gin.SetMode(gin.ReleaseMode)

	s := &Server{engine: gin.New(), validator: v, log: logger}
	s.engine.Use(gin.Recovery(), requestIDMiddleware(), metricsMiddleware(), requestLogger(logger))

	s.engine.POST("/", s.validate)
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("validator service listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("validator service shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
