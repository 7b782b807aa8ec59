// Package http exposes a small read-only status server for probes and
// operators.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chamberirc/chamberbnc/internal/interfaces/http/handlers"
	"github.com/chamberirc/chamberbnc/internal/interfaces/http/middleware"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

const shutdownTimeout = 10 * time.Second

type Router struct {
	engine        *gin.Engine
	statusHandler *handlers.StatusHandler
	logger        logger.Interface
}

func NewRouter(source handlers.StatusSource, log logger.Interface) *Router {
	r := &Router{
		engine:        gin.New(),
		statusHandler: handlers.NewStatusHandler(source),
		logger:        log,
	}
	r.SetupRoutes()
	return r
}

func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))

	r.engine.GET("/health", r.statusHandler.HealthCheck)
	r.engine.GET("/status", r.statusHandler.Status)
	r.engine.GET("/version", r.statusHandler.Version)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Infow("status server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		r.logger.Errorw("status server forced to shutdown", "error", err)
		return err
	}
	r.logger.Infow("status server stopped")
	return nil
}
