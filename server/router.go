package server

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/they4kman/sweepengine/config"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

func NewRouter(h *Handler, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	games := r.Group("/games")
	games.POST("", h.CreateGame)
	games.GET("/:id", h.GetGame)
	games.DELETE("/:id", h.DeleteGame)
	games.POST("/:id/reveal", h.Reveal)
	games.POST("/:id/reset", h.Reset)
	games.GET("/:id/ws", h.HandleWS)

	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

// Run serves the API on cfg.Addr until ctx is done.
func Run(ctx context.Context, cfg config.Server, log logrus.FieldLogger) error {
	store := NewMemoryStore()
	hub := NewHub(log)
	router := NewRouter(NewHandler(store, hub, log), log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving http")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down http server")
	}
	return nil
}
