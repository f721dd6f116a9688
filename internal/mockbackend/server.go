// Package mockbackend serves a canned chat endpoint with the same JSON
// shapes as the real question-answering backend, for local development and
// tests.
package mockbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/logger"
)

// DefaultAddr matches the port of the real backend.
const DefaultAddr = ":5000"

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// Server is the mock backend.
type Server struct {
	engine  *gin.Engine
	handler http.Handler
	log     *slog.Logger
}

// New builds the router. Every origin is allowed, like the real backend.
func New() *Server {
	s := &Server{log: logger.WithComponent("mockbackend")}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(s.requestLogging())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST(chatapi.ChatPath, s.chat)

	s.engine = r
	s.handler = cors.AllowAll().Handler(r)
	return s
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("mock backend listening", "addr", addr)
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
		s.log.Info("mock backend shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogging logs one line per request once the response is written.
func (s *Server) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.log.Info("api_request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
