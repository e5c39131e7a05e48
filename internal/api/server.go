// Package api serves the journal over a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tradejournal/internal/journal"
)

// Server exposes a journal.Service over HTTP.
type Server struct {
	svc    *journal.Service
	logger zerolog.Logger
	router *gin.Engine
}

// NewServer builds the router. Call gin.SetMode before this to change the
// gin mode.
func NewServer(svc *journal.Service, logger zerolog.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
		router: gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(RequestLogger(logger))
	s.router.Use(WithRequestLogger(logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")

	api.GET("/report", s.getReport)

	api.GET("/trades", s.listTrades)
	api.POST("/trades", s.createTrade)
	api.DELETE("/trades", s.clearTrades)
	api.GET("/trades/:id", s.getTrade)
	api.DELETE("/trades/:id", s.deleteTrade)

	api.GET("/methods", s.listMethods)
	api.POST("/methods", s.createMethod)
	api.DELETE("/methods/:name", s.deleteMethod)

	api.GET("/images/:ref", s.getImage)
	api.GET("/export.csv", s.exportCSV)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("API server shutting down")
	return srv.Shutdown(shutdownCtx)
}
