package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/config"
	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/storage"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	DB       *database.Database
	Archive  *storage.Archive // optional; nil when backups are not configured
	NewRelic *newrelic.Application
	Log      zerolog.Logger
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo     *echo.Echo
	Config   *config.Config
	Registry *records.Registry
	log      zerolog.Logger
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(deps.Log)

	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(middleware.Recover())
	if deps.NewRelic != nil {
		e.Use(newRelicTransaction(deps.NewRelic))
	}
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("1M"))
	if cfg.Server.StaticDir != "" {
		e.Use(spa(cfg.Server.StaticDir))
	}

	s := &Server{Echo: e, Config: cfg, Registry: records.NewRegistry(), log: deps.Log}
	if err := s.routes(deps); err != nil {
		return nil, err
	}
	s.log.Info().Strs("kinds", s.Registry.Names()).Bool("auth_required", cfg.Auth.Required).Msg("routes registered")
	return s, nil
}

// Start serves HTTP until ctx is cancelled or the listener fails. On cancel
// in-flight requests get up to ten seconds to finish.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("shutdown")
		}
	}()
	addr := ":" + s.Config.Server.Port
	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.Echo.Shutdown(ctx)
}
