package server

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/auth"
	"github.com/jeevithdev/spotq/internal/handler"
	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/repository"
)

func (s *Server) routes(deps Deps) error {
	cfg := s.Config
	pool := deps.DB.Pool

	system := &handler.SystemHandler{
		Registry:  s.Registry,
		DB:        deps.DB,
		Snapshots: deps.Archive, // a nil archive reports storage.ErrNotConfigured
		Log:       deps.Log,
		Started:   time.Now(),
	}
	authHandler := &handler.AuthHandler{
		Users:      repository.NewUserRepository(pool),
		Secret:     cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenLifetime(),
		BcryptCost: cfg.Auth.BcryptCost,
		Log:        deps.Log,
	}
	requireToken := auth.Middleware(cfg.Auth.JWTSecret)

	s.Echo.GET("/api/health", system.Health)

	v1 := s.Echo.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/auth/me", authHandler.Me, requireToken)
	v1.GET("/types", system.Types)
	v1.GET("/types/:kind", system.Type)

	var guard []echo.MiddlewareFunc
	if cfg.Auth.Required {
		guard = []echo.MiddlewareFunc{requireToken, auth.RequireWriter()}
	}
	sys := v1.Group("/system", guard...)
	sys.GET("/stats", system.Stats)
	sys.GET("/backups", system.Backups)

	for _, err := range []error{
		mount[model.ImpactTest, *model.ImpactTest](v1, s.Registry, records.ImpactTests, pool, deps.Log, guard),
		mount[model.TensileTest, *model.TensileTest](v1, s.Registry, records.TensileTests, pool, deps.Log, guard),
		mount[model.MicroTensileTest, *model.MicroTensileTest](v1, s.Registry, records.MicroTensileTests, pool, deps.Log, guard),
		mount[model.ProcessLog, *model.ProcessLog](v1, s.Registry, records.ProcessLogs, pool, deps.Log, guard),
		mount[model.MeltingLog, *model.MeltingLog](v1, s.Registry, records.MeltingLogs, pool, deps.Log, guard),
		mount[model.CupolaHolderLog, *model.CupolaHolderLog](v1, s.Registry, records.CupolaHolderLogs, pool, deps.Log, guard),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// mount registers kind and serves its CRUD routes under /api/v1/<kind>.
func mount[T any, P model.Record[T]](v1 *echo.Group, reg *records.Registry, kind records.Kind, pool *pgxpool.Pool, log zerolog.Logger, mw []echo.MiddlewareFunc) error {
	if err := reg.Register(kind, new(T)); err != nil {
		return err
	}
	store := repository.NewStore[T, P](pool, kind)
	handler.NewRecordHandler[T, P](kind, store, log).Register(v1.Group("/"+kind.Name, mw...))
	return nil
}
