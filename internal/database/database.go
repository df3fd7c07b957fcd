package database

import (
	"context"
	"fmt"
	"time"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/config"
)

// Database wraps the shared connection pool.
type Database struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// Options tune how the pool is built.
type Options struct {
	// NewRelic adds a datastore segment tracer; segments are only recorded
	// for queries whose context carries a New Relic transaction.
	NewRelic bool
}

// PoolConfig translates the database configuration into a pgxpool config
// with query tracing attached.
func PoolConfig(cfg config.DatabaseConfig, logger zerolog.Logger, opts Options) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	pc.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second

	tracers := []pgx.QueryTracer{}
	if cfg.TraceLevel != "none" {
		level, err := tracelog.LogLevelFromString(cfg.TraceLevel)
		if err != nil {
			return nil, fmt.Errorf("trace level: %w", err)
		}
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(logger.With().Str("component", "pgx").Logger()),
			LogLevel: level,
		})
	}
	if opts.NewRelic {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	switch len(tracers) {
	case 0:
	case 1:
		pc.ConnConfig.Tracer = tracers[0]
	default:
		pc.ConnConfig.Tracer = multitracer.New(tracers...)
	}
	return pc, nil
}

// Connect builds the pool and waits until the database answers a ping. While
// the database is unreachable it retries after a fixed delay, until ctx is
// cancelled or ConnectMaxAttempts (0 means no limit) is exhausted.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger, opts Options) (*Database, error) {
	pc, err := PoolConfig(cfg, logger, opts)
	if err != nil {
		return nil, err
	}
	delay := cfg.RetryDelay()

	for attempt := 1; ; attempt++ {
		pool, err := tryConnect(ctx, pc)
		if err == nil {
			logger.Info().
				Str("host", pc.ConnConfig.Host).
				Str("database", pc.ConnConfig.Database).
				Int32("max_conns", pc.MaxConns).
				Msg("database connected")
			return &Database{Pool: pool, log: logger}, nil
		}
		if cfg.ConnectMaxAttempts > 0 && attempt >= cfg.ConnectMaxAttempts {
			return nil, fmt.Errorf("connect after %d attempts: %w", attempt, err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("database unreachable")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

func tryConnect(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc.Copy())
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close releases every pooled connection.
func (d *Database) Close() {
	d.Pool.Close()
}

// HealthStatus is reported by GET /api/health.
type HealthStatus struct {
	Status       string `json:"status"`
	Latency      string `json:"latency"`
	TotalConns   int32  `json:"totalConns"`
	IdleConns    int32  `json:"idleConns"`
	AcquiredConn int32  `json:"acquiredConns"`
	MaxConns     int32  `json:"maxConns"`
}

// Health pings the database and reports pool statistics. The returned error
// is the ping failure, if any; the status is filled in either way.
func (d *Database) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	err := d.Pool.Ping(ctx)
	st := d.Pool.Stat()
	hs := HealthStatus{
		Status:       "up",
		Latency:      time.Since(start).Round(time.Microsecond).String(),
		TotalConns:   st.TotalConns(),
		IdleConns:    st.IdleConns(),
		AcquiredConn: st.AcquiredConns(),
		MaxConns:     st.MaxConns(),
	}
	if err != nil {
		hs.Status = "down"
	}
	return hs, err
}
