package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/config"
)

// New builds the service logger. Console output is used for development and
// JSON for everything else; when a GELF address is configured every event is
// also shipped to Graylog over UDP. The returned closer releases the GELF
// socket and is never nil.
func New(cfg *config.ObservabilityConfig) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	var gelfErr error
	if cfg.Logging.GELFAddr != "" {
		var gw *GELFWriter
		gw, gelfErr = NewGELFWriter(cfg.Logging.GELFAddr, cfg.ServiceName)
		if gelfErr == nil {
			out = zerolog.MultiLevelWriter(out, gw)
			closer = gw
		}
	}

	l := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("env", cfg.Environment).
		Logger()
	if gelfErr != nil {
		l.Warn().Err(gelfErr).Str("addr", cfg.Logging.GELFAddr).Msg("gelf writer disabled")
	}
	return l, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
