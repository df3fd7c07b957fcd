package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/config"
	"github.com/jeevithdev/spotq/internal/response"
)

// errorHandler renders errors that escape handlers (routing misses, auth
// middleware, panics) in the response envelope.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, response.Envelope{Success: false, Message: msg})
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error()
			case v.Status >= http.StatusBadRequest:
				ev = log.Warn()
			}
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// newRelicTransaction starts an APM transaction per request and stores it on
// the request context, where the pgx tracer picks it up.
func newRelicTransaction(app *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			txn := app.StartTransaction(req.Method + " " + c.Path())
			defer txn.End()

			txn.SetWebRequestHTTP(req)
			c.Response().Writer = txn.SetWebResponse(c.Response().Writer)
			c.SetRequest(newrelic.RequestWithTransactionContext(req, txn))

			err := next(c)
			if err != nil {
				txn.NoticeError(err)
			}
			return err
		}
	}
}

// NewRelicApp starts the APM agent, or returns nil when no license key is
// configured.
func NewRelicApp(cfg *config.ObservabilityConfig) (*newrelic.Application, error) {
	if !cfg.NewRelicEnabled() {
		return nil, nil
	}
	return newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.ServiceName+"-"+cfg.Environment),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	)
}

// spa serves the prebuilt frontend from dir, falling back to index.html for
// client-side routes. API paths are never served from disk.
func spa(dir string) echo.MiddlewareFunc {
	return middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  dir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api")
		},
	})
}
