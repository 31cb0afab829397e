package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/metrics"
)

const ctxLogger = "logger"

// RequestLogger tags each request with an X-Request-ID (kept from the
// client when present), stores a request-scoped logger in the context and
// logs one line when the handler returns.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			entry := log.WithField("request_id", rid)
			c.Set(ctxLogger, entry)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":  req.Method,
				"path":    c.Path(),
				"uri":     req.RequestURI,
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
				"ip":      c.RealIP(),
			}
			if uid, ok := UserID(c); ok {
				fields["user_id"] = uid
			}
			entry = entry.WithFields(fields)
			switch status := c.Response().Status; {
			case status >= 500:
				entry.WithError(err).Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return nil
		}
	}
}

// Logger returns the request-scoped logger installed by RequestLogger, or
// fallback when none is set.
func Logger(c echo.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := c.Get(ctxLogger).(logrus.FieldLogger); ok {
		return l
	}
	return fallback
}

// Metrics feeds the HTTP collectors.  The route template labels the
// request so path parameters do not explode cardinality.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.InFlight(1)
			defer metrics.InFlight(-1)

			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = 500
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, path, status, time.Since(start))
			return err
		}
	}
}
