// Package transport wires the LDP protocol core onto an Echo server: route
// registration, the pre-matching filter chain (§4.5), and the error
// handler that turns an apierror.ProblemError into a JSON problem
// response. Grounded on http/server.go's NewEchoServer/StartServer/
// GracefulShutdown/CustomHTTPErrorHandler pattern from the teacher.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
)

// Config controls the Echo instance's middleware stack.
type Config struct {
	Port            int
	Debug           bool
	BodyLimit       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	RateLimit       float64
}

// New builds an *echo.Echo configured with the standard middleware stack.
func New(cfg Config, logger *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))
	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{
				http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
				http.MethodDelete, http.MethodPatch, http.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, "Slug", "Link", "Prefer", "Digest", "Want-Digest",
			},
		}))
	}
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(SecurityHeaders())

	e.HTTPErrorHandler = ProblemErrorHandler(logger)
	return e
}

// Start runs the Echo server with the given read/write timeouts, blocking
// until it stops.
func Start(e *echo.Echo, cfg Config) error {
	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return e.StartServer(s)
}

// Shutdown gracefully stops e within timeout.
func Shutdown(e *echo.Echo, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Shutdown(ctx)
}

// SecurityHeaders adds the baseline defensive headers to every response.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-Content-Type-Options", "nosniff")
			c.Response().Header().Set("X-Frame-Options", "DENY")
			return next(c)
		}
	}
}

// ProblemDetail is the JSON body shape for a non-2xx response, the LDP
// analogue of the teacher's http.ErrorResponse.
type ProblemDetail struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ConstrainedBy string `json:"constrainedBy,omitempty"`
}

// ProblemErrorHandler classifies err as an apierror.ProblemError (wrapping
// any unclassified error as a 500, matching the teacher's default case in
// CustomHTTPErrorHandler) and writes the matching status and JSON body.
func ProblemErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		pe := apierror.As(err)

		if pe.Status >= 500 {
			logger.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
				"error":  pe.Error(),
			}).Error(pe.Title)
		}

		if c.Response().Committed {
			return
		}
		if pe.ConstrainedBy != "" {
			c.Response().Header().Set("Link", fmt.Sprintf(`<%s>; rel="http://www.w3.org/ns/ldp#constrainedBy"`, pe.ConstrainedBy))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(pe.Status)
			return
		}
		_ = c.JSON(pe.Status, ProblemDetail{
			Error:         http.StatusText(pe.Status),
			Message:       pe.Detail,
			ConstrainedBy: pe.ConstrainedBy,
		})
	}
}
