package web

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spacesedan/bookpulse/internal/analyzer"
	"github.com/spacesedan/bookpulse/internal/monitoring"
)

const HEADER_REQUEST_ID = "X-Request-ID"

// requestID reuses the caller's id when it sent one.
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(HEADER_REQUEST_ID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(HEADER_REQUEST_ID, id)

		req := c.Request()
		c.SetRequest(req.WithContext(analyzer.WithRequestID(req.Context(), id)))
		return next(c)
	}
}

func observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		monitoring.HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()

		slog.Info("[WebServer] Request",
			slog.String("request_id", analyzer.RequestID(c.Request().Context())),
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)))
		return nil
	}
}
