package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/metrics"
)

// Metrics records the duration and status of every request. It must run inside Logger so the
// error handler has already written the status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			metrics.RecordAPIRequest(c.Request().Method, c.Path(), strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
			return nil
		}
	}
}
