package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"forecast-api/pkg/metrics"
)

// SetupMetrics records every API request by route template, method and status
func SetupMetrics(e *echo.Echo, collector *metrics.Collector) {
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipObservability(c) {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			collector.RecordAPIRequest(path, c.Request().Method, strconv.Itoa(status), time.Since(start))
			return err
		}
	})
}
