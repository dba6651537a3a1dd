// internal/api/middleware.go
package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vacancy-workers/internal/common/metrics"
)

// recordMetrics counts every request by route pattern rather than raw path so
// application ids do not explode label cardinality.
func (s *Server) recordMetrics(c *fiber.Ctx) error {
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	route := "unmatched"
	if r := c.Route(); r != nil && r.Path != "/" {
		route = r.Path
	}
	metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()

	return err
}
