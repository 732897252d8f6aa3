package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case liveDispatchPath(path):
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "private, max-age=0"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}

// liveDispatchPath reports paths whose responses reflect dispatch state or
// hazards, which change minute to minute and must never be revalidated.
func liveDispatchPath(path string) bool {
	return strings.Contains(path, "/sos") ||
		strings.Contains(path, "/route") ||
		strings.Contains(path, "/teams") ||
		strings.HasPrefix(path, "/rescue/")
}
