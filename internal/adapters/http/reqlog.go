package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	loggerKey    ctxKey = "logger"
)

// subjectRoutes name the SOS or team a path acts on. Middleware runs before
// route matching, so the ids are read from the path here.
var subjectRoutes = []struct {
	pattern string
	attr    string
}{
	{"/v1/sos/:id", "sos_id"},
	{"/v1/sos/:id/assign", "sos_id"},
	{"/v1/sos/:id/rescue", "sos_id"},
	{"/v1/teams/:id", "team"},
	{"/v1/teams/:id/availability", "team"},
	{"/v1/teams/:id/sos", "team"},
	{"/sos/sos/assign/:id", "sos_id"},
	{"/sos/sos/rescued/:id", "sos_id"},
	{"/sos/sos/assigned/:id", "team_email"},
	{"/rescue/rescue/status/:id", "team"},
}

// Fixed segments that share a position with an id.
var notSubjects = map[string]bool{"pending": true, "filter": true, "available": true}

// RequestIDLogMiddleware stores a request-scoped *slog.Logger in the user
// context carrying the request id and, when the path names one, the SOS or
// rescue team being acted on.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var attrs []any
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, "request_id", rid)
			ctx = context.WithValue(ctx, requestIDKey, rid)
		}
		if key, val, ok := pathSubject(c.Path()); ok {
			attrs = append(attrs, key, val)
		}
		if len(attrs) == 0 {
			return c.Next()
		}

		ctx = context.WithValue(ctx, loggerKey, slog.Default().With(attrs...))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// pathSubject returns the log attribute for the id in path, if any.
func pathSubject(path string) (string, string, bool) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for _, r := range subjectRoutes {
		if !matchPattern(path, r.pattern) {
			continue
		}
		pat := strings.Split(strings.Trim(r.pattern, "/"), "/")
		for i, p := range pat {
			if p == ":id" && !notSubjects[segs[i]] {
				return r.attr, segs[i], true
			}
		}
	}
	return "", "", false
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
