package http

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// DefaultOpenAPIPath is where api/openapi.yaml sits relative to the repo root.
const DefaultOpenAPIPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s %s - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.json',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// apiDocs is the OpenAPI document loaded and validated at startup.
type apiDocs struct {
	page []byte
	yaml []byte
	json []byte
}

func loadAPIDocs(path string) (*apiDocs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	js, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	page := fmt.Sprintf(swaggerUIHTML, html.EscapeString(doc.Info.Title), html.EscapeString(doc.Info.Version))
	return &apiDocs{page: []byte(page), yaml: raw, json: js}, nil
}

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml and /docs/openapi.json. A document that fails to load
// or validate leaves the routes answering 404.
func SetupDocs(app *fiber.App, path string) {
	if path == "" {
		path = DefaultOpenAPIPath
	}
	docs, err := loadAPIDocs(path)
	if err != nil {
		slog.Warn("api docs disabled", "error", err)
	}

	serve := func(contentType string, body func(*apiDocs) []byte) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if docs == nil {
				return errNotFound(c, "api documentation not available")
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send(body(docs))
		}
	}

	app.Get("/docs", serve("text/html; charset=utf-8", func(d *apiDocs) []byte { return d.page }))
	app.Get("/docs/openapi.yaml", serve("application/yaml", func(d *apiDocs) []byte { return d.yaml }))
	app.Get("/docs/openapi.json", serve(fiber.MIMEApplicationJSON, func(d *apiDocs) []byte { return d.json }))
}
