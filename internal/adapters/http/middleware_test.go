package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	handler "github.com/samirrijal/minarah/internal/adapters/http"
)

func TestETag_NeverRevalidatesPendingList(t *testing.T) {
	f := newFixture(t)
	f.createSOS(t, "Ayesha", "Critical")

	resp, _ := f.do(t, "GET", "/v1/sos/pending", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		t.Errorf("pending list should carry no ETag, got %q", etag)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}

	req := httptest.NewRequest("GET", "/v1/sos/pending", nil)
	req.Header.Set("If-None-Match", `W/"0000000000000000"`)
	resp2, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp2.StatusCode != 200 {
		t.Errorf("expected 200 on conditional request, got %d", resp2.StatusCode)
	}
}

func TestETag_StaticDocsRevalidate(t *testing.T) {
	f := newFixture(t, func(d *handler.Dependencies) { d.OpenAPIPath = findOpenAPISpec(t) })

	resp, _ := f.do(t, "GET", "/docs/openapi.json", nil)
	etag := resp.Header.Get("ETag")
	if resp.StatusCode != 200 || etag == "" {
		t.Fatalf("expected 200 with ETag, got %d %q", resp.StatusCode, etag)
	}

	req := httptest.NewRequest("GET", "/docs/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp2.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp2.StatusCode)
	}
}

func TestSetLinkHeaders_KeepsFilters(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/v1/sos", func(c *fiber.Ctx) error {
		handler.SetLinkHeaders(c, handler.Pagination{Offset: 2, Limit: 2, Total: 10})
		return nil
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/sos?province=Sindh&offset=2&limit=2", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	link := resp.Header.Get("Link")
	for _, want := range []string{
		`</v1/sos?province=Sindh&offset=0&limit=2>; rel="first"`,
		`</v1/sos?province=Sindh&offset=0&limit=2>; rel="prev"`,
		`</v1/sos?province=Sindh&offset=4&limit=2>; rel="next"`,
		`</v1/sos?province=Sindh&offset=8&limit=2>; rel="last"`,
	} {
		if !strings.Contains(link, want) {
			t.Errorf("Link %q missing %s", link, want)
		}
	}
}

func TestRequestLogger_NamesSubject(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestid.New())
	app.Use(handler.RequestIDLogMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		handler.LoggerFromCtx(c.UserContext()).Info("handled")
		return c.SendStatus(204)
	})

	tests := []struct {
		path string
		key  string
		want interface{}
	}{
		{"/v1/sos/abc-123/assign", "sos_id", "abc-123"},
		{"/v1/sos/abc-123", "sos_id", "abc-123"},
		{"/v1/teams/t1/sos", "team", "t1"},
		{"/sos/sos/rescued/xyz", "sos_id", "xyz"},
		{"/v1/sos/pending", "sos_id", nil},
		{"/v1/teams/available", "team", nil},
	}
	for _, tt := range tests {
		buf.Reset()
		if _, err := app.Test(httptest.NewRequest("GET", tt.path, nil), -1); err != nil {
			t.Fatalf("%s: test request: %v", tt.path, err)
		}
		var rec map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("%s: decode log line %q: %v", tt.path, buf.String(), err)
		}
		if rec["request_id"] == nil || rec["request_id"] == "" {
			t.Errorf("%s: missing request_id in %v", tt.path, rec)
		}
		if got := rec[tt.key]; got != tt.want {
			t.Errorf("%s: expected %s=%v, got %v", tt.path, tt.key, tt.want, got)
		}
	}
}

func TestDocs_ServesOpenAPIDocument(t *testing.T) {
	f := newFixture(t, func(d *handler.Dependencies) { d.OpenAPIPath = findOpenAPISpec(t) })

	resp, body := f.do(t, "GET", "/docs", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "<title>Minarah Flood Response API 1.0.0 - Swagger UI</title>") {
		t.Errorf("page title not taken from the document: %s", body)
	}

	resp, body = f.do(t, "GET", "/docs/openapi.json", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI == "" || doc.Paths["/v1/sos/pending"] == nil {
		t.Errorf("unexpected document: openapi=%q, %d paths", doc.OpenAPI, len(doc.Paths))
	}

	resp, body = f.do(t, "GET", "/docs/openapi.yaml", nil)
	if resp.StatusCode != 200 || !strings.Contains(string(body), "Minarah Flood Response API") {
		t.Errorf("expected raw yaml, got %d", resp.StatusCode)
	}
}

func TestDocs_MissingDocumentIs404(t *testing.T) {
	f := newFixture(t, func(d *handler.Dependencies) { d.OpenAPIPath = "does/not/exist.yaml" })

	resp, body := f.do(t, "GET", "/docs", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "not_found" {
		t.Errorf("expected not_found, got %+v", e)
	}
}

func TestLegacyList_KeepsSuccessorLink(t *testing.T) {
	f := newFixture(t)
	f.createSOS(t, "a", "Low")
	f.createSOS(t, "b", "Low")

	resp, _ := f.do(t, "GET", "/sos/sos/sos?limit=1", nil)
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="successor-version"`) || !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected successor and next links, got %q", link)
	}
}
