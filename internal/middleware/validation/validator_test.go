package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.All("/", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func post(t *testing.T, app *fiber.App, contentType, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestValidationAllowsJSON(t *testing.T) {
	app := newTestApp(Config{})
	resp := post(t, app, "application/json", `{"query": "hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidationAllowsMultipart(t *testing.T) {
	app := newTestApp(Config{})
	resp := post(t, app, "multipart/form-data; boundary=x", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidationRejectsUnsupportedContentType(t *testing.T) {
	app := newTestApp(Config{})
	resp := post(t, app, "text/xml", "<query/>")
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestValidationRejectsOverlongQuery(t *testing.T) {
	app := newTestApp(Config{MaxQueryLength: 10})
	resp := post(t, app, "application/json", `{"query": "this query is definitely too long"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidationIgnoresNonPost(t *testing.T) {
	app := newTestApp(Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Content-Type", "text/xml")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
