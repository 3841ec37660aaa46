package proxy

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method, path, query, body, contentType string
}

func upstream(t *testing.T, got *seen) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*got = seen{r.Method, r.URL.Path, r.URL.RawQuery, string(data), r.Header.Get("Content-Type")}
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMountForwardsRaw(t *testing.T) {
	var got seen
	srv := upstream(t, &got)

	app := fiber.New()
	Mount(app.Group("/api/v1"), "/sessions", srv.URL)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/abc/xml?x=1", strings.NewReader("<mujoco/>"))
	req.Header.Set("Content-Type", "application/xml")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"ok":true}`, string(body))

	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/sessions/abc/xml", got.path)
	assert.Equal(t, "x=1", got.query)
	assert.Equal(t, "<mujoco/>", got.body)
	assert.Equal(t, "application/xml", got.contentType)
}

func TestMountRoot(t *testing.T) {
	var got seen
	srv := upstream(t, &got)

	app := fiber.New()
	Mount(app, "/sessions", srv.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "/sessions", got.path)
	assert.Equal(t, http.MethodPost, got.method)
}

func TestProxyToFixedURL(t *testing.T) {
	var got seen
	srv := upstream(t, &got)

	app := fiber.New()
	app.Get("/api/v1/health/editor", ProxyTo(srv.URL+"/health/ready"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health/editor?verbose=1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/health/ready", got.path)
	assert.Empty(t, got.query)
}

func TestForwardMultipart(t *testing.T) {
	var got seen
	srv := upstream(t, &got)

	app := fiber.New()
	app.Post("/files", ProxyTo(srv.URL+"/files"))

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "robot.urdf")
	require.NoError(t, err)
	part.Write([]byte("<robot/>"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, err = app.Test(req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data"))
	assert.Contains(t, got.body, `filename="robot.urdf"`)
	assert.Contains(t, got.body, "<robot/>")
}

func TestForwardUnreachable(t *testing.T) {
	app := fiber.New()
	app.Get("/x", ProxyTo("http://127.0.0.1:1/x"))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
