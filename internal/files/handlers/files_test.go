package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/common/middleware"
	"mjcf-editor/internal/files/repository"
	"mjcf-editor/internal/files/service"
)

func newApp(t *testing.T, maxMB int) (*fiber.App, *FilesHandler) {
	t.Helper()
	dir := t.TempDir()
	db, err := repository.OpenSQLite(filepath.Join(dir, "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	require.NoError(t, repo.Init(context.Background(), "../../../migrations/001_init_files.sql"))

	h := NewFilesHandler(repo, service.NewFileStorage(filepath.Join(dir, "uploads")), maxMB)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Post("/files", h.Upload)
	app.Get("/files", h.List)
	app.Get("/files/:id", h.Get)
	app.Get("/files/:id/download", h.Download)
	app.Delete("/files/:id", h.Delete)
	return app, h
}

func upload(t *testing.T, app *fiber.App, name string, content []byte) (*http.Response, []byte) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func get(t *testing.T, app *fiber.App, method, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestUploadDownloadDelete(t *testing.T) {
	app, h := newApp(t, 50)
	h.now = func() time.Time { return time.UnixMilli(1700000000123) }

	resp, data := upload(t, app, "robot.xml", []byte("<mujoco/>"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var f filePayload
	require.NoError(t, json.Unmarshal(data, &f))
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "1700000000123-robot.xml", f.Filename)
	assert.Equal(t, "robot.xml", f.OriginalName)
	assert.Equal(t, int64(9), f.Size)
	assert.Equal(t, "2023-11-14T22:13:20.123Z", f.UploadedAt)

	resp, data = get(t, app, http.MethodGet, "/files/"+f.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var meta filePayload
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, f, meta)

	resp, data = get(t, app, http.MethodGet, "/files/"+f.ID+"/download")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<mujoco/>", string(data))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "robot.xml")

	resp, _ = get(t, app, http.MethodDelete, "/files/"+f.ID)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = get(t, app, http.MethodGet, "/files/"+f.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"File not found"}`, string(data))
}

func TestUploadRejects(t *testing.T) {
	app, _ := newApp(t, 1)

	resp, data := upload(t, app, "notes.txt", []byte("hi"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "not supported")

	resp, data = upload(t, app, "huge.stl", bytes.Repeat([]byte{1}, 1024*1024+1))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "File too large")

	req := httptest.NewRequest(http.MethodPost, "/files", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListNewestFirst(t *testing.T) {
	app, h := newApp(t, 50)

	tick := time.UnixMilli(1700000000000)
	h.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	_, _ = upload(t, app, "first.xml", []byte("<mujoco/>"))
	_, _ = upload(t, app, "second.urdf", []byte("<robot/>"))

	resp, data := get(t, app, http.MethodGet, "/files")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list listResponse
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Files, 2)
	assert.Equal(t, "second.urdf", list.Files[0].OriginalName)
	assert.Equal(t, "first.xml", list.Files[1].OriginalName)
}

func TestListEmpty(t *testing.T) {
	app, _ := newApp(t, 50)
	_, data := get(t, app, http.MethodGet, "/files")
	assert.JSONEq(t, `{"files":[]}`, string(data))
}
