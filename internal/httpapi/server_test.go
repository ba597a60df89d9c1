package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"inkpad/internal/blog"
	"inkpad/internal/database"
	"inkpad/internal/domain"
	"inkpad/internal/httpapi"
	"inkpad/internal/importer"
	"inkpad/internal/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *httpapi.APIError `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "api.sqlite"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	limiter := ratelimiter.New(ratelimiter.Config{MaxAttempts: 2, BlockDuration: time.Minute}, log)
	t.Cleanup(limiter.Stop)

	svc := blog.New(db, nil, limiter, nil, blog.Options{PageSize: 10}, log)
	srv := httpapi.New(svc, importer.New(svc, log), gin.TestMode, log)

	return &testServer{t: t, handler: srv.Handler()}
}

func (ts *testServer) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func (ts *testServer) json(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	return ts.do(req, token)
}

func (ts *testServer) signUp(username string) string {
	ts.t.Helper()

	rec, _ := ts.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-pass",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := ts.json(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret-pass",
	})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(ts.t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(ts.t, login.Token)

	return login.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))

	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.json(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	rec, env := ts.json(http.MethodPost, "/api/posts", token, domain.PostInput{
		Title:     "Caching notes",
		Content:   "# Caching\n\nCaches make **reads** fast. They also make invalidation hard.",
		Tags:      []string{"go", "cache"},
		Published: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[domain.Post](t, env)
	assert.NotEmpty(t, created.Summary)
	assert.Len(t, created.Tags, 2)

	rec, env = ts.json(http.MethodGet, "/api/posts/"+itoa(created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[domain.Post](t, env).Views)

	rec, env = ts.json(http.MethodGet, "/api/posts?page=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[domain.Post]](t, env)
	assert.Equal(t, int64(1), page.Total)

	rec, env = ts.json(http.MethodGet, "/api/search?q=invalidation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.Page[domain.Post]](t, env).Items, 1)

	rec, _ = ts.json(http.MethodGet, "/api/posts/"+itoa(created.ID)+"/export", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename*=UTF-8''Caching_notes.md", rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "# Caching notes")

	rec, _ = ts.json(http.MethodDelete, "/api/posts/"+itoa(created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = ts.json(http.MethodGet, "/api/posts/"+itoa(created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.json(http.MethodPost, "/api/posts", "", domain.PostInput{Title: "x", Content: "y"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)

	rec, _ = ts.json(http.MethodGet, "/api/dashboard", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := ts.signUp("alice")

	rec, env = ts.json(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[domain.User](t, env).Username)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec, _ = ts.json(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.json(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnershipAndDrafts(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp("alice")
	bob := ts.signUp("bobby")

	rec, env := ts.json(http.MethodPost, "/api/posts", alice, domain.PostInput{Title: "Draft", Content: "Not yet."})
	require.Equal(t, http.StatusCreated, rec.Code)
	draft := decode[domain.Post](t, env)

	rec, _ = ts.json(http.MethodGet, "/api/posts/"+itoa(draft.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.json(http.MethodGet, "/api/posts/"+itoa(draft.ID), alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.json(http.MethodPut, "/api/posts/"+itoa(draft.ID), bob, domain.PostInput{Title: "Mine", Content: "Now."})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Code)

	rec, _ = ts.json(http.MethodGet, "/api/posts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationAndConflicts(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	rec, env := ts.json(http.MethodPost, "/api/posts", token, domain.PostInput{Title: "  ", Content: "body"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "bad_request", env.Error.Code)

	rec, _ = ts.json(http.MethodPost, "/api/categories", token, map[string]string{"name": "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = ts.json(http.MethodPost, "/api/categories", token, map[string]string{"name": "Go"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "conflict", env.Error.Code)

	rec, _ = ts.json(http.MethodGet, "/api/categories/999/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp("alice")

	bad := map[string]string{"username": "alice", "password": "wrong-pass"}

	rec, _ := ts.json(http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := ts.json(http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "rate_limited", env.Error.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec, _ = ts.json(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret-pass",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestBookmarks(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	rec, env := ts.json(http.MethodPost, "/api/posts", token, domain.PostInput{Title: "Keep", Content: "Worth it.", Published: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[domain.Post](t, env)

	rec, env = ts.json(http.MethodPost, "/api/posts/"+itoa(post.ID)+"/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, env)["bookmarked"])

	rec, env = ts.json(http.MethodGet, "/api/bookmarks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Bookmark](t, env), 1)

	rec, env = ts.json(http.MethodPost, "/api/posts/"+itoa(post.ID)+"/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[map[string]bool](t, env)["bookmarked"])
}

func TestImportMarkdown(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	req := multipartRequest(t, "/api/import/markdown", "file", map[string]string{
		"note.md": "---\ntitle: Imported\ntags: a, b\n---\nBody text.",
	})

	rec, env := ts.do(req, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	post := decode[domain.Post](t, env)
	assert.Equal(t, "Imported", post.Title)
	assert.False(t, post.Published)

	req = multipartRequest(t, "/api/import/markdown/batch", "files", map[string]string{
		"one.md":    "# One\n\nFirst.",
		"image.png": "png",
	})

	rec, env = ts.do(req, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[importer.Result](t, env)
	assert.Len(t, result.Imported, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "image.png", result.Failed[0].Source)
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	req := multipartRequest(t, "/api/import/markdown", "file", map[string]string{"big.md": "# Big"})
	req.ContentLength = httpapi.MaxUploadBytes + 1

	rec, env := ts.do(req, token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "payload_too_large", env.Error.Code)
}

func TestPreviewSummary(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUp("alice")

	rec, env := ts.json(http.MethodPost, "/api/summary/preview", token, map[string]string{
		"content": "Go makes concurrency approachable. Channels connect goroutines.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, env)["summary"])

	rec, _ = ts.json(http.MethodPost, "/api/summary/preview", token, map[string]string{"content": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartRequest(t *testing.T, path, field string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)

		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
