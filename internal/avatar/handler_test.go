package avatar

import (
	"bytes"
	"context"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/task-manager-api/internal/user"
)

func newTestRouter(t *testing.T, maxBytes int64) (http.Handler, *user.User) {
	t.Helper()
	svc, u := newDBService(t)
	svc.maxBytes = maxBytes
	h := NewHandler(svc, maxBytes)

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next(w, r.WithContext(user.NewContext(r.Context(), u)))
		}
	}

	r := chi.NewRouter()
	r.Post("/users/me/avatar", authed(h.Upload))
	r.Delete("/users/me/avatar", authed(h.Delete))
	r.Get("/users/{id}/avatar", h.Get)
	return r, u
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", body).WithContext(context.Background())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_UploadAndGet(t *testing.T) {
	h, u := newTestRouter(t, testMaxBytes)

	rec := upload(t, h, "avatar", "me.jpg", testJPEG(t, 10, 10))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(h, "/users/"+u.ID.String()+"/avatar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	cfg, format, err := image.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 250, cfg.Height)
}

func TestHandler_UploadRejections(t *testing.T) {
	h, u := newTestRouter(t, 2000)

	rec := upload(t, h, "avatar", "notes.txt", testPNG(t, 2, 2))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "please upload an image document")

	rec = upload(t, h, "avatar", "big.png", make([]byte, 3000))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AVATAR_TOO_LARGE")

	rec = upload(t, h, "picture", "me.png", testPNG(t, 2, 2))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AVATAR_REQUIRED")

	rec = get(h, "/users/"+u.ID.String()+"/avatar")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetNotFoundHasEmptyBody(t *testing.T) {
	h, u := newTestRouter(t, testMaxBytes)

	for _, path := range []string{
		"/users/" + u.ID.String() + "/avatar",
		"/users/" + uuid.NewString() + "/avatar",
		"/users/not-a-uuid/avatar",
	} {
		rec := get(h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, u := newTestRouter(t, testMaxBytes)

	require.Equal(t, http.StatusOK, upload(t, h, "avatar", "me.png", testPNG(t, 4, 4)).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/me/avatar", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, get(h, "/users/"+u.ID.String()+"/avatar").Code)
}
