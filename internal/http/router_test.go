package http

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/task-manager-api/internal/account"
	"github.com/redmonkez12/task-manager-api/internal/auth"
	"github.com/redmonkez12/task-manager-api/internal/avatar"
	"github.com/redmonkez12/task-manager-api/internal/config"
	"github.com/redmonkez12/task-manager-api/internal/database/dbtest"
	"github.com/redmonkez12/task-manager-api/internal/email"
	"github.com/redmonkez12/task-manager-api/internal/logging"
	"github.com/redmonkez12/task-manager-api/internal/ratelimit"
	"github.com/redmonkez12/task-manager-api/internal/task"
	"github.com/redmonkez12/task-manager-api/internal/user"
)

const testKey = "0123456789abcdef0123456789abcdef"

// newTestAPI wires the full application over SQLite and miniredis
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
	db := dbtest.New(t)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	tokens, err := auth.NewPasetoService([]byte(testKey), 0)
	require.NoError(t, err)

	users := user.NewRepository(db)
	tasks := task.NewRepository(db)
	sessions := auth.NewSessions(tokens, users)

	dispatcher := email.NewDispatcher(email.NewLogTransport(logger), logger, 10, time.Second)
	dispatcher.Start()
	t.Cleanup(dispatcher.Close)

	avatars := avatar.NewService(avatar.NewDBStore(users), 1_000_000, 4096*4096)
	accounts := account.NewService(
		db, users, tasks, sessions,
		auth.NewPasswordHasher(auth.PasswordParams{Time: 1, Memory: 1024, Threads: 1}),
		dispatcher, avatars, logger,
	)

	cfg := &config.Config{Server: config.ServerConfig{Env: "test"}}
	return NewRouter(cfg, Handlers{
		Account: account.NewHandler(accounts, ratelimit.NewLimiter(redisClient, 100, time.Minute)),
		Task:    task.NewHandler(task.NewService(tasks)),
		Avatar:  avatar.NewHandler(avatars, 1_000_000),
	}, auth.NewMiddleware(sessions), logger)
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, api http.Handler, email string) (*client, user.PublicUser) {
	t.Helper()
	c := &client{t: t, handler: api}
	rec := c.do(http.MethodPost, "/users", `{"name":"A","email":"`+email+`","password":"supersecret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp account.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	c.token = resp.Token
	return c, resp.User
}

func decodeTasks(t *testing.T, rec *httptest.ResponseRecorder) []task.Task {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tasks []task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	return tasks
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	api := newTestAPI(t)
	register(t, api, "a@x.com")

	c := &client{t: t, handler: api}
	rec := c.do(http.MethodPost, "/users", `{"name":"A","email":"a@x.com","password":"supersecret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestRouter_CompletedFilterFollowsUpdates(t *testing.T) {
	api := newTestAPI(t)
	a, _ := register(t, api, "a@x.com")

	rec := a.do(http.MethodPost, "/tasks", `{"description":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.False(t, created.Completed)

	assert.Empty(t, decodeTasks(t, a.do(http.MethodGet, "/tasks?completed=true", "")))

	rec = a.do(http.MethodPatch, "/tasks/"+created.ID.String(), `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	done := decodeTasks(t, a.do(http.MethodGet, "/tasks?completed=true", ""))
	require.Len(t, done, 1)
	assert.Equal(t, created.ID, done[0].ID)
}

func TestRouter_TasksAreOwnerScoped(t *testing.T) {
	api := newTestAPI(t)
	a, _ := register(t, api, "a@x.com")
	b, _ := register(t, api, "b@x.com")

	rec := a.do(http.MethodPost, "/tasks", `{"description":"private"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	path := "/tasks/" + created.ID.String()
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodPatch, path, `{"completed":true}`).Code)
	assert.Equal(t, http.StatusNotFound, b.do(http.MethodDelete, path, "").Code)
	assert.Empty(t, decodeTasks(t, b.do(http.MethodGet, "/tasks", "")))

	rec = a.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":false`)
}

func TestRouter_DeleteAccountCascades(t *testing.T) {
	api := newTestAPI(t)
	a, _ := register(t, api, "a@x.com")

	for range 3 {
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/tasks", `{"description":"chore"}`).Code)
	}
	require.Len(t, decodeTasks(t, a.do(http.MethodGet, "/tasks", "")), 3)

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/users/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/tasks", "").Code)

	// a new account with the same email starts empty
	again, _ := register(t, api, "a@x.com")
	assert.Empty(t, decodeTasks(t, again.do(http.MethodGet, "/tasks", "")))
}

func TestRouter_Unauthenticated(t *testing.T) {
	api := newTestAPI(t)
	anon := &client{t: t, handler: api}

	for _, path := range []string{"/tasks", "/users/me"} {
		rec := anon.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"please authenticate","code":"UNAUTHENTICATED"}`, rec.Body.String())
	}

	anon.token = "garbage"
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/tasks", "").Code)
}

func TestRouter_AvatarLifecycle(t *testing.T) {
	api := newTestAPI(t)
	a, me := register(t, api, "a@x.com")

	var img bytes.Buffer
	require.NoError(t, jpeg.Encode(&img, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", "me.jpg")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.Equal(t, http.StatusOK, a.send(req).Code)

	anon := &client{t: t, handler: api}
	rec := anon.do(http.MethodGet, "/users/"+me.ID.String()+"/avatar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	decoded, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 250, decoded.Bounds().Dx())
	assert.Equal(t, 250, decoded.Bounds().Dy())

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/users/me/avatar", "").Code)
	assert.Equal(t, http.StatusNotFound, anon.do(http.MethodGet, "/users/"+me.ID.String()+"/avatar", "").Code)
}
