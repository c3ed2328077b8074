package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"companion-lite/internal/chat"
	"companion-lite/internal/quota"
	"companion-lite/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*gin.Engine, *user.Storage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := user.NewStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	h := NewHandler(storage, quota.NewTracker(storage.DB()))

	r := gin.New()
	r.GET("/overview", h.Overview)
	r.GET("/usage", h.Usage)
	r.GET("/users", h.ListUsers)
	r.PATCH("/users/:id/block", h.SetBlocked)
	r.GET("/health", h.Health)

	return r, storage
}

func TestOverview(t *testing.T) {
	r, storage := newTestHandler(t)

	u := &user.User{Email: "a@example.com", AuthProvider: user.ProviderLocal}
	require.NoError(t, storage.Create(u))

	store := chat.NewStore(storage.DB())
	require.NoError(t, store.Append(&chat.Message{
		UserID: u.ID, Role: chat.RoleUser, Content: "hi", Timestamp: time.Now().UTC(),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/overview", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"totalUsers":1`)
	assert.Contains(t, w.Body.String(), `"totalMessagesToday":1`)
}

func TestUsage(t *testing.T) {
	r, storage := newTestHandler(t)

	u := &user.User{Email: "a@example.com", AuthProvider: user.ProviderLocal}
	require.NoError(t, storage.Create(u))

	store := chat.NewStore(storage.DB())
	require.NoError(t, store.Append(&chat.Message{
		UserID: u.ID, Role: chat.RoleUser, Content: "hi", Timestamp: time.Now().UTC(),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), time.Now().UTC().Format("2006-01-02"))
	assert.Contains(t, w.Body.String(), `"messages":1`)
}

func TestUsageEmpty(t *testing.T) {
	r, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"days":[]`)
}

func TestListUsers(t *testing.T) {
	r, storage := newTestHandler(t)

	require.NoError(t, storage.Create(&user.User{Email: "a@example.com", AuthProvider: user.ProviderLocal}))
	require.NoError(t, storage.Create(&user.User{Email: "b@example.com", AuthProvider: user.ProviderGoogle}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "a@example.com")
	assert.Contains(t, w.Body.String(), "b@example.com")
}

func TestSetBlocked(t *testing.T) {
	r, storage := newTestHandler(t)

	u := &user.User{Email: "a@example.com", AuthProvider: user.ProviderLocal}
	require.NoError(t, storage.Create(u))

	req := httptest.NewRequest(http.MethodPatch, "/users/"+u.ID+"/block", strings.NewReader(`{"isBlocked":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	got, err := storage.GetByID(u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBlocked)
}

func TestSetBlockedUnknownUser(t *testing.T) {
	r, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/users/nope/block", strings.NewReader(`{"isBlocked":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
}

func TestHealth(t *testing.T) {
	r, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
