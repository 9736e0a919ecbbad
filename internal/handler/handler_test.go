package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"session-service/internal/session"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a volatile Store used for handler tests, mirroring the
// expiration semantics of the real backends.
type memStore struct {
	mu    sync.Mutex
	items map[string]memItem
	err   error
}

type memItem struct {
	value   map[string]any
	expires time.Time
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]memItem)}
}

func (m *memStore) Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{value: value, expires: time.Now().Add(ttl)}
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || !item.expires.After(time.Now()) {
		return nil, nil
	}
	return item.value, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var _ session.Store = (*memStore)(nil)

func newTestRouter(store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(store, "memory", time.Hour).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_SetThenGet(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data":        map[string]any{"user_id": 42},
		"ttl_seconds": 3600,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, time.Now().Add(3600*time.Second).Unix(), decodeBody(t, w)["expires_at"], 2)

	w = doJSON(t, router, http.MethodGet, "/sessions/abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, map[string]any{"user_id": float64(42)}, body["data"])
}

func TestHandler_CreateMintsKey(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]any{
		"data": map[string]any{"user_id": 42},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	key, ok := body["key"].(string)
	require.True(t, ok)
	require.NotEmpty(t, key)
	assert.NotZero(t, body["expires_at"])

	w = doJSON(t, router, http.MethodGet, "/sessions/"+key, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GetMissing(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodGet, "/sessions/never-set", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ZeroTTLExpiresImmediately(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data":        map[string]any{"v": 1},
		"ttl_seconds": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/sessions/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteClearsVisibility(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data": map[string]any{"v": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/sessions/abc", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/sessions/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Removing a never-set key succeeds.
	w = doJSON(t, router, http.MethodDelete, "/sessions/never-set", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"ttl_seconds": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	negative := int64(-1)
	w = doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data":        map[string]any{"v": 1},
		"ttl_seconds": negative,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A TTL large enough to overflow time.Duration is rejected, not wrapped.
	w = doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data":        map[string]any{"v": 1},
		"ttl_seconds": int64(1) << 62,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_StoreFailureIs500(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	router := newTestRouter(store)

	w := doJSON(t, router, http.MethodPut, "/sessions/abc", map[string]any{
		"data": map[string]any{"v": 1},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(t, router, http.MethodGet, "/sessions/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/sessions/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
