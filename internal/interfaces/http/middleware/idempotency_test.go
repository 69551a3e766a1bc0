package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/purchase/internal/infrastructure/cache"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type idempotencyFixture struct {
	router   *gin.Engine
	store    *cache.InMemoryIdempotencyStore
	calls    int
	status   int
	tenantID string
}

func newIdempotencyFixture(t *testing.T) *idempotencyFixture {
	t.Helper()
	f := &idempotencyFixture{
		store:    cache.NewInMemoryIdempotencyStore(),
		status:   http.StatusCreated,
		tenantID: uuid.NewString(),
	}
	t.Cleanup(func() { _ = f.store.Close() })

	f.router = gin.New()
	f.router.Use(Tenant())
	f.router.Use(Idempotency(IdempotencyConfig{Store: f.store, TTL: time.Hour}))
	handler := func(c *gin.Context) {
		f.calls++
		c.JSON(f.status, gin.H{"call": f.calls})
	}
	f.router.POST("/orders", handler)
	f.router.GET("/orders", handler)
	return f
}

func (f *idempotencyFixture) do(method, key string) *httptest.ResponseRecorder {
	return f.doBody(method, key, "{}")
}

func (f *idempotencyFixture) doBody(method, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/orders", strings.NewReader(body))
	req.Header.Set(TenantIDHeader, f.tenantID)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return serve(f.router, req)
}

func TestIdempotency(t *testing.T) {
	t.Run("replays the first response", func(t *testing.T) {
		f := newIdempotencyFixture(t)

		first := f.do(http.MethodPost, "k-1")
		second := f.do(http.MethodPost, "k-1")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
		assert.Empty(t, first.Header().Get(IdempotentReplayHeader))
		assert.Equal(t, 1, f.calls)
	})

	t.Run("distinct keys run separately", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		f.do(http.MethodPost, "a")
		f.do(http.MethodPost, "b")
		f.do(http.MethodPost, "")
		assert.Equal(t, 3, f.calls)
	})

	t.Run("keys are scoped per tenant", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		f.do(http.MethodPost, "shared")
		f.tenantID = uuid.NewString()
		f.do(http.MethodPost, "shared")
		assert.Equal(t, 2, f.calls)
	})

	t.Run("reads are never deduplicated", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		f.do(http.MethodGet, "k")
		f.do(http.MethodGet, "k")
		assert.Equal(t, 2, f.calls)
	})

	t.Run("server errors release the key", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		f.status = http.StatusInternalServerError
		f.do(http.MethodPost, "retry")
		f.status = http.StatusCreated
		w := f.do(http.MethodPost, "retry")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 2, f.calls)
	})

	t.Run("same key with another body is rejected", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		first := f.doBody(http.MethodPost, "line-7", `{"quantity":"50"}`)
		require.Equal(t, http.StatusCreated, first.Code)

		w := f.doBody(http.MethodPost, "line-7", `{"quantity":"11"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeIdempotencyKeyReused)
		assert.Empty(t, w.Header().Get(IdempotentReplayHeader))

		w = f.doBody(http.MethodPost, "line-7", `{"quantity":"50"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get(IdempotentReplayHeader))
		assert.Equal(t, 1, f.calls)
	})

	t.Run("client errors are replayed", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		f.status = http.StatusUnprocessableEntity
		f.do(http.MethodPost, "bad")
		w := f.do(http.MethodPost, "bad")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("in-flight key answers conflict", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		storeKey := "idem:" + f.tenantID + ":POST:/orders:busy"
		fresh, err := f.store.MarkProcessed(context.Background(), storeKey, time.Hour)
		require.NoError(t, err)
		require.True(t, fresh)

		w := f.do(http.MethodPost, "busy")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRequestInProgress)
		assert.Zero(t, f.calls)
	})

	t.Run("oversized key is rejected", func(t *testing.T) {
		f := newIdempotencyFixture(t)
		w := f.do(http.MethodPost, strings.Repeat("k", maxIdempotencyKeyLen+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, f.calls)
	})
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	router := gin.New()
	router.Use(logger.Recovery(zap.NewNop()))
	router.Use(Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}))
	router.POST("/orders", func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("order store exploded")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
		req.Header.Set(IdempotencyKeyHeader, "after-panic")
		return serve(router, req)
	}

	assert.Equal(t, http.StatusInternalServerError, post().Code)
	w := post()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get(IdempotentReplayHeader))
	assert.Equal(t, 2, calls)
}

type failingStore struct {
	cache.InMemoryIdempotencyStore
}

func (*failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestIdempotency_StoreOutageFailsOpen(t *testing.T) {
	calls := 0
	router := gin.New()
	router.Use(Idempotency(IdempotencyConfig{Store: &failingStore{}, TTL: time.Minute}))
	router.POST("/orders", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set(IdempotencyKeyHeader, "k")
		assert.Equal(t, http.StatusCreated, serve(router, req).Code)
	}
	assert.Equal(t, 2, calls)
}
