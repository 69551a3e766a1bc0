package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func callSystem(t *testing.T, handle gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	handle(c)

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	return w, body.Data
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		h := NewSystemHandler("erp-purchase", "1.0.0", stubPinger{})
		w, data := callSystem(t, h.Health)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "ok", data["database"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("erp-purchase", "1.0.0", stubPinger{err: errors.New("connection refused")})
		w, data := callSystem(t, h.Health)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", data["status"])
		assert.Equal(t, "unreachable", data["database"])
	})

	t.Run("no database", func(t *testing.T) {
		h := NewSystemHandler("erp-purchase", "1.0.0", nil)
		w, data := callSystem(t, h.Health)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not configured", data["database"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("erp-purchase", "1.2.3", nil)
	assert.False(t, h.startTime.IsZero())

	w, data := callSystem(t, h.GetSystemInfo)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "erp-purchase", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, runtime.Version(), data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
