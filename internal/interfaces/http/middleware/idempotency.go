package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replay"
	maxIdempotencyKeyLen   = 255
)

// IdempotencyConfig configures the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
}

// storedResponse is what a completed key replays
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// captureWriter tees the response body
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a write request sent again
// with the same Idempotency-Key. A key still being processed answers 409,
// and a key sent again with a different body answers 422.
// Server errors and panics release the key so that the client can retry.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		fingerprint, err := bodyFingerprint(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeTooLarge, "Request body could not be read", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		log := logger.L(ctx)
		storeKey := "idem:" + GetTenantID(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		fresh, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL)
		if err != nil {
			// Store outage: serve the request unprotected
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			replay(c, cfg.Store, storeKey, fingerprint, log)
			return
		}

		release := func() {
			if err := cfg.Store.Forget(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		nextReleasingOnPanic(c, release)

		if w.Status() >= http.StatusInternalServerError {
			release()
			return
		}
		payload, err := json.Marshal(storedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			Fingerprint: fingerprint,
		})
		if err == nil {
			err = cfg.Store.Complete(ctx, storeKey, payload, cfg.TTL)
		}
		if err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

// nextReleasingOnPanic runs the chain and releases the key before a panic
// reaches the recovery middleware
func nextReleasingOnPanic(c *gin.Context, release func()) {
	defer func() {
		if r := recover(); r != nil {
			release()
			panic(r)
		}
	}()
	c.Next()
}

// bodyFingerprint hashes the request body and puts it back for the handler
func bodyFingerprint(req *http.Request) (string, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		_ = req.Body.Close()
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replay(c *gin.Context, store shared.IdempotencyStore, storeKey, fingerprint string, log *zap.Logger) {
	payload, ok, err := store.Result(c.Request.Context(), storeKey)
	if err != nil {
		log.Warn("Failed to read idempotent response", zap.Error(err))
	}
	if err != nil || !ok {
		c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRequestInProgress,
			"A request with this Idempotency-Key is still being processed",
			GetRequestID(c),
		))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(payload, &stored); err != nil {
		log.Error("Corrupt idempotent response", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
		return
	}
	if stored.Fingerprint != "" && stored.Fingerprint != fingerprint {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeIdempotencyKeyReused,
			"Idempotency-Key was already used with a different request body",
			GetRequestID(c),
		))
		return
	}
	c.Header(IdempotentReplayHeader, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
