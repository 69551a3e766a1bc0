package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/purchase/internal/infrastructure/logger"
	"github.com/erp/purchase/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tenantUUIDKey holds the parsed tenant id; logger.GinTenantIDKey holds its string form
const tenantUUIDKey = "tenant_uuid"

// TenantConfig holds configuration for tenant middleware
type TenantConfig struct {
	// SkipPaths don't need a tenant (health checks)
	SkipPaths []string
	// DefaultTenantID is used when the header is absent. uuid.Nil makes the header mandatory.
	DefaultTenantID uuid.UUID
}

// DefaultTenantConfig requires the X-Tenant-ID header everywhere but on health checks
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// Tenant extracts the tenant from the X-Tenant-ID header
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if header := c.GetHeader(TenantIDHeader); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil || parsed == uuid.Nil {
				abortTenant(c, dto.ErrCodeBadRequest, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			abortTenant(c, dto.ErrCodeMissingTenant, "Tenant identification required")
			return
		}

		id := tenantID.String()
		c.Set(logger.GinTenantIDKey, id)
		c.Set(tenantUUIDKey, tenantID)

		ctx := logger.WithTenantID(c.Request.Context(), id)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("tenant_id", id)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortTenant(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantUUID returns the tenant set by the tenant middleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(tenantUUIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetTenantID returns the tenant id string, or "" outside tenant routes
func GetTenantID(c *gin.Context) string {
	return c.GetString(logger.GinTenantIDKey)
}
