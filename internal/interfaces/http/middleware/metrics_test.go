package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(provider.Meter("http.server"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/api/v1/stock-moves/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for range 3 {
		serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/stock-moves/"+uuid.NewString(), nil))
	}
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	metrics := collectMetrics(t, reader)

	total, ok := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 2)

	counts := make(map[string]int64)
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		counts[route.AsString()] = dp.Value
		status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
		assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
	}
	assert.Equal(t, int64(3), counts["/api/v1/stock-moves/:id"])
	assert.Equal(t, int64(1), counts["unknown"])

	duration, ok := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, duration.DataPoints, 2)

	active, ok := metrics["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}
