package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/observability"
)

func scrape(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	return rec
}

func TestPrometheusExporter_ServesTableMetrics(t *testing.T) {
	t.Parallel()

	reader, handler, err := observability.PrometheusExporter()
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	tm, err := observability.NewTableMetrics(mp.Meter("test"))
	require.NoError(t, err)

	tm.RecordStats(context.Background(), heap.Stats{Strings: 7, Buckets: 256, Inserts: 7, Misses: 7})

	rec := scrape(t, handler)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	body := rec.Body.String()
	assert.Contains(t, body, "target_info")
	assert.Contains(t, body, "strtab_strings")
	assert.Contains(t, body, "strtab_inserts_total")
}

func TestPrometheusExporter_IndependentRegistries(t *testing.T) {
	t.Parallel()

	handlers := make([]http.Handler, 2)

	for i := range handlers {
		reader, handler, err := observability.PrometheusExporter()
		require.NoError(t, err)

		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

		handlers[i] = handler
	}

	for _, handler := range handlers {
		assert.Equal(t, http.StatusOK, scrape(t, handler).Code)
	}
}
