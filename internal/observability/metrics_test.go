package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/maasra-erp/maasra/internal/shared"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordOperation("add_tank", nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "maasra_ledger_operations_total")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := metricsRR.Body.String()
	require.True(t, strings.Contains(body, `maasra_http_requests_total{code="418",route="/test"} 1`), body)
	require.Contains(t, body, `maasra_http_request_duration_seconds_bucket{route="/test"`)
}

func TestRecordOperationOutcomes(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordOperation("add_sale", nil)
	metrics.RecordOperation("add_sale", fmt.Errorf("tank empty: %w", shared.ErrConflict))
	metrics.RecordOperation("add_sale", fmt.Errorf("bad: %w", shared.ErrValidation))
	metrics.RecordOperation("add_sale", errors.New("boom"))

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ledgerOps.WithLabelValues("add_sale", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ledgerOps.WithLabelValues("add_sale", OutcomeRejected)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ledgerOps.WithLabelValues("add_sale", OutcomeInvalid)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ledgerOps.WithLabelValues("add_sale", OutcomeError)))

	metrics.SetSnapshotVersion(12)
	require.Equal(t, 12.0, testutil.ToFloat64(metrics.ledgerVersion))
}
