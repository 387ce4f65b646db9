package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/identity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.Emit()
	}
	return m
}

func TestTracing_SpanAttributes(t *testing.T) {
	exporter := setupTestTracer(t)
	userID, customerID := uuid.New(), uuid.New()

	router := gin.New()
	router.Use(RequestID(), Tracing("wms-test", true), SpanErrorMarker())
	router.GET("/api/orders/:id",
		func(c *gin.Context) {
			c.Set(PrincipalKey, identity.Principal{UserID: userID, Role: identity.RoleClient, CustomerID: &customerID})
			c.Next()
		},
		TracingAttributeInjector(),
		func(c *gin.Context) { c.Status(http.StatusNotFound) },
	)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /api/orders/:id", span.Name)
	assert.Equal(t, codes.Error, span.Status.Code)

	attrs := attrMap(span.Attributes)
	assert.Equal(t, "req-42", attrs["request_id"])
	assert.Equal(t, userID.String(), attrs["user_id"])
	assert.Equal(t, customerID.String(), attrs["customer_id"])
	assert.Equal(t, "CLIENT", attrs["user_role"])
}

func TestTracing_SuccessIsNotMarked(t *testing.T) {
	exporter := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing("wms-test", true), SpanErrorMarker())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_Disabled(t *testing.T) {
	exporter := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing("wms-test", false))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, exporter.GetSpans())
}
