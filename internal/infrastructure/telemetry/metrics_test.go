package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumValue(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestBusinessMetrics_Handle(t *testing.T) {
	reader, provider := newManualMeter(t)
	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()
	customerID := uuid.New()

	created := &trade.OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeOrderCreated, trade.AggregateTypeOrder, uuid.New(), customerID),
		ItemCount:       3,
	}
	changed := &trade.OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeOrderStatusChanged, trade.AggregateTypeOrder, uuid.New(), customerID),
		FromStatus:      shared.StatusOrderNew,
		ToStatus:        shared.StatusOrderShipped,
	}
	soft := &partner.WarehouseDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeWarehouseDeactivated, partner.AggregateTypeWarehouse, uuid.New(), uuid.Nil),
	}
	hard := &partner.WarehouseDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeWarehouseDeleted, partner.AggregateTypeWarehouse, uuid.New(), uuid.Nil),
	}
	customer := &partner.CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeCustomerCreated, partner.AggregateTypeCustomer, customerID, customerID),
	}

	for _, e := range []shared.DomainEvent{created, created, changed, soft, hard, hard, customer} {
		require.NoError(t, bm.Handle(ctx, e))
	}

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["wms_orders_created_total"]))
	assert.Equal(t, int64(6), sumValue(t, got["wms_order_items_created_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["wms_order_status_changes_total"],
		attribute.String("from", "New"), attribute.String("to", "Shipped")))
	assert.Equal(t, int64(1), sumValue(t, got["wms_warehouse_deletes_total"], attribute.String("mode", "soft")))
	assert.Equal(t, int64(2), sumValue(t, got["wms_warehouse_deletes_total"], attribute.String("mode", "hard")))
	assert.Equal(t, int64(1), sumValue(t, got["wms_customers_created_total"]))
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	_, provider := newManualMeter(t)
	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"OrderCreated", "OrderStatusChanged", "WarehouseDeactivated", "WarehouseDeleted", "CustomerCreated",
	}, bm.EventTypes())
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	reader, provider := newManualMeter(t)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	require.NoError(t, RegisterDBPoolMetrics(provider.Meter("test"), db))

	got := collect(t, reader)
	gauge, ok := got["wms_db_connections_open"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)

	_, ok = got["wms_db_connections_in_use"].(metricdata.Gauge[int64])
	assert.True(t, ok)
	assert.Equal(t, int64(0), sumValue(t, got["wms_db_connections_wait_total"]))
}
