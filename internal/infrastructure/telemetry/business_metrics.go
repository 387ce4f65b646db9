package telemetry

import (
	"context"

	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts domain events. It subscribes to the event bus, so
// the counters only move for writes that committed.
type BusinessMetrics struct {
	ordersCreated   *Counter
	orderItems      *Counter
	statusChanges   *Counter
	warehouseDelete *Counter
	customers       *Counter
}

// NewBusinessMetrics creates the counters on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.ordersCreated, err = NewCounter(meter, "wms_orders_created_total", "Orders created", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderItems, err = NewCounter(meter, "wms_order_items_created_total", "Order lines created", "{items}"); err != nil {
		return nil, err
	}
	if bm.statusChanges, err = NewCounter(meter, "wms_order_status_changes_total", "Order lifecycle transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.warehouseDelete, err = NewCounter(meter, "wms_warehouse_deletes_total", "Warehouse deletions by mode", "{warehouses}"); err != nil {
		return nil, err
	}
	if bm.customers, err = NewCounter(meter, "wms_customers_created_total", "Customers created", "{customers}"); err != nil {
		return nil, err
	}
	return &bm, nil
}

// Handle implements shared.EventHandler
func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderCreatedEvent:
		m.ordersCreated.Inc(ctx)
		m.orderItems.Add(ctx, int64(e.ItemCount))
	case *trade.OrderStatusChangedEvent:
		m.statusChanges.Inc(ctx,
			attribute.String("from", e.FromStatus.String()),
			attribute.String("to", e.ToStatus.String()),
		)
	case *partner.WarehouseDeactivatedEvent:
		m.warehouseDelete.Inc(ctx, attribute.String("mode", string(partner.DeleteModeSoft)))
	case *partner.WarehouseDeletedEvent:
		m.warehouseDelete.Inc(ctx, attribute.String("mode", string(partner.DeleteModeHard)))
	case *partner.CustomerCreatedEvent:
		m.customers.Inc(ctx)
	}
	return nil
}

// EventTypes lists the events the metrics count
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderStatusChanged,
		partner.EventTypeWarehouseDeactivated,
		partner.EventTypeWarehouseDeleted,
		partner.EventTypeCustomerCreated,
	}
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
