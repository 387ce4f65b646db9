package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, customerID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), customerID),
		Data:            "payload",
	}
}

type recordingHandler struct {
	types   []string
	err     error
	panics  bool
	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	orders := &recordingHandler{types: []string{"OrderCreated"}}
	all := &recordingHandler{}
	other := &recordingHandler{types: []string{"WarehouseDeleted"}}
	bus.Subscribe(orders)
	bus.Subscribe(all)
	bus.Subscribe(other)

	ev := newTestEvent("OrderCreated", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), ev, newTestEvent("CustomerCreated", uuid.Nil)))

	assert.Equal(t, 1, orders.count())
	assert.Same(t, ev, orders.handled[0])
	assert.Equal(t, 2, all.count())
	assert.Zero(t, other.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"OrderCreated"}}
	bus.Subscribe(h, "OrderStatusChanged")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated", uuid.New())))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderStatusChanged", uuid.New())))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("kafka down")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated", uuid.New())))
	assert.Equal(t, 1, healthy.count())

	failures := logs.FilterMessage("event handler failed").All()
	require.Len(t, failures, 2)
	assert.Equal(t, "OrderCreated", failures[0].ContextMap()["event_type"])
	assert.Contains(t, failures[1].ContextMap()["error"], "handler panicked")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"OrderCreated"}}
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("OrderCreated", uuid.New()))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("OrderCreated", uuid.New()))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	h := &recordingHandler{}
	bus.Subscribe(h)
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated", uuid.New())))

	assert.Zero(t, h.count())
	assert.Equal(t, 1, logs.FilterMessage("event bus stopped, dropping events").Len())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated", uuid.New())))
	assert.Equal(t, 1, h.count())
}

func TestPublishAndClear(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	agg := shared.NewBaseAggregateRoot()
	agg.AddDomainEvent(newTestEvent("OrderCreated", uuid.New()))
	require.NoError(t, shared.PublishAndClear(context.Background(), bus, &agg))

	assert.Equal(t, 1, h.count())
	assert.Empty(t, agg.GetDomainEvents())
}
