package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
)

func newHeader() OrderHeader {
	return OrderHeader{
		ProjectID:       uuid.New(),
		WarehouseID:     uuid.New(),
		CarrierID:       uuid.New(),
		ShipToAccountID: uuid.New(),
		Reference:       " PO-1 ",
	}
}

func newLine(qty int64) OrderLine {
	return OrderLine{MaterialID: uuid.New(), MaterialSKU: "SKU", MaterialName: "Widget", Quantity: decimal.NewFromInt(qty)}
}

func TestNewOrder(t *testing.T) {
	customerID := uuid.New()

	t.Run("creates new order with items", func(t *testing.T) {
		order, err := NewOrder("20261018-0001", customerID, newHeader(), []OrderLine{newLine(2), newLine(3)})

		require.NoError(t, err)
		assert.Equal(t, shared.StatusOrderNew, order.StatusCode)
		assert.Equal(t, "PO-1", order.Reference)
		require.Len(t, order.Items, 2)
		assert.Equal(t, order.ID, order.Items[0].OrderID)
		assert.True(t, order.TotalQuantity().Equal(decimal.NewFromInt(5)))
		assert.Len(t, order.MaterialIDs(), 2)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*OrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, 2, created.ItemCount)
		assert.Equal(t, customerID, created.CustomerID())
	})

	t.Run("requires items", func(t *testing.T) {
		_, err := NewOrder("20261018-0001", customerID, newHeader(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewOrder("20261018-0001", customerID, newHeader(), []OrderLine{newLine(0)})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_QUANTITY", de.Code)
	})

	t.Run("rejects duplicate material", func(t *testing.T) {
		line := newLine(1)
		_, err := NewOrder("20261018-0001", customerID, newHeader(), []OrderLine{line, line})
		assert.Error(t, err)
	})

	t.Run("requires routing", func(t *testing.T) {
		h := newHeader()
		h.WarehouseID = uuid.Nil
		_, err := NewOrder("20261018-0001", customerID, h, []OrderLine{newLine(1)})
		assert.Error(t, err)
	})

	t.Run("requires customer and number", func(t *testing.T) {
		_, err := NewOrder("20261018-0001", uuid.Nil, newHeader(), []OrderLine{newLine(1)})
		assert.Error(t, err)
		_, err = NewOrder("", customerID, newHeader(), []OrderLine{newLine(1)})
		assert.Error(t, err)
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to shared.StatusCode
		allowed  bool
	}{
		{shared.StatusOrderNew, shared.StatusOrderProcessing, true},
		{shared.StatusOrderNew, shared.StatusOrderCancelled, true},
		{shared.StatusOrderNew, shared.StatusOrderShipped, false},
		{shared.StatusOrderProcessing, shared.StatusOrderShipped, true},
		{shared.StatusOrderProcessing, shared.StatusOrderCancelled, true},
		{shared.StatusOrderProcessing, shared.StatusOrderDelivered, false},
		{shared.StatusOrderShipped, shared.StatusOrderDelivered, true},
		{shared.StatusOrderShipped, shared.StatusOrderCancelled, false},
		{shared.StatusOrderDelivered, shared.StatusOrderCancelled, false},
		{shared.StatusOrderCancelled, shared.StatusOrderNew, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_Lifecycle(t *testing.T) {
	order, err := NewOrder("20261018-0001", uuid.New(), newHeader(), []OrderLine{newLine(1)})
	require.NoError(t, err)
	order.ClearDomainEvents()

	require.NoError(t, order.TransitionTo(shared.StatusOrderProcessing, ""))
	assert.False(t, order.CanModify())
	assert.Error(t, order.Update(newHeader(), []OrderLine{newLine(1)}))

	require.NoError(t, order.TransitionTo(shared.StatusOrderShipped, " 1Z999 "))
	assert.Equal(t, "1Z999", order.TrackingNumber)
	assert.NotNil(t, order.ShippedAt)

	err = order.Cancel("too late")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)

	require.NoError(t, order.TransitionTo(shared.StatusOrderDelivered, ""))
	assert.True(t, order.IsTerminal())
	assert.NotNil(t, order.DeliveredAt)

	events := order.GetDomainEvents()
	require.Len(t, events, 3)
	last := events[2].(*OrderStatusChangedEvent)
	assert.Equal(t, shared.StatusOrderShipped, last.FromStatus)
	assert.Equal(t, shared.StatusOrderDelivered, last.ToStatus)

	assert.Error(t, order.TransitionTo(shared.StatusActive, ""))
}

func TestOrder_CancelAndUpdate(t *testing.T) {
	order, err := NewOrder("20261018-0001", uuid.New(), newHeader(), []OrderLine{newLine(1)})
	require.NoError(t, err)

	h := newHeader()
	h.Notes = "leave at dock"
	require.NoError(t, order.Update(h, []OrderLine{newLine(4), newLine(6)}))
	assert.Equal(t, "leave at dock", order.Notes)
	assert.Len(t, order.Items, 2)

	require.NoError(t, order.Cancel(" customer request "))
	assert.Equal(t, shared.StatusOrderCancelled, order.StatusCode)
	assert.Equal(t, "customer request", order.CancelReason)
	assert.NotNil(t, order.CancelledAt)
}

func TestOrder_AssignOrderNumber(t *testing.T) {
	order, err := NewOrder("20261018-0001", uuid.New(), newHeader(), []OrderLine{newLine(1)})
	require.NoError(t, err)

	require.NoError(t, order.AssignOrderNumber("20261018-0002"))
	assert.Equal(t, "20261018-0002", order.OrderNumber)
	created := order.GetDomainEvents()[0].(*OrderCreatedEvent)
	assert.Equal(t, "20261018-0002", created.OrderNumber)

	assert.Error(t, order.AssignOrderNumber(""))
}

func TestOrderNumber(t *testing.T) {
	day := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "20261018-", OrderNumberPrefix(day))
	assert.Equal(t, "20261018-0007", FormatOrderNumber(day, 7))
	assert.Equal(t, "20261018-12345", FormatOrderNumber(day, 12345))

	seq, ok := ParseOrderSequence("20261018-0042", "20261018-")
	assert.True(t, ok)
	assert.Equal(t, int64(42), seq)

	_, ok = ParseOrderSequence("20261017-0042", "20261018-")
	assert.False(t, ok)
	_, ok = ParseOrderSequence("20261018-abc", "20261018-")
	assert.False(t, ok)

	assert.Equal(t, "20261018-0001", NextOrderNumber(day, ""))
	assert.Equal(t, "20261018-0043", NextOrderNumber(day, "20261018-0042"))
	assert.Equal(t, "20261018-10000", NextOrderNumber(day, "20261018-9999"))
	assert.Equal(t, "20261018-0001", NextOrderNumber(day, "20261017-0042"))

	// the prefix is taken in UTC
	local := time.Date(2026, 10, 19, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	assert.Equal(t, "20261018-", OrderNumberPrefix(local))
}
