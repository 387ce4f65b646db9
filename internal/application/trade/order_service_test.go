package trade_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptrade "github.com/wms/backend/internal/application/trade"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// queueGenerator hands out numbers in order and repeats the last one
type queueGenerator struct {
	numbers []string
	calls   int
}

func (g *queueGenerator) Next(context.Context, time.Time) (string, error) {
	i := g.calls
	if i >= len(g.numbers) {
		i = len(g.numbers) - 1
	}
	g.calls++
	return g.numbers[i], nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fakeSlipPrinter struct {
	slip *printing.PackingSlip
}

func (f *fakeSlipPrinter) PDF(_ context.Context, slip *printing.PackingSlip) ([]byte, error) {
	f.slip = slip
	return []byte("%PDF-fake"), nil
}

type fakeSlipStore struct {
	keys []string
}

func (f *fakeSlipStore) Put(_ context.Context, key string, _ []byte, _ string) error {
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeSlipStore) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	return "https://files.example/" + key, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), nil
}

type orderEnv struct {
	db        *gorm.DB
	repos     apptrade.OrderRepositories
	admin     identity.Principal
	client    identity.Principal
	customer  *partner.Customer
	project   *partner.Project
	warehouse *partner.Warehouse
	carrier   *partner.Carrier
	ground    *partner.CarrierService
	shipTo    *partner.Account
	billTo    *partner.Account
	bolt      *catalog.Material
	nut       *catalog.Material
	rival     *partner.Customer
	rivalPart *catalog.Material
}

func newOrderEnv(t *testing.T) orderEnv {
	t.Helper()
	ctx := context.Background()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	env := orderEnv{
		db: db,
		repos: apptrade.OrderRepositories{
			Orders:     persistence.NewGormOrderRepository(db),
			Customers:  persistence.NewGormCustomerRepository(db),
			Projects:   persistence.NewGormProjectRepository(db),
			Warehouses: persistence.NewGormWarehouseRepository(db),
			Carriers:   persistence.NewGormCarrierRepository(db),
			Accounts:   persistence.NewGormAccountRepository(db),
			Materials:  persistence.NewGormMaterialRepository(db),
		},
		admin: identity.Principal{UserID: uuid.New(), Role: identity.RoleAdmin},
	}

	env.customer, env.project = env.newCustomer(t, "ACME")
	env.client = identity.Principal{UserID: uuid.New(), Role: identity.RoleClient, CustomerID: &env.customer.ID}
	env.rival, _ = env.newCustomer(t, "RIVAL")

	env.warehouse, err = partner.NewWarehouse("WH1", "Main Warehouse")
	require.NoError(t, err)
	require.NoError(t, env.warehouse.SetAddress(partner.Address{AddressLine1: "1 Dock Rd", City: "Springfield"}))
	require.NoError(t, env.repos.Warehouses.Create(ctx, env.warehouse))
	require.NoError(t, env.repos.Warehouses.ReplaceAssignments(ctx, env.warehouse.ID, []uuid.UUID{env.customer.ID}, nil))

	env.carrier, err = partner.NewCarrier("UPS", "United Parcel")
	require.NoError(t, err)
	require.NoError(t, env.carrier.Update("United Parcel", "https://track.example/{tracking}"))
	require.NoError(t, env.repos.Carriers.Create(ctx, env.carrier))
	env.ground, err = partner.NewCarrierService(env.carrier.ID, "GROUND", "Ground")
	require.NoError(t, err)
	require.NoError(t, env.repos.Carriers.CreateService(ctx, env.ground))

	env.shipTo = env.newAccount(t, env.customer.ID, "Site A", partner.AccountTypeShipTo)
	env.billTo = env.newAccount(t, env.customer.ID, "Accounts Payable", partner.AccountTypeBillTo)

	env.bolt = env.newMaterial(t, env.customer.ID, env.project.ID, "BOLT-10", "Bolt M10")
	env.nut = env.newMaterial(t, env.customer.ID, env.project.ID, "NUT-10", "Nut M10")
	rivalProjects, err := env.repos.Projects.FindByCustomer(ctx, env.rival.ID)
	require.NoError(t, err)
	env.rivalPart = env.newMaterial(t, env.rival.ID, rivalProjects[0].ID, "BOLT-10", "Rival Bolt")
	return env
}

func (e orderEnv) newCustomer(t *testing.T, code string) (*partner.Customer, *partner.Project) {
	t.Helper()
	ctx := context.Background()
	c, err := partner.NewCustomer(code, "Customer "+code)
	require.NoError(t, err)
	require.NoError(t, e.repos.Customers.Create(ctx, c))
	p, err := partner.NewProject(c.ID, "Main", "", true)
	require.NoError(t, err)
	require.NoError(t, e.repos.Projects.Create(ctx, p))
	return c, p
}

func (e orderEnv) newAccount(t *testing.T, customerID uuid.UUID, name string, typ partner.AccountType) *partner.Account {
	t.Helper()
	a, err := partner.NewAccount(customerID, name, typ)
	require.NoError(t, err)
	require.NoError(t, a.Update(name, typ, "Pat Doe", "", "", partner.Address{AddressLine1: "9 Main St", City: "Shelbyville"}))
	require.NoError(t, e.repos.Accounts.Create(context.Background(), a))
	return a
}

func (e orderEnv) newMaterial(t *testing.T, customerID, projectID uuid.UUID, sku, name string) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial(customerID, projectID, sku, name)
	require.NoError(t, err)
	require.NoError(t, e.repos.Materials.Create(context.Background(), m))
	return m
}

func (e orderEnv) service(numbers ...string) *apptrade.OrderService {
	return apptrade.NewOrderService(e.repos, &queueGenerator{numbers: numbers}, config.OrderConfig{NumberRetries: 3}, zap.NewNop())
}

func (e orderEnv) fields(items ...apptrade.OrderItemInput) apptrade.OrderFields {
	return apptrade.OrderFields{
		WarehouseID:       e.warehouse.ID,
		CarrierID:         e.carrier.ID,
		CarrierServiceID:  &e.ground.ID,
		ShipToAccountID:   e.shipTo.ID,
		BillToAccountID:   &e.billTo.ID,
		Reference:         "PO-1001",
		RequestedShipDate: "2026-10-20",
		Items:             items,
	}
}

func item(m *catalog.Material, qty string) apptrade.OrderItemInput {
	return apptrade.OrderItemInput{MaterialID: m.ID, Quantity: decimal.RequireFromString(qty)}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	t.Run("client order gets number and material snapshots", func(t *testing.T) {
		publisher := &recordingPublisher{}
		svc := env.service("20261018-0001")
		svc.SetEventPublisher(publisher)

		resp, err := svc.Create(ctx, env.client, apptrade.CreateOrderRequest{
			OrderFields: env.fields(item(env.bolt, "5"), item(env.nut, "2.5")),
		})
		require.NoError(t, err)
		assert.Equal(t, "20261018-0001", resp.OrderNumber)
		assert.Equal(t, env.customer.ID, resp.CustomerID)
		assert.Equal(t, env.project.ID, resp.ProjectID)
		assert.Equal(t, int(shared.StatusOrderNew), resp.StatusCode)
		assert.Equal(t, "2026-10-20", resp.RequestedShipDate)
		assert.True(t, decimal.RequireFromString("7.5").Equal(resp.TotalQuantity))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "BOLT-10", resp.Items[0].MaterialSKU)
		assert.Equal(t, "Bolt M10", resp.Items[0].MaterialName)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, trade.EventTypeOrderCreated, publisher.events[0].EventType())
	})

	t.Run("material of another customer is rejected", func(t *testing.T) {
		_, err := env.service("20261018-0002").Create(ctx, env.client, apptrade.CreateOrderRequest{
			OrderFields: env.fields(item(env.rivalPart, "1")),
		})
		assert.Equal(t, "INVALID_MATERIAL", domainCode(t, err))
	})

	t.Run("unknown material is rejected", func(t *testing.T) {
		_, err := env.service("20261018-0002").Create(ctx, env.client, apptrade.CreateOrderRequest{
			OrderFields: env.fields(apptrade.OrderItemInput{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(1)}),
		})
		assert.Equal(t, "INVALID_MATERIAL", domainCode(t, err))
	})

	t.Run("warehouse not assigned to the customer", func(t *testing.T) {
		rivalClient := identity.Principal{UserID: uuid.New(), Role: identity.RoleClient, CustomerID: &env.rival.ID}
		_, err := env.service("20261018-0002").Create(ctx, rivalClient, apptrade.CreateOrderRequest{
			OrderFields: env.fields(item(env.rivalPart, "1")),
		})
		assert.Equal(t, "INVALID_WAREHOUSE", domainCode(t, err))
	})

	t.Run("bill-to slot rejects a ship-to account", func(t *testing.T) {
		f := env.fields(item(env.bolt, "1"))
		f.BillToAccountID = &env.shipTo.ID
		_, err := env.service("20261018-0002").Create(ctx, env.client, apptrade.CreateOrderRequest{OrderFields: f})
		assert.Equal(t, "INVALID_ACCOUNT", domainCode(t, err))
	})

	t.Run("duplicate material lines", func(t *testing.T) {
		_, err := env.service("20261018-0002").Create(ctx, env.client, apptrade.CreateOrderRequest{
			OrderFields: env.fields(item(env.bolt, "1"), item(env.bolt, "2")),
		})
		assert.Equal(t, "DUPLICATE_MATERIAL", domainCode(t, err))
	})

	t.Run("client cannot order for another customer", func(t *testing.T) {
		_, err := env.service("20261018-0002").Create(ctx, env.client, apptrade.CreateOrderRequest{
			CustomerID:  &env.rival.ID,
			OrderFields: env.fields(item(env.bolt, "1")),
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin must name the customer", func(t *testing.T) {
		_, err := env.service("20261018-0002").Create(ctx, env.admin, apptrade.CreateOrderRequest{
			OrderFields: env.fields(item(env.bolt, "1")),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestOrderService_NumberRetry(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	req := apptrade.CreateOrderRequest{CustomerID: &env.customer.ID, OrderFields: env.fields(item(env.bolt, "1"))}

	_, err := env.service("20261018-0001").Create(ctx, env.admin, req)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	svc := apptrade.NewOrderService(env.repos, &queueGenerator{numbers: []string{"20261018-0001", "20261018-0002"}},
		config.OrderConfig{NumberRetries: 3}, zap.New(core))
	resp, err := svc.Create(ctx, env.admin, req)
	require.NoError(t, err)
	assert.Equal(t, "20261018-0002", resp.OrderNumber)
	assert.Equal(t, 1, logs.FilterMessage("order number taken, retrying").Len())
}

func TestOrderService_NumberExhausted(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	req := apptrade.CreateOrderRequest{CustomerID: &env.customer.ID, OrderFields: env.fields(item(env.bolt, "1"))}

	svc := env.service("20261018-0001")
	_, err := svc.Create(ctx, env.admin, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, env.admin, req)
	assert.Equal(t, "ORDER_NUMBER_EXHAUSTED", domainCode(t, err))

	var count int64
	require.NoError(t, env.db.Model(&trade.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	svc := env.service("20261018-0001")

	created, err := svc.Create(ctx, env.client, apptrade.CreateOrderRequest{OrderFields: env.fields(item(env.bolt, "1"))})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, env.client, created.ID, apptrade.UpdateOrderRequest{
		OrderFields: env.fields(item(env.nut, "4")),
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, env.nut.ID, updated.Items[0].MaterialID)
	assert.Equal(t, 2, updated.Version)

	_, err = svc.ChangeStatus(ctx, env.admin, created.ID, apptrade.ChangeStatusRequest{StatusCode: int(shared.StatusOrderProcessing)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, env.client, created.ID, apptrade.UpdateOrderRequest{OrderFields: env.fields(item(env.bolt, "1"))})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	shipped, err := svc.ChangeStatus(ctx, env.admin, created.ID, apptrade.ChangeStatusRequest{
		StatusCode:     int(shared.StatusOrderShipped),
		TrackingNumber: "1Z999",
	})
	require.NoError(t, err)
	assert.Equal(t, "1Z999", shipped.TrackingNumber)
	assert.Equal(t, "https://track.example/1Z999", shipped.TrackingURL)
	assert.NotNil(t, shipped.ShippedAt)

	_, err = svc.Cancel(ctx, env.client, created.ID, apptrade.CancelOrderRequest{Reason: "late"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.ChangeStatus(ctx, env.admin, created.ID, apptrade.ChangeStatusRequest{StatusCode: int(shared.StatusOrderNew)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	got, err := svc.GetByID(ctx, env.client, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int(shared.StatusOrderShipped), got.StatusCode)
	assert.Equal(t, "https://track.example/1Z999", got.TrackingURL)
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	svc := env.service("20261018-0001")

	created, err := svc.Create(ctx, env.client, apptrade.CreateOrderRequest{OrderFields: env.fields(item(env.bolt, "1"))})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, env.client, created.ID, apptrade.CancelOrderRequest{Reason: " wrong site "})
	require.NoError(t, err)
	assert.Equal(t, int(shared.StatusOrderCancelled), cancelled.StatusCode)
	assert.Equal(t, "wrong site", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestOrderService_Scoping(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)

	own, err := env.service("20261018-0001").Create(ctx, env.client, apptrade.CreateOrderRequest{
		OrderFields: env.fields(item(env.bolt, "1")),
	})
	require.NoError(t, err)

	rivalClient := identity.Principal{UserID: uuid.New(), Role: identity.RoleClient, CustomerID: &env.rival.ID}
	svc := env.service("20261018-0002")

	_, err = svc.GetByID(ctx, rivalClient, own.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Cancel(ctx, rivalClient, own.ID, apptrade.CancelOrderRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	items, total, err := svc.List(ctx, rivalClient, apptrade.OrderListFilter{}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	_, _, err = svc.List(ctx, rivalClient, apptrade.OrderListFilter{CustomerID: &env.customer.ID}, shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	items, total, err = svc.List(ctx, env.admin, apptrade.OrderListFilter{WarehouseID: &env.warehouse.ID}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "20261018-0001", items[0].OrderNumber)
}

func TestOrderService_PackingSlip(t *testing.T) {
	ctx := context.Background()
	env := newOrderEnv(t)
	svc := env.service("20261018-0001")

	created, err := svc.Create(ctx, env.client, apptrade.CreateOrderRequest{OrderFields: env.fields(item(env.bolt, "3"))})
	require.NoError(t, err)

	_, err = svc.PackingSlip(ctx, env.client, created.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	printer := &fakeSlipPrinter{}
	svc.SetSlipPrinter(printer)

	t.Run("returns the PDF bytes without a store", func(t *testing.T) {
		result, err := svc.PackingSlip(ctx, env.client, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-fake"), result.PDF)
		assert.Equal(t, "packing-slip-20261018-0001.pdf", result.FileName)

		slip := printer.slip
		require.NotNil(t, slip)
		assert.Equal(t, "ACME", slip.CustomerCode)
		assert.Equal(t, "Main", slip.ProjectName)
		assert.Equal(t, "Main Warehouse", slip.Warehouse.Name)
		assert.Equal(t, "Ground", slip.ServiceName)
		assert.Equal(t, "Site A", slip.ShipTo.Name)
		assert.Contains(t, slip.ShipTo.Lines, "Attn: Pat Doe")
		require.NotNil(t, slip.BillTo)
		require.Len(t, slip.Lines, 1)
		assert.Equal(t, "BOLT-10", slip.Lines[0].SKU)
	})

	t.Run("archives and links with a store", func(t *testing.T) {
		store := &fakeSlipStore{}
		svc.SetSlipStore(store)
		result, err := svc.PackingSlip(ctx, env.client, created.ID)
		require.NoError(t, err)
		assert.Nil(t, result.PDF)
		assert.Equal(t, []string{"packing-slips/20261018-0001.pdf"}, store.keys)
		assert.Equal(t, "https://files.example/packing-slips/20261018-0001.pdf", result.URL)
		require.NotNil(t, result.ExpiresAt)
	})

	t.Run("foreign order is hidden", func(t *testing.T) {
		rivalClient := identity.Principal{UserID: uuid.New(), Role: identity.RoleClient, CustomerID: &env.rival.ID}
		_, err := svc.PackingSlip(ctx, rivalClient, created.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
