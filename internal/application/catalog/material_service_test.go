package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcatalog "github.com/wms/backend/internal/application/catalog"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

type materialEnv struct {
	db       *gorm.DB
	svc      *appcatalog.MaterialService
	admin    identity.Principal
	customer *partner.Customer
	def      *partner.Project
	other    *partner.Project
}

func newMaterialEnv(t *testing.T) materialEnv {
	t.Helper()
	ctx := context.Background()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	customers := persistence.NewGormCustomerRepository(db)
	projects := persistence.NewGormProjectRepository(db)

	customer, err := partner.NewCustomer("ACME", "Acme Corp")
	require.NoError(t, err)
	require.NoError(t, customers.Create(ctx, customer))
	def, err := partner.NewProject(customer.ID, "Main", "", true)
	require.NoError(t, err)
	require.NoError(t, projects.Create(ctx, def))
	other, err := partner.NewProject(customer.ID, "Promo", "", false)
	require.NoError(t, err)
	require.NoError(t, projects.Create(ctx, other))

	return materialEnv{
		db:       db,
		svc:      appcatalog.NewMaterialService(persistence.NewGormMaterialRepository(db), customers, projects),
		admin:    identity.Principal{UserID: uuid.New(), Role: identity.RoleAdmin},
		customer: customer,
		def:      def,
		other:    other,
	}
}

func (e materialEnv) newCustomer(t *testing.T, code string) (*partner.Customer, *partner.Project) {
	t.Helper()
	ctx := context.Background()
	c, err := partner.NewCustomer(code, "Customer "+code)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(e.db).Create(ctx, c))
	p, err := partner.NewProject(c.ID, "Main", "", true)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProjectRepository(e.db).Create(ctx, p))
	return c, p
}

func TestMaterialService_Create(t *testing.T) {
	ctx := context.Background()
	env := newMaterialEnv(t)

	t.Run("defaults to the customer's default project", func(t *testing.T) {
		qty := decimal.RequireFromString("12.5")
		resp, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
			CustomerID:    env.customer.ID,
			SKU:           "bolt-10",
			Name:          "Bolt M10",
			UnitOfMeasure: "box",
			Quantity:      &qty,
		})
		require.NoError(t, err)
		assert.Equal(t, env.def.ID, resp.ProjectID)
		assert.Equal(t, "BOLT-10", resp.SKU)
		assert.Equal(t, "BOX", resp.UnitOfMeasure)
		assert.True(t, qty.Equal(resp.Quantity))
	})

	t.Run("duplicate SKU within the customer", func(t *testing.T) {
		_, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
			CustomerID: env.customer.ID, SKU: "BOLT-10", Name: "Again",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("same SKU under another customer is fine", func(t *testing.T) {
		other, _ := env.newCustomer(t, "OTHER")
		_, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
			CustomerID: other.ID, SKU: "BOLT-10", Name: "Bolt",
		})
		require.NoError(t, err)
	})

	t.Run("project of another customer is rejected", func(t *testing.T) {
		_, foreignProject := env.newCustomer(t, "FOREIGN")
		_, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
			CustomerID: env.customer.ID, ProjectID: &foreignProject.ID, SKU: "NUT-1", Name: "Nut",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PROJECT", domainErr.Code)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
			CustomerID: uuid.New(), SKU: "NUT-2", Name: "Nut",
		})
		assert.ErrorIs(t, err, shared.ErrInvalidReference)
	})
}

func TestMaterialService_UpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	env := newMaterialEnv(t)

	created, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{
		CustomerID: env.customer.ID, SKU: "PIPE-1", Name: "Pipe",
	})
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, env.admin, created.ID, appcatalog.UpdateMaterialRequest{
		ProjectID:   &env.other.ID,
		SKU:         "PIPE-1",
		Name:        "Copper Pipe",
		Description: "15mm",
	})
	require.NoError(t, err)
	assert.Equal(t, env.other.ID, updated.ProjectID)
	assert.Equal(t, "Copper Pipe", updated.Name)
	assert.Equal(t, 2, updated.Version)

	require.NoError(t, env.svc.Deactivate(ctx, env.admin, created.ID))
	got, err := env.svc.GetByID(ctx, env.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int(shared.StatusInactive), got.StatusCode)
}

func TestMaterialService_Scoping(t *testing.T) {
	ctx := context.Background()
	env := newMaterialEnv(t)
	other, _ := env.newCustomer(t, "RIVAL")

	own, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{CustomerID: env.customer.ID, SKU: "A-1", Name: "Own"})
	require.NoError(t, err)
	foreign, err := env.svc.Create(ctx, env.admin, appcatalog.CreateMaterialRequest{CustomerID: other.ID, SKU: "B-1", Name: "Foreign"})
	require.NoError(t, err)

	client := identity.Principal{UserID: uuid.New(), Role: identity.RoleClient, CustomerID: &env.customer.ID}

	_, err = env.svc.GetByID(ctx, client, own.ID)
	require.NoError(t, err)
	_, err = env.svc.GetByID(ctx, client, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	items, total, err := env.svc.List(ctx, client, appcatalog.MaterialListFilter{}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, own.ID, items[0].ID)

	_, _, err = env.svc.List(ctx, client, appcatalog.MaterialListFilter{CustomerID: &other.ID}, shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, total, err = env.svc.List(ctx, env.admin, appcatalog.MaterialListFilter{}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = env.svc.List(ctx, env.admin, appcatalog.MaterialListFilter{ProjectID: &env.other.ID}, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
}
