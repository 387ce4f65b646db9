package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/migrations"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

// newSchemaTestDB opens an in-memory sqlite database built from the SQL
// migrations, so foreign keys behave as they do on postgres
func newSchemaTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	up, err := migrations.FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)
	require.NoError(t, database.DB.Exec(string(up)).Error)
	return database.DB
}

type fixture struct {
	customer  *partner.Customer
	project   *partner.Project
	warehouse *partner.Warehouse
	carrier   *partner.Carrier
	shipTo    *partner.Account
	material  *catalog.Material
}

func seedFixture(t *testing.T, db *gorm.DB, code string) fixture {
	t.Helper()
	ctx := context.Background()

	customer, err := partner.NewCustomer(code, "Customer "+code)
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Create(ctx, customer))

	project, err := partner.NewProject(customer.ID, "Default", "", true)
	require.NoError(t, err)
	require.NoError(t, NewGormProjectRepository(db).Create(ctx, project))

	warehouse, err := partner.NewWarehouse("WH-"+code, "Warehouse "+code)
	require.NoError(t, err)
	require.NoError(t, NewGormWarehouseRepository(db).Create(ctx, warehouse))

	carrier, err := partner.NewCarrier("CR-"+code, "Carrier "+code)
	require.NoError(t, err)
	require.NoError(t, NewGormCarrierRepository(db).Create(ctx, carrier))

	shipTo, err := partner.NewAccount(customer.ID, "Ship To "+code, partner.AccountTypeShipTo)
	require.NoError(t, err)
	require.NoError(t, NewGormAccountRepository(db).Create(ctx, shipTo))

	material, err := catalog.NewMaterial(customer.ID, project.ID, "SKU-"+code, "Material "+code)
	require.NoError(t, err)
	require.NoError(t, NewGormMaterialRepository(db).Create(ctx, material))

	return fixture{customer, project, warehouse, carrier, shipTo, material}
}

func (f fixture) newOrder(t *testing.T, number string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(number, f.customer.ID, trade.OrderHeader{
		ProjectID:       f.project.ID,
		WarehouseID:     f.warehouse.ID,
		CarrierID:       f.carrier.ID,
		ShipToAccountID: f.shipTo.ID,
		Reference:       "PO-" + number,
	}, []trade.OrderLine{{
		MaterialID:   f.material.ID,
		MaterialSKU:  f.material.SKU,
		MaterialName: f.material.Name,
		Quantity:     decimal.NewFromInt(3),
	}})
	require.NoError(t, err)
	return order
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }
