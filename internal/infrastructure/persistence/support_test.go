package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apppartner "github.com/wms/backend/internal/application/partner"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestSeeder_SeedsStatusesAndAdminOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	seeder := NewSeeder(db, zap.New(core))

	in := SeedInput{AdminUsername: "admin", AdminPassword: "Password123"}
	require.NoError(t, seeder.Seed(ctx, in))
	require.NoError(t, seeder.Seed(ctx, in))

	admin, err := NewGormUserRepository(db).FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, admin.Role)
	assert.True(t, admin.VerifyPassword("Password123"))

	var users int64
	require.NoError(t, db.Model(&identity.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	assert.Equal(t, 1, logs.FilterMessage("admin user created").Len())
	assert.Equal(t, 1, logs.FilterMessage("admin user already present").Len())
}

func TestSeeder_RejectsWeakPassword(t *testing.T) {
	db := newTestDB(t)
	err := NewSeeder(db, zap.NewNop()).Seed(context.Background(), SeedInput{AdminUsername: "admin", AdminPassword: "x"})
	require.Error(t, err)

	statuses, err := NewGormStatusRepository(db).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, statuses, "statuses roll back with the failed admin insert")
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := NewGormTransactionScope(db)
	boom := errors.New("boom")

	var customerID uuid.UUID
	err := scope.Execute(ctx, func(repos apppartner.TransactionalRepositories) error {
		customer, err := partner.NewCustomer("TX", "Tx Co")
		if err != nil {
			return err
		}
		customerID = customer.ID
		if err := repos.CustomerRepo().Create(ctx, customer); err != nil {
			return err
		}
		project, err := partner.NewProject(customer.ID, "Default", "", true)
		if err != nil {
			return err
		}
		if err := repos.ProjectRepo().Create(ctx, project); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormCustomerRepository(db).FindByID(ctx, customerID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	var projects int64
	require.NoError(t, db.Model(&partner.Project{}).Count(&projects).Error)
	assert.Zero(t, projects)
}

func TestGormTransactionScope_Commits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	customer, err := partner.NewCustomer("OK", "Ok Co")
	require.NoError(t, err)
	err = NewGormTransactionScope(db).Execute(ctx, func(repos apppartner.TransactionalRepositories) error {
		if err := repos.CustomerRepo().Create(ctx, customer); err != nil {
			return err
		}
		user, err := identity.NewUser("ok.user", "Password123", identity.RoleClient, &customer.ID)
		if err != nil {
			return err
		}
		return repos.UserRepo().Create(ctx, user)
	})
	require.NoError(t, err)

	users, err := NewGormUserRepository(db).FindByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProjectRepository_ForeignKey(t *testing.T) {
	db := newTestDB(t)
	project, err := partner.NewProject(uuid.New(), "Orphan", "", true)
	require.NoError(t, err)
	err = NewGormProjectRepository(db).Create(context.Background(), project)
	assert.ErrorIs(t, err, shared.ErrInvalidReference)
}

func TestDatabase_PingAndStats(t *testing.T) {
	db := newTestDB(t)
	database := &Database{DB: db, Driver: "sqlite"}
	require.NoError(t, database.Ping(context.Background()))

	stats, err := database.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestSortValidation(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "DESC", ValidateSortOrder("DESC"))
	assert.Equal(t, "DESC", ValidateSortOrder("sideways"))

	assert.Equal(t, "order_number", ValidateSortField("order_number", OrderSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password_hash; DROP", UserSortFields, "created_at"))
	assert.True(t, CustomerSortFields["created_at"])
}

func TestApplySearch_BuildsLowerLike(t *testing.T) {
	db := newTestDB(t)
	stmt := applySearch(db.Session(&gorm.Session{DryRun: true}).Model(&partner.Customer{}), " Acme ", []string{"code", "name"}).
		Find(&[]partner.Customer{}).Statement

	assert.Contains(t, stmt.SQL.String(), "(LOWER(code) LIKE ? OR LOWER(name) LIKE ?)")
	assert.Equal(t, []any{"%acme%", "%acme%"}, stmt.Vars)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestOrderRepository_CountByWarehouse_Postgres(t *testing.T) {
	db, mock := newMockDB(t)
	warehouseID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders" WHERE warehouse_id = $1`)).
		WithArgs(warehouseID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := NewGormOrderRepository(db).CountByWarehouse(context.Background(), warehouseID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarehouseRepository_IsAssigned_PropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "customer_warehouses"`)).
		WillReturnError(boom)

	_, err := NewGormWarehouseRepository(db).IsAssigned(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
