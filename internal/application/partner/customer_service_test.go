package partner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apppartner "github.com/wms/backend/internal/application/partner"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// failingUsersScope runs the real transaction but fails every user insert
type failingUsersScope struct {
	inner apppartner.TransactionScope
}

func (s failingUsersScope) Execute(ctx context.Context, fn func(repos apppartner.TransactionalRepositories) error) error {
	return s.inner.Execute(ctx, func(repos apppartner.TransactionalRepositories) error {
		return fn(failingUsersRepos{TransactionalRepositories: repos})
	})
}

type failingUsersRepos struct {
	apppartner.TransactionalRepositories
}

func (r failingUsersRepos) UserRepo() identity.UserRepository {
	return failingUserRepo{UserRepository: r.TransactionalRepositories.UserRepo()}
}

type failingUserRepo struct {
	identity.UserRepository
}

func (failingUserRepo) Create(context.Context, *identity.User) error {
	return errors.New("disk full")
}

type customerEnv struct {
	db        *gorm.DB
	service   *apppartner.CustomerService
	publisher *recordingPublisher
	admin     identity.Principal
}

func newCustomerEnv(t *testing.T, scope func(db *gorm.DB) apppartner.TransactionScope) customerEnv {
	t.Helper()
	db := newSQLiteDB(t)
	if scope == nil {
		scope = func(db *gorm.DB) apppartner.TransactionScope { return persistence.NewGormTransactionScope(db) }
	}
	publisher := &recordingPublisher{}
	svc := apppartner.NewCustomerService(
		persistence.NewGormCustomerRepository(db),
		persistence.NewGormProjectRepository(db),
		persistence.NewGormUserRepository(db),
		scope(db),
		publisher,
		zap.NewNop(),
	)
	return customerEnv{
		db:        db,
		service:   svc,
		publisher: publisher,
		admin:     identity.Principal{UserID: uuid.New(), Username: "admin", Role: identity.RoleAdmin},
	}
}

func wizardInput(code string) apppartner.CustomerWizardInput {
	return apppartner.CustomerWizardInput{
		Customer: apppartner.CustomerInput{
			Code:  code,
			Name:  "Customer " + code,
			Email: "ops@" + code + ".example.com",
			Address: apppartner.AddressInput{
				AddressLine1: "1 Dock Road",
				City:         "Rotterdam",
				Country:      "NL",
			},
		},
		Projects: []apppartner.ProjectInput{
			{Name: "Spring Line"},
			{Name: "Autumn Line"},
		},
		Users: []apppartner.UserInput{
			{Username: code + "-buyer", Password: "password123", FirstName: "Ada", LastName: "Buyer"},
		},
	}
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("writes customer projects and users together", func(t *testing.T) {
		env := newCustomerEnv(t, nil)

		resp, err := env.service.Create(ctx, env.admin, wizardInput("acme"))
		require.NoError(t, err)

		assert.Equal(t, "ACME", resp.Code)
		assert.Equal(t, "Rotterdam", resp.Address.City)
		require.Len(t, resp.Projects, 2)
		assert.True(t, resp.Projects[0].IsDefault, "first project becomes default")
		assert.False(t, resp.Projects[1].IsDefault)
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "acme-buyer", resp.Users[0].Username)
		assert.Equal(t, identity.RoleClient, resp.Users[0].Role)

		var projects int64
		require.NoError(t, env.db.Model(&partner.Project{}).Where("customer_id = ?", resp.ID).Count(&projects).Error)
		assert.Equal(t, int64(2), projects)

		user, err := persistence.NewGormUserRepository(env.db).FindByUsername(ctx, "acme-buyer")
		require.NoError(t, err)
		require.NotNil(t, user.CustomerID)
		assert.Equal(t, resp.ID, *user.CustomerID)
		assert.True(t, user.VerifyPassword("password123"))

		assert.Contains(t, env.publisher.types(), "CustomerCreated")
	})

	t.Run("keeps an explicit default project", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		in := wizardInput("beta")
		in.Projects[1].IsDefault = true

		resp, err := env.service.Create(ctx, env.admin, in)
		require.NoError(t, err)
		assert.False(t, resp.Projects[0].IsDefault)
		assert.True(t, resp.Projects[1].IsDefault)
	})

	t.Run("rejects two default projects", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		in := wizardInput("gamma")
		in.Projects[0].IsDefault = true
		in.Projects[1].IsDefault = true

		_, err := env.service.Create(ctx, env.admin, in)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DEFAULT_PROJECT", domainErr.Code)
	})

	t.Run("requires a project", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		in := wizardInput("delta")
		in.Projects = nil

		_, err := env.service.Create(ctx, env.admin, in)
		require.Error(t, err)
	})

	t.Run("rejects duplicate customer code", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		_, err := env.service.Create(ctx, env.admin, wizardInput("dup"))
		require.NoError(t, err)

		in := wizardInput("DUP")
		in.Users = nil
		_, err = env.service.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		_, err := env.service.Create(ctx, env.admin, wizardInput("one"))
		require.NoError(t, err)

		in := wizardInput("two")
		in.Users[0].Username = "ONE-buyer"
		_, err = env.service.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("rejects usernames repeated in the request", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		in := wizardInput("three")
		in.Users = append(in.Users, apppartner.UserInput{Username: "THREE-BUYER", Password: "password123"})

		_, err := env.service.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("requires a password for new users", func(t *testing.T) {
		env := newCustomerEnv(t, nil)
		in := wizardInput("four")
		in.Users[0].Password = ""

		_, err := env.service.Create(ctx, env.admin, in)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})

	t.Run("failed user insert leaves no customer behind", func(t *testing.T) {
		env := newCustomerEnv(t, func(db *gorm.DB) apppartner.TransactionScope {
			return failingUsersScope{inner: persistence.NewGormTransactionScope(db)}
		})

		_, err := env.service.Create(ctx, env.admin, wizardInput("rollback"))
		require.Error(t, err)

		var customers, projects int64
		require.NoError(t, env.db.Model(&partner.Customer{}).Count(&customers).Error)
		require.NoError(t, env.db.Model(&partner.Project{}).Count(&projects).Error)
		assert.Zero(t, customers)
		assert.Zero(t, projects)
		assert.Empty(t, env.publisher.events)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	env := newCustomerEnv(t, nil)

	created, err := env.service.Create(ctx, env.admin, wizardInput("upd"))
	require.NoError(t, err)
	spring := created.Projects[0]
	buyer := created.Users[0]

	in := apppartner.CustomerWizardInput{
		Customer: apppartner.CustomerInput{Code: "UPD-2", Name: "Renamed Customer"},
		Projects: []apppartner.ProjectInput{
			{ID: &spring.ID, Name: "Spring Line 2027"},
			{Name: "Winter Line", IsDefault: true},
		},
		Users: []apppartner.UserInput{
			{ID: &buyer.ID, Username: buyer.Username, Email: "buyer@upd.example.com"},
			{Username: "upd-planner", Password: "planner123"},
		},
	}

	resp, err := env.service.Update(ctx, env.admin, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "UPD-2", resp.Code)
	assert.Equal(t, "Renamed Customer", resp.Name)
	assert.Len(t, resp.Users, 2)

	projects, err := persistence.NewGormProjectRepository(env.db).FindByCustomer(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, projects, 3)

	byName := make(map[string]partner.Project)
	for _, p := range projects {
		byName[p.Name] = p
	}
	assert.Equal(t, shared.StatusActive, byName["Spring Line 2027"].StatusCode)
	assert.False(t, byName["Spring Line 2027"].IsDefault)
	assert.True(t, byName["Winter Line"].IsDefault)
	assert.Equal(t, shared.StatusInactive, byName["Autumn Line"].StatusCode, "omitted project is deactivated")

	users := persistence.NewGormUserRepository(env.db)
	stored, err := users.FindByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "buyer@upd.example.com", stored.Email)
	assert.True(t, stored.VerifyPassword("password123"), "password kept when omitted")

	planner, err := users.FindByUsername(ctx, "upd-planner")
	require.NoError(t, err)
	assert.Equal(t, created.ID, *planner.CustomerID)

	t.Run("rejects a project of another customer", func(t *testing.T) {
		other, err := env.service.Create(ctx, env.admin, wizardInput("other"))
		require.NoError(t, err)

		bad := in
		bad.Projects = []apppartner.ProjectInput{{ID: &other.Projects[0].ID, Name: "Stolen"}}
		bad.Users = nil
		_, err = env.service.Update(ctx, env.admin, created.ID, bad)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := env.service.Update(ctx, env.admin, uuid.New(), in)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_Scoping(t *testing.T) {
	ctx := context.Background()
	env := newCustomerEnv(t, nil)

	own, err := env.service.Create(ctx, env.admin, wizardInput("own"))
	require.NoError(t, err)
	foreign, err := env.service.Create(ctx, env.admin, wizardInput("foreign"))
	require.NoError(t, err)

	client := identity.Principal{UserID: own.Users[0].ID, Role: identity.RoleClient, CustomerID: &own.ID}

	got, err := env.service.GetByID(ctx, client, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "OWN", got.Code)
	assert.Len(t, got.Projects, 2)

	_, err = env.service.GetByID(ctx, client, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	items, total, err := env.service.List(ctx, client, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, own.ID, items[0].ID)

	_, total, err = env.service.List(ctx, env.admin, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = env.service.ListProjects(ctx, client, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	users, err := env.service.ListUsers(ctx, client, own.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCustomerService_Deactivate(t *testing.T) {
	ctx := context.Background()
	env := newCustomerEnv(t, nil)

	created, err := env.service.Create(ctx, env.admin, wizardInput("gone"))
	require.NoError(t, err)

	require.NoError(t, env.service.Deactivate(ctx, env.admin, created.ID))

	customer, err := persistence.NewGormCustomerRepository(env.db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, customer.IsActive())
	assert.Equal(t, 2, customer.Version)

	user, err := persistence.NewGormUserRepository(env.db).FindByID(ctx, created.Users[0].ID)
	require.NoError(t, err)
	assert.False(t, user.CanLogin())
}
