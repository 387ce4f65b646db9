package partner

import (
	"context"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically
type TransactionScope interface {
	// Execute runs fn within a database transaction. A returned error rolls
	// the transaction back; otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction.
//
// The customer wizard writes Customer, Project and User rows together; the
// warehouse delete reads order references and removes assignment rows in the
// same transaction as the warehouse itself.
type TransactionalRepositories interface {
	CustomerRepo() partner.CustomerRepository
	ProjectRepo() partner.ProjectRepository
	UserRepo() identity.UserRepository
	WarehouseRepo() partner.WarehouseRepository
	OrderRepo() trade.OrderRepository
}

// NoOpTransactionScope runs fn directly against the given repositories
// without a transaction. It is meant for unit tests.
type NoOpTransactionScope struct {
	repos noOpRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	customers partner.CustomerRepository,
	projects partner.ProjectRepository,
	users identity.UserRepository,
	warehouses partner.WarehouseRepository,
	orders trade.OrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: noOpRepositories{
		customers:  customers,
		projects:   projects,
		users:      users,
		warehouses: warehouses,
		orders:     orders,
	}}
}

// Execute implements TransactionScope
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

type noOpRepositories struct {
	customers  partner.CustomerRepository
	projects   partner.ProjectRepository
	users      identity.UserRepository
	warehouses partner.WarehouseRepository
	orders     trade.OrderRepository
}

func (r noOpRepositories) CustomerRepo() partner.CustomerRepository   { return r.customers }
func (r noOpRepositories) ProjectRepo() partner.ProjectRepository     { return r.projects }
func (r noOpRepositories) UserRepo() identity.UserRepository          { return r.users }
func (r noOpRepositories) WarehouseRepo() partner.WarehouseRepository { return r.warehouses }
func (r noOpRepositories) OrderRepo() trade.OrderRepository           { return r.orders }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
