package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WarehouseService handles warehouse-related business operations
type WarehouseService struct {
	warehouseRepo partner.WarehouseRepository
	customerRepo  partner.CustomerRepository
	txScope       TransactionScope
	events        shared.EventPublisher
	logger        *zap.Logger
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(
	warehouseRepo partner.WarehouseRepository,
	customerRepo partner.CustomerRepository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *WarehouseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		customerRepo:  customerRepo,
		txScope:       txScope,
		events:        events,
		logger:        logger,
	}
}

// Create creates a new warehouse, optionally assigned to customers
func (s *WarehouseService) Create(ctx context.Context, principal identity.Principal, input WarehouseInput) (*WarehouseResponse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(ctx, input.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
	}

	warehouse, err := partner.NewWarehouse(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := applyWarehouseInput(warehouse, input); err != nil {
		return nil, err
	}
	warehouse.SetCreator(principal.ActorID())

	customerIDs, err := s.validateCustomers(ctx, input.CustomerIDs)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.WarehouseRepo().Create(ctx, warehouse); err != nil {
			return err
		}
		if len(customerIDs) == 0 {
			return nil
		}
		return repos.WarehouseRepo().ReplaceAssignments(ctx, warehouse.ID, customerIDs, principal.ActorID())
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.events, s.logger, warehouse)
	resp := ToWarehouseResponse(warehouse)
	resp.CustomerIDs = customerIDs
	return &resp, nil
}

// Update replaces the fields of a warehouse. A nil CustomerIDs leaves the
// assignments alone.
func (s *WarehouseService) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, input WarehouseInput) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.warehouseRepo.ExistsByCode(ctx, input.Code, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
	}
	if err := warehouse.UpdateCode(input.Code); err != nil {
		return nil, err
	}
	if err := warehouse.Update(input.Name); err != nil {
		return nil, err
	}
	if err := applyWarehouseInput(warehouse, input); err != nil {
		return nil, err
	}
	warehouse.Touch(principal.ActorID())

	var customerIDs []uuid.UUID
	if input.CustomerIDs != nil {
		if customerIDs, err = s.validateCustomers(ctx, input.CustomerIDs); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.WarehouseRepo().Update(ctx, warehouse); err != nil {
			return err
		}
		if input.CustomerIDs == nil {
			return nil
		}
		return repos.WarehouseRepo().ReplaceAssignments(ctx, warehouse.ID, customerIDs, principal.ActorID())
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.events, s.logger, warehouse)
	return s.toResponse(ctx, warehouse)
}

// GetByID returns a warehouse. Clients only see warehouses assigned to their customer.
func (s *WarehouseService) GetByID(ctx context.Context, principal identity.Principal, id uuid.UUID) (*WarehouseResponse, error) {
	if scope := principal.ScopeCustomerID(); scope != nil {
		assigned, err := s.warehouseRepo.IsAssigned(ctx, *scope, id)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, shared.ErrNotFound
		}
	}
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		resp := ToWarehouseResponse(warehouse)
		return &resp, nil
	}
	return s.toResponse(ctx, warehouse)
}

// List returns warehouses visible to the caller. Clients see the warehouses
// assigned to their customer; admins may narrow by customer_id.
func (s *WarehouseService) List(ctx context.Context, principal identity.Principal, customerID *uuid.UUID, filter shared.Filter) ([]WarehouseResponse, int64, error) {
	filter.Normalize()
	scoped, err := principal.ResolveCustomerFilter(customerID)
	if err != nil {
		return nil, 0, err
	}
	if scoped != nil {
		filter.Filters["customer_id"] = *scoped
	}

	warehouses, total, err := s.warehouseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		items[i] = ToWarehouseResponse(&warehouses[i])
	}
	return items, total, nil
}

// ListForCustomer returns the warehouses assigned to one customer
func (s *WarehouseService) ListForCustomer(ctx context.Context, principal identity.Principal, customerID uuid.UUID, filter shared.Filter) ([]WarehouseResponse, int64, error) {
	if !principal.CanAccessCustomer(customerID) {
		return nil, 0, shared.ErrNotFound
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, principal, &customerID, filter)
}

// ReplaceAssignments sets the customers allowed to ship from a warehouse
func (s *WarehouseService) ReplaceAssignments(ctx context.Context, principal identity.Principal, id uuid.UUID, input WarehouseAssignmentInput) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customerIDs, err := s.validateCustomers(ctx, input.CustomerIDs)
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.WarehouseRepo().ReplaceAssignments(ctx, id, customerIDs, principal.ActorID())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("warehouse assignments replaced",
		zap.String("warehouse_id", id.String()),
		zap.Int("customers", len(customerIDs)),
	)
	resp := ToWarehouseResponse(warehouse)
	resp.CustomerIDs = customerIDs
	return &resp, nil
}

// Delete removes a warehouse. A warehouse still referenced by orders is only
// deactivated; otherwise its assignments and the row itself are deleted.
func (s *WarehouseService) Delete(ctx context.Context, principal identity.Principal, id uuid.UUID) (*WarehouseDeleteResult, error) {
	var (
		warehouse *partner.Warehouse
		mode      partner.DeleteMode
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		warehouse, err = repos.WarehouseRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		orders, err := repos.OrderRepo().CountByWarehouse(ctx, id)
		if err != nil {
			return err
		}

		if orders > 0 {
			mode = partner.DeleteModeSoft
			warehouse.Deactivate(orders)
			warehouse.Touch(principal.ActorID())
			return repos.WarehouseRepo().Update(ctx, warehouse)
		}

		mode = partner.DeleteModeHard
		if err := repos.WarehouseRepo().RemoveAssignments(ctx, id); err != nil {
			return err
		}
		warehouse.MarkDeleted()
		return repos.WarehouseRepo().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("warehouse deleted",
		zap.String("warehouse_id", id.String()),
		zap.String("mode", string(mode)),
	)
	publishEvents(ctx, s.events, s.logger, warehouse)
	return &WarehouseDeleteResult{Mode: mode}, nil
}

func (s *WarehouseService) toResponse(ctx context.Context, warehouse *partner.Warehouse) (*WarehouseResponse, error) {
	customerIDs, err := s.warehouseRepo.AssignedCustomerIDs(ctx, warehouse.ID)
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(warehouse)
	resp.CustomerIDs = customerIDs
	return &resp, nil
}

// validateCustomers drops duplicates and checks every customer exists
func (s *WarehouseService) validateCustomers(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_REFERENCE", "Customer "+id.String()+" does not exist")
			}
			return nil, err
		}
		unique = append(unique, id)
	}
	return unique, nil
}

func applyWarehouseInput(warehouse *partner.Warehouse, in WarehouseInput) error {
	if err := warehouse.SetContact(in.ContactName, in.Phone, in.Email); err != nil {
		return err
	}
	if err := warehouse.SetAddress(in.Address.toDomain()); err != nil {
		return err
	}
	if in.StatusCode != nil {
		switch shared.StatusCode(*in.StatusCode) {
		case shared.StatusActive:
			warehouse.Activate()
		case shared.StatusInactive:
			warehouse.Deactivate(0)
		}
	}
	return nil
}
