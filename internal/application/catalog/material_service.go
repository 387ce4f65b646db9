package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// MaterialService handles material-related business operations
type MaterialService struct {
	materialRepo catalog.MaterialRepository
	customerRepo partner.CustomerRepository
	projectRepo  partner.ProjectRepository
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materialRepo catalog.MaterialRepository,
	customerRepo partner.CustomerRepository,
	projectRepo partner.ProjectRepository,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		customerRepo: customerRepo,
		projectRepo:  projectRepo,
	}
}

// Create creates a material under a customer's project
func (s *MaterialService) Create(ctx context.Context, principal identity.Principal, req CreateMaterialRequest) (*MaterialResponse, error) {
	projectID, err := s.resolveProject(ctx, req.CustomerID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	exists, err := s.materialRepo.ExistsBySKU(ctx, req.CustomerID, req.SKU, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Material with this SKU already exists for the customer")
	}

	material, err := catalog.NewMaterial(req.CustomerID, projectID, req.SKU, req.Name)
	if err != nil {
		return nil, err
	}
	if err := material.Update(req.SKU, req.Name, req.Description, req.UnitOfMeasure); err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if err := material.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	material.SetCreator(principal.ActorID())

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// Update replaces the fields of a material
func (s *MaterialService) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.materialRepo.ExistsBySKU(ctx, material.CustomerID, req.SKU, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Material with this SKU already exists for the customer")
	}

	if req.ProjectID != nil && *req.ProjectID != material.ProjectID {
		projectID, err := s.resolveProject(ctx, material.CustomerID, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := material.MoveToProject(projectID); err != nil {
			return nil, err
		}
	}
	if err := material.Update(req.SKU, req.Name, req.Description, req.UnitOfMeasure); err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if err := material.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.StatusCode != nil {
		switch shared.StatusCode(*req.StatusCode) {
		case shared.StatusActive:
			material.Activate()
		case shared.StatusInactive:
			material.Deactivate()
		}
	}
	material.Touch(principal.ActorID())

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// Deactivate soft-deletes a material
func (s *MaterialService) Deactivate(ctx context.Context, principal identity.Principal, id uuid.UUID) error {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	material.Deactivate()
	material.Touch(principal.ActorID())
	return s.materialRepo.Update(ctx, material)
}

// GetByID returns a material visible to the caller
func (s *MaterialService) GetByID(ctx context.Context, principal identity.Principal, id uuid.UUID) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessCustomer(material.CustomerID) {
		return nil, shared.ErrNotFound
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// List returns materials visible to the caller
func (s *MaterialService) List(ctx context.Context, principal identity.Principal, lf MaterialListFilter, filter shared.Filter) ([]MaterialResponse, int64, error) {
	filter.Normalize()
	customerID, err := principal.ResolveCustomerFilter(lf.CustomerID)
	if err != nil {
		return nil, 0, err
	}
	if customerID != nil {
		filter.Filters["customer_id"] = *customerID
	}
	if lf.ProjectID != nil {
		filter.Filters["project_id"] = *lf.ProjectID
	}
	if lf.StatusCode != nil {
		filter.Filters["status_code"] = shared.StatusCode(*lf.StatusCode)
	}

	materials, total, err := s.materialRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]MaterialResponse, len(materials))
	for i := range materials {
		items[i] = ToMaterialResponse(&materials[i])
	}
	return items, total, nil
}

// resolveProject returns the requested project after checking it is an active
// project of the customer, or the customer's default project when none is given.
func (s *MaterialService) resolveProject(ctx context.Context, customerID uuid.UUID, projectID *uuid.UUID) (uuid.UUID, error) {
	if projectID == nil {
		customer, err := s.customerRepo.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return uuid.Nil, shared.NewDomainError("INVALID_REFERENCE", "Customer does not exist")
			}
			return uuid.Nil, err
		}
		def := customer.DefaultProject()
		if def == nil {
			return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Customer has no default project")
		}
		return def.ID, nil
	}

	project, err := s.projectRepo.FindByID(ctx, *projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Project does not exist")
		}
		return uuid.Nil, err
	}
	if project.CustomerID != customerID || !project.IsActive() {
		return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Project does not belong to the customer")
	}
	return project.ID, nil
}
