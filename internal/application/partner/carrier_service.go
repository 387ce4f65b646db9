package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// CarrierService handles carriers and their service levels
type CarrierService struct {
	carrierRepo partner.CarrierRepository
}

// NewCarrierService creates a new CarrierService
func NewCarrierService(carrierRepo partner.CarrierRepository) *CarrierService {
	return &CarrierService{carrierRepo: carrierRepo}
}

// ListActive returns the active carriers with their active services
func (s *CarrierService) ListActive(ctx context.Context, filter shared.Filter) ([]CarrierResponse, int64, error) {
	filter.Normalize()
	filter.Filters["status_code"] = shared.StatusActive
	carriers, total, err := s.carrierRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]CarrierResponse, len(carriers))
	for i := range carriers {
		items[i] = ToCarrierResponse(&carriers[i])
	}
	return items, total, nil
}

// GetByID returns a carrier with all its services. Non-admins only see active carriers.
func (s *CarrierService) GetByID(ctx context.Context, principal identity.Principal, id uuid.UUID) (*CarrierResponse, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		if !carrier.IsActive() {
			return nil, shared.ErrNotFound
		}
		carrier.Services = activeServices(carrier.Services)
	}
	resp := ToCarrierResponse(carrier)
	return &resp, nil
}

// Create creates a carrier
func (s *CarrierService) Create(ctx context.Context, principal identity.Principal, input CarrierInput) (*CarrierResponse, error) {
	exists, err := s.carrierRepo.ExistsByCode(ctx, input.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier with this code already exists")
	}

	carrier, err := partner.NewCarrier(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := applyCarrierInput(carrier, input); err != nil {
		return nil, err
	}
	carrier.SetCreator(principal.ActorID())

	if err := s.carrierRepo.Create(ctx, carrier); err != nil {
		return nil, err
	}
	resp := ToCarrierResponse(carrier)
	return &resp, nil
}

// Update replaces the fields of a carrier
func (s *CarrierService) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, input CarrierInput) (*CarrierResponse, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.carrierRepo.ExistsByCode(ctx, input.Code, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier with this code already exists")
	}
	if err := carrier.UpdateCode(input.Code); err != nil {
		return nil, err
	}
	if err := applyCarrierInput(carrier, input); err != nil {
		return nil, err
	}
	carrier.Touch(principal.ActorID())

	if err := s.carrierRepo.Update(ctx, carrier); err != nil {
		return nil, err
	}
	resp := ToCarrierResponse(carrier)
	return &resp, nil
}

// Delete deactivates a carrier. Existing orders keep their carrier.
func (s *CarrierService) Delete(ctx context.Context, principal identity.Principal, id uuid.UUID) error {
	carrier, err := s.carrierRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	carrier.Deactivate()
	carrier.Touch(principal.ActorID())
	return s.carrierRepo.Update(ctx, carrier)
}

// CreateService adds a service level to a carrier
func (s *CarrierService) CreateService(ctx context.Context, principal identity.Principal, carrierID uuid.UUID, input CarrierServiceInput) (*CarrierServiceResponse, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	if carrier.HasServiceCode(input.Code, uuid.Nil) {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier already has a service with this code")
	}
	service, err := partner.NewCarrierService(carrierID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	service.SetCreator(principal.ActorID())

	if err := s.carrierRepo.CreateService(ctx, service); err != nil {
		return nil, err
	}
	resp := ToCarrierServiceResponse(service)
	return &resp, nil
}

// UpdateService replaces the code and name of a carrier service
func (s *CarrierService) UpdateService(ctx context.Context, principal identity.Principal, carrierID, serviceID uuid.UUID, input CarrierServiceInput) (*CarrierServiceResponse, error) {
	carrier, err := s.carrierRepo.FindByID(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	service := carrier.FindService(serviceID)
	if service == nil {
		return nil, shared.ErrNotFound
	}
	if carrier.HasServiceCode(input.Code, serviceID) {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Carrier already has a service with this code")
	}
	if err := service.Update(input.Code, input.Name); err != nil {
		return nil, err
	}
	service.Touch(principal.ActorID())

	if err := s.carrierRepo.UpdateService(ctx, service); err != nil {
		return nil, err
	}
	resp := ToCarrierServiceResponse(service)
	return &resp, nil
}

// DeleteService deactivates a carrier service
func (s *CarrierService) DeleteService(ctx context.Context, principal identity.Principal, carrierID, serviceID uuid.UUID) error {
	service, err := s.carrierRepo.FindServiceByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if service.CarrierID != carrierID {
		return shared.ErrNotFound
	}
	service.Deactivate()
	service.Touch(principal.ActorID())
	return s.carrierRepo.UpdateService(ctx, service)
}

func applyCarrierInput(carrier *partner.Carrier, in CarrierInput) error {
	if err := carrier.Update(in.Name, in.TrackingURL); err != nil {
		return err
	}
	if in.StatusCode != nil {
		switch shared.StatusCode(*in.StatusCode) {
		case shared.StatusActive:
			carrier.Activate()
		case shared.StatusInactive:
			carrier.Deactivate()
		}
	}
	return nil
}

func activeServices(services []partner.CarrierService) []partner.CarrierService {
	active := make([]partner.CarrierService, 0, len(services))
	for _, svc := range services {
		if svc.IsActive() {
			active = append(active, svc)
		}
	}
	return active
}
