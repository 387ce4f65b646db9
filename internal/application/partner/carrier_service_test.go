package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// MockCarrierRepository is a mock implementation of CarrierRepository
type MockCarrierRepository struct {
	mock.Mock
}

func (m *MockCarrierRepository) Create(ctx context.Context, carrier *partner.Carrier) error {
	return m.Called(ctx, carrier).Error(0)
}

func (m *MockCarrierRepository) Update(ctx context.Context, carrier *partner.Carrier) error {
	return m.Called(ctx, carrier).Error(0)
}

func (m *MockCarrierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Carrier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarrierRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Carrier, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Carrier), args.Get(1).(int64), args.Error(2)
}

func (m *MockCarrierRepository) CreateService(ctx context.Context, service *partner.CarrierService) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockCarrierRepository) UpdateService(ctx context.Context, service *partner.CarrierService) error {
	return m.Called(ctx, service).Error(0)
}

func (m *MockCarrierRepository) FindServiceByID(ctx context.Context, id uuid.UUID) (*partner.CarrierService, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CarrierService), args.Error(1)
}

func newTestCarrier(t *testing.T) *partner.Carrier {
	t.Helper()
	c, err := partner.NewCarrier("UPS", "United Parcel Service")
	require.NoError(t, err)
	ground, err := partner.NewCarrierService(c.ID, "GND", "Ground")
	require.NoError(t, err)
	air, err := partner.NewCarrierService(c.ID, "AIR", "Next Day Air")
	require.NoError(t, err)
	air.Deactivate()
	c.Services = []partner.CarrierService{*ground, *air}
	return c
}

func TestCarrierService_ListActive(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCarrierRepository)
	svc := NewCarrierService(repo)

	carrier := newTestCarrier(t)
	repo.On("List", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status_code"] == shared.StatusActive
	})).Return([]partner.Carrier{*carrier}, int64(1), nil)

	items, total, err := svc.ListActive(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "UPS", items[0].Code)
	repo.AssertExpectations(t)
}

func TestCarrierService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("clients only see active services", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)

		resp, err := NewCarrierService(repo).GetByID(ctx, clientPrincipal(uuid.New()), carrier.ID)
		require.NoError(t, err)
		require.Len(t, resp.Services, 1)
		assert.Equal(t, "GND", resp.Services[0].Code)
	})

	t.Run("admins see every service", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)

		resp, err := NewCarrierService(repo).GetByID(ctx, adminPrincipal(), carrier.ID)
		require.NoError(t, err)
		assert.Len(t, resp.Services, 2)
	})

	t.Run("inactive carrier is hidden from clients", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		carrier.Deactivate()
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)

		_, err := NewCarrierService(repo).GetByID(ctx, clientPrincipal(uuid.New()), carrier.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCarrierService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCarrierRepository)
	carrier := newTestCarrier(t)

	repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(c *partner.Carrier) bool {
		return c.StatusCode == shared.StatusInactive
	})).Return(nil)

	require.NoError(t, NewCarrierService(repo).Delete(ctx, adminPrincipal(), carrier.ID))
	repo.AssertExpectations(t)
}

func TestCarrierService_Services(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a duplicate service code", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)

		_, err := NewCarrierService(repo).CreateService(ctx, adminPrincipal(), carrier.ID, CarrierServiceInput{Code: "gnd", Name: "Ground again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "CreateService", mock.Anything, mock.Anything)
	})

	t.Run("creates a service", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)
		repo.On("CreateService", ctx, mock.AnythingOfType("*partner.CarrierService")).Return(nil)

		resp, err := NewCarrierService(repo).CreateService(ctx, adminPrincipal(), carrier.ID, CarrierServiceInput{Code: "2day", Name: "Second Day"})
		require.NoError(t, err)
		assert.Equal(t, "2DAY", resp.Code)
		assert.Equal(t, carrier.ID, resp.CarrierID)
	})

	t.Run("updates a service of the carrier", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		carrier := newTestCarrier(t)
		serviceID := carrier.Services[0].ID
		repo.On("FindByID", ctx, carrier.ID).Return(carrier, nil)
		repo.On("UpdateService", ctx, mock.AnythingOfType("*partner.CarrierService")).Return(nil)

		resp, err := NewCarrierService(repo).UpdateService(ctx, adminPrincipal(), carrier.ID, serviceID, CarrierServiceInput{Code: "GND", Name: "Ground Saver"})
		require.NoError(t, err)
		assert.Equal(t, "Ground Saver", resp.Name)
	})

	t.Run("service of another carrier is not found", func(t *testing.T) {
		repo := new(MockCarrierRepository)
		service, err := partner.NewCarrierService(uuid.New(), "GND", "Ground")
		require.NoError(t, err)
		repo.On("FindServiceByID", ctx, service.ID).Return(service, nil)

		err = NewCarrierService(repo).DeleteService(ctx, adminPrincipal(), uuid.New(), service.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "UpdateService", mock.Anything, mock.Anything)
	})
}
