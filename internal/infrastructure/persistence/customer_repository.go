package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

var customerListSpec = listSpec{
	sortFields:    CustomerSortFields,
	defaultOrder:  "name ASC",
	searchColumns: []string{"code", "name", "email", "city"},
}

// Create inserts the customer row. Projects are written through ProjectRepository.
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(customer).Error)
}

// Update saves the customer row guarded by its version
func (r *GormCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	return updateVersioned(ctx, r.db, customer)
}

// FindByID loads a customer with its projects, default project first
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_default DESC, name ASC")
		}).
		First(&customer, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

// ExistsByCode checks whether a customer code is taken
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	return existsExcluding(ctx, r.db, &partner.Customer{}, excludeID,
		"code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// List returns customers matching the filter
func (r *GormCustomerRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Customer{})
	if id, ok := uuidFilter(filter, "id"); ok {
		query = query.Where("id = ?", id)
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}

	var customers []partner.Customer
	total, err := paginate(query, filter, customerListSpec, &customers)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// GormProjectRepository implements partner.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a project
func (r *GormProjectRepository) Create(ctx context.Context, project *partner.Project) error {
	return translateError(r.db.WithContext(ctx).Create(project).Error)
}

// Update saves every column of a project
func (r *GormProjectRepository) Update(ctx context.Context, project *partner.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Select("*").
		Omit("id", "customer_id", "created_at", "created_by").
		Updates(project)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Project, error) {
	var project partner.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

// FindByCustomer returns all projects of a customer, default first
func (r *GormProjectRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]partner.Project, error) {
	var projects []partner.Project
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC, name ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

var _ partner.ProjectRepository = (*GormProjectRepository)(nil)
