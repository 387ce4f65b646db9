package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var userListSpec = listSpec{
	sortFields:    UserSortFields,
	defaultOrder:  "username ASC",
	searchColumns: []string{"username", "email", "first_name", "last_name"},
}

// Create inserts a user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// Update saves a user guarded by its version
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	return updateVersioned(ctx, r.db, user)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindByCustomer returns all users bound to a customer
func (r *GormUserRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]identity.User, error) {
	var users []identity.User
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsByUsername checks whether a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	return existsExcluding(ctx, r.db, &identity.User{}, excludeID,
		"username = ?", strings.ToLower(strings.TrimSpace(username)))
}

// List returns users matching the filter. Filters: "customer_id", "role", "status_code".
func (r *GormUserRepository) List(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&identity.User{})
	if id, ok := uuidFilter(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", id)
	}
	if role, ok := filter.Filters["role"].(identity.Role); ok {
		query = query.Where("role = ?", role)
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}

	var users []identity.User
	total, err := paginate(query, filter, userListSpec, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
