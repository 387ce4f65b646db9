package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountRepository implements partner.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

var accountListSpec = listSpec{
	sortFields:    AccountSortFields,
	defaultOrder:  "name ASC",
	searchColumns: []string{"name", "contact_name", "city"},
}

// Create inserts an account
func (r *GormAccountRepository) Create(ctx context.Context, account *partner.Account) error {
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

// Update saves every column of an account
func (r *GormAccountRepository) Update(ctx context.Context, account *partner.Account) error {
	result := r.db.WithContext(ctx).
		Model(account).
		Select("*").
		Omit("id", "customer_id", "created_at", "created_by").
		Updates(account)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Account, error) {
	var account partner.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

// ListByCustomer returns the accounts of one customer
func (r *GormAccountRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]partner.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Account{}).Where("customer_id = ?", customerID)
	if t, ok := filter.Filters["type"].(partner.AccountType); ok {
		query = query.Where("type = ?", t)
	}
	if status, ok := statusFilter(filter); ok {
		query = query.Where("status_code = ?", status)
	}

	var accounts []partner.Account
	total, err := paginate(query, filter, accountListSpec, &accounts)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

var _ partner.AccountRepository = (*GormAccountRepository)(nil)
