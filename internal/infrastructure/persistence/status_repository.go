package persistence

import (
	"context"

	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStatusRepository implements shared.StatusRepository using GORM
type GormStatusRepository struct {
	db *gorm.DB
}

// NewGormStatusRepository creates a new GormStatusRepository
func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// List returns all statuses in code order
func (r *GormStatusRepository) List(ctx context.Context) ([]shared.Status, error) {
	var statuses []shared.Status
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

// EnsureSeeded inserts the missing statuses
func (r *GormStatusRepository) EnsureSeeded(ctx context.Context) error {
	rows := shared.AllStatuses()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows).Error
}

var _ shared.StatusRepository = (*GormStatusRepository)(nil)
