package persistence

import (
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&shared.Status{},
		&partner.Customer{},
		&partner.Project{},
		&partner.Account{},
		&identity.User{},
		&partner.Warehouse{},
		&partner.CustomerWarehouse{},
		&partner.Carrier{},
		&partner.CarrierService{},
		&catalog.Material{},
		&trade.Order{},
		&trade.OrderItem{},
	}
}

// AutoMigrate creates or updates the tables of Models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
