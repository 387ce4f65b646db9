package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder loads the reference data a fresh database needs
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// SeedInput names the bootstrap administrator
type SeedInput struct {
	AdminUsername string
	AdminPassword string
}

// Seed inserts the statuses and, when no user with AdminUsername exists, the
// bootstrap administrator. Running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context, in SeedInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormStatusRepository(tx).EnsureSeeded(ctx); err != nil {
			return fmt.Errorf("seed statuses: %w", err)
		}
		s.logger.Info("statuses seeded", zap.Int("count", len(shared.AllStatuses())))

		if in.AdminUsername == "" {
			return nil
		}
		users := NewGormUserRepository(tx)
		_, err := users.FindByUsername(ctx, in.AdminUsername)
		if err == nil {
			s.logger.Info("admin user already present", zap.String("username", in.AdminUsername))
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		admin, err := identity.NewUser(in.AdminUsername, in.AdminPassword, identity.RoleAdmin, nil)
		if err != nil {
			return fmt.Errorf("build admin user: %w", err)
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		s.logger.Info("admin user created", zap.String("username", admin.Username))
		return nil
	})
}
