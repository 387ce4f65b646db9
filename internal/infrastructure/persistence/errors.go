package persistence

import (
	"errors"

	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm errors onto domain errors. Requires the
// TranslateError gorm option for duplicate keys.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrInvalidReference
	default:
		return err
	}
}
