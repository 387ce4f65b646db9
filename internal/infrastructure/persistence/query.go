package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listSpec describes how a list endpoint maps a shared.Filter onto SQL
type listSpec struct {
	sortFields   map[string]bool
	defaultOrder string
	// searchColumns are matched with a case-insensitive LIKE
	searchColumns []string
}

// applySearch adds the search predicate across spec.searchColumns
func applySearch(query *gorm.DB, search string, columns []string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// paginate counts the filtered rows, then applies ordering and paging and
// loads the page into dest. Scopes (e.g. preloads) apply to the page query only.
func paginate[T any](query *gorm.DB, filter shared.Filter, spec listSpec, dest *[]T, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	filter.Normalize()
	query = applySearch(query, filter.Search, spec.searchColumns).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	order := spec.defaultOrder
	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, spec.sortFields, "")
		if field != "" {
			order = field + " " + ValidateSortOrder(filter.OrderDir)
		}
	}
	if err := query.Scopes(scopes...).Order(order).Offset(filter.Offset()).Limit(filter.PageSize).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// statusFilter reads the "status_code" filter value
func statusFilter(filter shared.Filter) (shared.StatusCode, bool) {
	switch v := filter.Filters["status_code"].(type) {
	case shared.StatusCode:
		return v, true
	case int:
		return shared.StatusCode(v), true
	default:
		return 0, false
	}
}

// uuidFilter reads a uuid filter value given as uuid.UUID or *uuid.UUID
func uuidFilter(filter shared.Filter, key string) (uuid.UUID, bool) {
	switch v := filter.Filters[key].(type) {
	case uuid.UUID:
		return v, true
	case *uuid.UUID:
		if v != nil {
			return *v, true
		}
	}
	return uuid.Nil, false
}

// existsExcluding reports whether a row matching where exists, ignoring excludeID
func existsExcluding(ctx context.Context, db *gorm.DB, model any, excludeID *uuid.UUID, where string, args ...any) (bool, error) {
	var count int64
	query := db.WithContext(ctx).Model(model).Where(where, args...)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// updateVersioned saves every column of an aggregate root guarded by its
// version. A stale version yields shared.ErrConcurrencyConflict.
func updateVersioned(ctx context.Context, db *gorm.DB, agg shared.AggregateRoot) error {
	expected := agg.GetVersion()
	agg.IncrementVersion()

	result := db.WithContext(ctx).
		Model(agg).
		Where("version = ?", expected).
		Select("*").
		Omit(clause.Associations, "id", "created_at", "created_by").
		Updates(agg)
	if result.Error != nil {
		revertVersion(agg, expected)
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		revertVersion(agg, expected)
		return shared.ErrConcurrencyConflict
	}
	return nil
}

type versionSetter interface {
	SetVersion(v int)
}

func revertVersion(agg shared.AggregateRoot, v int) {
	if s, ok := agg.(versionSetter); ok {
		s.SetVersion(v)
	}
}
