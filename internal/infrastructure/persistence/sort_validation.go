package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommonSortFields(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":          true,
		"created_at":  true,
		"modified_at": true,
		"status_code": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

var (
	UserSortFields      = withCommonSortFields("username", "email", "last_name", "role", "last_login_at")
	CustomerSortFields  = withCommonSortFields("code", "name", "email")
	AccountSortFields   = withCommonSortFields("name", "type", "city")
	WarehouseSortFields = withCommonSortFields("code", "name", "city")
	CarrierSortFields   = withCommonSortFields("code", "name")
	MaterialSortFields  = withCommonSortFields("sku", "name", "quantity", "unit_of_measure")
	OrderSortFields     = withCommonSortFields("order_number", "requested_ship_date", "reference")
)
