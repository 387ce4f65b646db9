package shared

import "context"

// StatusCode is the small integer status shared by every table
type StatusCode int

const (
	StatusActive   StatusCode = 1
	StatusInactive StatusCode = 2

	// Order lifecycle
	StatusOrderNew        StatusCode = 10
	StatusOrderProcessing StatusCode = 11
	StatusOrderShipped    StatusCode = 12
	StatusOrderDelivered  StatusCode = 13
	StatusOrderCancelled  StatusCode = 14
)

// Status scopes
const (
	StatusScopeGeneral = "GENERAL"
	StatusScopeOrder   = "ORDER"
)

// Status is a row of the statuses lookup table
type Status struct {
	Code  StatusCode `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Name  string     `gorm:"type:varchar(50);not null" json:"name"`
	Scope string     `gorm:"type:varchar(20);not null" json:"scope"`
}

// TableName returns the table name for GORM
func (Status) TableName() string {
	return "statuses"
}

var statusNames = map[StatusCode]string{
	StatusActive:          "Active",
	StatusInactive:        "Inactive",
	StatusOrderNew:        "New",
	StatusOrderProcessing: "Processing",
	StatusOrderShipped:    "Shipped",
	StatusOrderDelivered:  "Delivered",
	StatusOrderCancelled:  "Cancelled",
}

// String returns the display name of the status
func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsValid reports whether s is a known status code
func (s StatusCode) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsOrderStatus reports whether s belongs to the order lifecycle range
func (s StatusCode) IsOrderStatus() bool {
	return s >= StatusOrderNew && s <= StatusOrderCancelled
}

// IsRecordStatus reports whether s is Active or Inactive
func (s StatusCode) IsRecordStatus() bool {
	return s == StatusActive || s == StatusInactive
}

// AllStatuses returns the seed rows of the statuses table in code order
func AllStatuses() []Status {
	codes := []StatusCode{
		StatusActive, StatusInactive,
		StatusOrderNew, StatusOrderProcessing, StatusOrderShipped, StatusOrderDelivered, StatusOrderCancelled,
	}
	out := make([]Status, 0, len(codes))
	for _, c := range codes {
		scope := StatusScopeGeneral
		if c.IsOrderStatus() {
			scope = StatusScopeOrder
		}
		out = append(out, Status{Code: c, Name: c.String(), Scope: scope})
	}
	return out
}

// StatusRepository reads and seeds the statuses lookup table
type StatusRepository interface {
	List(ctx context.Context) ([]Status, error)
	// EnsureSeeded inserts missing rows of AllStatuses and leaves existing ones alone
	EnsureSeeded(ctx context.Context) error
}
