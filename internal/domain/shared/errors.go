package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on the error code so sentinel comparisons survive re-wrapping
// with a more specific message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewCatalogError creates a domain error using the default catalog message for code
func NewCatalogError(code string) *DomainError {
	return NewDomainError(code, MessageFor(code))
}

// Common domain errors
var (
	ErrNotFound            = NewCatalogError("NOT_FOUND")
	ErrAlreadyExists       = NewCatalogError("ALREADY_EXISTS")
	ErrInvalidInput        = NewCatalogError("INVALID_INPUT")
	ErrConcurrencyConflict = NewCatalogError("CONCURRENCY_CONFLICT")
	ErrUnauthorized        = NewCatalogError("UNAUTHORIZED")
	ErrForbidden           = NewCatalogError("FORBIDDEN")
	ErrInvalidState        = NewCatalogError("INVALID_STATE")
	ErrInvalidCredentials  = NewCatalogError("INVALID_CREDENTIALS")
	ErrInvalidReference    = NewCatalogError("INVALID_REFERENCE")
)

// messageCatalog holds the static user-facing message for each error code.
var messageCatalog = map[string]string{
	"NOT_FOUND":              "Resource not found",
	"ALREADY_EXISTS":         "Resource already exists",
	"INVALID_INPUT":          "Invalid input provided",
	"CONCURRENCY_CONFLICT":   "Resource was modified by another process",
	"UNAUTHORIZED":           "Authentication required",
	"FORBIDDEN":              "Access to this resource is forbidden",
	"INVALID_STATE":          "Operation not allowed in current state",
	"INVALID_CREDENTIALS":    "Invalid username or password",
	"ACCOUNT_INACTIVE":       "User account is not active",
	"INVALID_PASSWORD":       "Password does not meet requirements",
	"INVALID_CODE":           "Code is invalid",
	"INVALID_NAME":           "Name is invalid",
	"INVALID_EMAIL":          "Email is invalid",
	"INVALID_QUANTITY":       "Quantity must be greater than zero",
	"INVALID_MATERIAL":       "Material is invalid for this order",
	"INVALID_TRANSITION":     "Status transition is not allowed",
	"DEFAULT_PROJECT":        "A customer must have exactly one default project",
	"ORDER_NUMBER_EXHAUSTED": "Could not allocate a unique order number",
	"INVALID_REFERENCE":      "Referenced record does not exist or is still in use",
	"INTERNAL_ERROR":         "An internal error occurred",
}

// MessageFor returns the catalog message for code, or a generic message when unknown
func MessageFor(code string) string {
	if msg, ok := messageCatalog[code]; ok {
		return msg
	}
	return "An unexpected error occurred"
}
