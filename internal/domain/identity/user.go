package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role distinguishes back-office administrators from customer users
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleClient
}

const bcryptCost = bcrypt.DefaultCost

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.@]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User is a login identity. CLIENT users belong to exactly one customer.
type User struct {
	shared.BaseAggregateRoot
	CustomerID   *uuid.UUID        `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Username     string            `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Email        string            `gorm:"type:varchar(200)" json:"email"`
	FirstName    string            `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string            `gorm:"type:varchar(100)" json:"last_name"`
	PasswordHash string            `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role              `gorm:"type:varchar(20);not null" json:"role"`
	StatusCode   shared.StatusCode `gorm:"not null;default:1" json:"status_code"`
	LastLoginAt  *time.Time        `json:"last_login_at,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(username, password string, role Role, customerID *uuid.UUID) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validateRoleScope(role, customerID); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Username:          normalizeUsername(username),
		PasswordHash:      hash,
		Role:              role,
		StatusCode:        shared.StatusActive,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// UpdateProfile sets the descriptive fields of the user
func (u *User) UpdateProfile(email, firstName, lastName string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	u.Email = email
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.ModifiedAt = time.Now()
	return nil
}

// Rename changes the login name
func (u *User) Rename(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = normalizeUsername(username)
	u.ModifiedAt = time.Now()
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.ModifiedAt = time.Now()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// ChangePassword verifies the current password before replacing it
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if oldPassword == newPassword {
		return shared.NewDomainError("INVALID_PASSWORD", "New password must differ from the current password")
	}
	return u.SetPassword(newPassword)
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the user may authenticate
func (u *User) CanLogin() bool {
	return u.StatusCode == shared.StatusActive
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// Activate sets the user active
func (u *User) Activate() {
	u.setStatus(shared.StatusActive)
}

// Deactivate sets the user inactive; inactive users cannot log in
func (u *User) Deactivate() {
	u.setStatus(shared.StatusInactive)
}

func (u *User) setStatus(code shared.StatusCode) {
	if u.StatusCode == code {
		return
	}
	u.StatusCode = code
	u.ModifiedAt = time.Now()
}

// IsAdmin reports whether the user has the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName returns first and last name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, dots and @")
	}
	return nil
}

// ValidatePassword checks the password policy
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateRoleScope(role Role, customerID *uuid.UUID) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN or CLIENT")
	}
	if role == RoleClient && (customerID == nil || *customerID == uuid.Nil) {
		return shared.NewDomainError("INVALID_ROLE", "Client users must belong to a customer")
	}
	if role == RoleAdmin && customerID != nil {
		return shared.NewDomainError("INVALID_ROLE", "Admin users cannot belong to a customer")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
