package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// AccountType tells ship-to from bill-to addresses
type AccountType string

const (
	AccountTypeShipTo AccountType = "SHIP_TO"
	AccountTypeBillTo AccountType = "BILL_TO"
)

// IsValid reports whether t is a known account type
func (t AccountType) IsValid() bool {
	return t == AccountTypeShipTo || t == AccountTypeBillTo
}

// Account is a named ship-to or bill-to address of a customer
type Account struct {
	shared.BaseEntity
	CustomerID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name        string            `gorm:"type:varchar(200);not null" json:"name"`
	Type        AccountType       `gorm:"type:varchar(20);not null" json:"type"`
	ContactName string            `gorm:"type:varchar(100)" json:"contact_name"`
	Phone       string            `gorm:"type:varchar(50)" json:"phone"`
	Email       string            `gorm:"type:varchar(200)" json:"email"`
	Address     Address           `gorm:"embedded" json:"address"`
	StatusCode  shared.StatusCode `gorm:"not null;default:1" json:"status_code"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates an active account for a customer
func NewAccount(customerID uuid.UUID, name string, accountType AccountType) (*Account, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Account must belong to a customer")
	}
	if err := validateName("Account", name); err != nil {
		return nil, err
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type must be SHIP_TO or BILL_TO")
	}
	return &Account{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Name:       strings.TrimSpace(name),
		Type:       accountType,
		StatusCode: shared.StatusActive,
	}, nil
}

// Update replaces the mutable fields of the account
func (a *Account) Update(name string, accountType AccountType, contactName, phone, email string, address Address) error {
	if err := validateName("Account", name); err != nil {
		return err
	}
	if !accountType.IsValid() {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type must be SHIP_TO or BILL_TO")
	}
	if err := validatePhone(strings.TrimSpace(phone)); err != nil {
		return err
	}
	if err := validateEmail(strings.TrimSpace(email)); err != nil {
		return err
	}
	address = address.Trimmed()
	if err := address.Validate(); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(name)
	a.Type = accountType
	a.ContactName = strings.TrimSpace(contactName)
	a.Phone = strings.TrimSpace(phone)
	a.Email = strings.TrimSpace(email)
	a.Address = address
	a.ModifiedAt = time.Now()
	return nil
}

// Deactivate soft-deletes the account
func (a *Account) Deactivate() {
	a.StatusCode = shared.StatusInactive
	a.ModifiedAt = time.Now()
}

// IsActive reports whether the account is active
func (a *Account) IsActive() bool {
	return a.StatusCode == shared.StatusActive
}
