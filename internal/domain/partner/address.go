package partner

import (
	"strings"

	"github.com/wms/backend/internal/domain/shared"
)

// Address is a postal address embedded into customer, account and warehouse rows
type Address struct {
	AddressLine1 string `gorm:"type:varchar(200)" json:"address_line1"`
	AddressLine2 string `gorm:"type:varchar(200)" json:"address_line2"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(100)" json:"state"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postal_code"`
	Country      string `gorm:"type:varchar(100)" json:"country"`
}

// Validate checks the field lengths
func (a Address) Validate() error {
	checks := []struct {
		value string
		max   int
		field string
	}{
		{a.AddressLine1, 200, "Address line 1"},
		{a.AddressLine2, 200, "Address line 2"},
		{a.City, 100, "City"},
		{a.State, 100, "State"},
		{a.PostalCode, 20, "Postal code"},
		{a.Country, 100, "Country"},
	}
	for _, c := range checks {
		if len(c.value) > c.max {
			return shared.NewDomainError("INVALID_ADDRESS", c.field+" is too long")
		}
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed
func (a Address) Trimmed() Address {
	return Address{
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		AddressLine2: strings.TrimSpace(a.AddressLine2),
		City:         strings.TrimSpace(a.City),
		State:        strings.TrimSpace(a.State),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Country:      strings.TrimSpace(a.Country),
	}
}

// Lines returns the non-empty printable lines of the address
func (a Address) Lines() []string {
	lines := make([]string, 0, 4)
	for _, l := range []string{a.AddressLine1, a.AddressLine2} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(a.City, a.State, a.PostalCode), " "))
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	if a.Country != "" {
		lines = append(lines, a.Country)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
