package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// TrackingPlaceholder is replaced by the tracking number in Carrier.TrackingURL
const TrackingPlaceholder = "{tracking}"

// Carrier is a shipping company orders are handed to
type Carrier struct {
	shared.BaseAggregateRoot
	Code        string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name        string            `gorm:"type:varchar(200);not null" json:"name"`
	TrackingURL string            `gorm:"type:varchar(500)" json:"tracking_url"`
	StatusCode  shared.StatusCode `gorm:"not null;default:1;index" json:"status_code"`
	Services    []CarrierService  `gorm:"foreignKey:CarrierID" json:"services,omitempty"`
}

// TableName returns the table name for GORM
func (Carrier) TableName() string {
	return "carriers"
}

// NewCarrier creates an active carrier
func NewCarrier(code, name string) (*Carrier, error) {
	if err := validateCode("Carrier", code); err != nil {
		return nil, err
	}
	if err := validateName("Carrier", name); err != nil {
		return nil, err
	}
	return &Carrier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalizeCode(code),
		Name:              strings.TrimSpace(name),
		StatusCode:        shared.StatusActive,
	}, nil
}

// Update replaces the carrier's name and tracking URL template
func (c *Carrier) Update(name, trackingURL string) error {
	if err := validateName("Carrier", name); err != nil {
		return err
	}
	trackingURL = strings.TrimSpace(trackingURL)
	if len(trackingURL) > 500 {
		return shared.NewDomainError("INVALID_TRACKING_URL", "Tracking URL cannot exceed 500 characters")
	}
	c.Name = strings.TrimSpace(name)
	c.TrackingURL = trackingURL
	c.ModifiedAt = time.Now()
	return nil
}

// UpdateCode changes the carrier code
func (c *Carrier) UpdateCode(code string) error {
	if err := validateCode("Carrier", code); err != nil {
		return err
	}
	c.Code = normalizeCode(code)
	c.ModifiedAt = time.Now()
	return nil
}

// Activate re-enables the carrier
func (c *Carrier) Activate() {
	c.StatusCode = shared.StatusActive
	c.ModifiedAt = time.Now()
}

// Deactivate hides the carrier from listings and new orders
func (c *Carrier) Deactivate() {
	c.StatusCode = shared.StatusInactive
	c.ModifiedAt = time.Now()
}

// IsActive reports whether the carrier is active
func (c *Carrier) IsActive() bool {
	return c.StatusCode == shared.StatusActive
}

// TrackingLink renders the tracking URL for a tracking number
func (c *Carrier) TrackingLink(trackingNumber string) string {
	if c.TrackingURL == "" || trackingNumber == "" {
		return ""
	}
	if !strings.Contains(c.TrackingURL, TrackingPlaceholder) {
		return c.TrackingURL + trackingNumber
	}
	return strings.ReplaceAll(c.TrackingURL, TrackingPlaceholder, trackingNumber)
}

// FindService returns the loaded service with the given ID
func (c *Carrier) FindService(id uuid.UUID) *CarrierService {
	for i := range c.Services {
		if c.Services[i].ID == id {
			return &c.Services[i]
		}
	}
	return nil
}

// HasServiceCode reports whether a loaded service uses code, ignoring excludeID
func (c *Carrier) HasServiceCode(code string, excludeID uuid.UUID) bool {
	code = normalizeCode(code)
	for _, s := range c.Services {
		if s.Code == code && s.ID != excludeID {
			return true
		}
	}
	return false
}

// CarrierService is a service level offered by a carrier (ground, overnight, ...)
type CarrierService struct {
	shared.BaseEntity
	CarrierID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"carrier_id"`
	Code       string            `gorm:"type:varchar(50);not null" json:"code"`
	Name       string            `gorm:"type:varchar(200);not null" json:"name"`
	StatusCode shared.StatusCode `gorm:"not null;default:1" json:"status_code"`
}

// TableName returns the table name for GORM
func (CarrierService) TableName() string {
	return "carrier_services"
}

// NewCarrierService creates an active service under a carrier
func NewCarrierService(carrierID uuid.UUID, code, name string) (*CarrierService, error) {
	if carrierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Service must belong to a carrier")
	}
	if err := validateCode("Service", code); err != nil {
		return nil, err
	}
	if err := validateName("Service", name); err != nil {
		return nil, err
	}
	return &CarrierService{
		BaseEntity: shared.NewBaseEntity(),
		CarrierID:  carrierID,
		Code:       normalizeCode(code),
		Name:       strings.TrimSpace(name),
		StatusCode: shared.StatusActive,
	}, nil
}

// Update replaces the service's code and name
func (s *CarrierService) Update(code, name string) error {
	if err := validateCode("Service", code); err != nil {
		return err
	}
	if err := validateName("Service", name); err != nil {
		return err
	}
	s.Code = normalizeCode(code)
	s.Name = strings.TrimSpace(name)
	s.ModifiedAt = time.Now()
	return nil
}

// Deactivate hides the service
func (s *CarrierService) Deactivate() {
	s.StatusCode = shared.StatusInactive
	s.ModifiedAt = time.Now()
}

// IsActive reports whether the service is active
func (s *CarrierService) IsActive() bool {
	return s.StatusCode == shared.StatusActive
}
