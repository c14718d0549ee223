package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContactTypePhone = "Phone"
	ContactTypeEmail = "Email"
)

type Resident struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName        string    `gorm:"not null" json:"full_name"`
	ApartmentNumber string    `gorm:"uniqueIndex;not null" json:"apartment_number"`
	Block           string    `json:"block,omitempty"`
	SubBlock        string    `json:"sub_block,omitempty"`
	DoorNumber      string    `json:"door_number,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Contacts []ResidentContact `gorm:"foreignKey:ResidentID" json:"contacts,omitempty"`
	Vehicles []ResidentVehicle `gorm:"foreignKey:ResidentID" json:"vehicles,omitempty"`
}

func (r *Resident) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResidentContact is a phone or email entry for a resident. Priority 1 is the
// preferred contact, 3 the last resort.
type ResidentContact struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResidentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"resident_id"`
	ContactType  string    `gorm:"type:varchar(10);not null" json:"contact_type"`
	ContactValue string    `gorm:"not null" json:"contact_value"`
	Label        string    `json:"label,omitempty"`
	Priority     int       `gorm:"not null;default:1" json:"priority"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *ResidentContact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ResidentVehicle struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResidentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"resident_id"`
	LicensePlate string    `gorm:"not null;index" json:"license_plate"`
	Brand        string    `json:"brand,omitempty"`
	Model        string    `json:"model,omitempty"`
	Color        string    `json:"color,omitempty"`
	Year         int       `json:"year,omitempty"`
	VehicleType  string    `json:"vehicle_type,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (v *ResidentVehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
