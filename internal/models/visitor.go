package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Visitor struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName        string     `gorm:"not null" json:"full_name"`
	ApartmentNumber string     `gorm:"not null;index" json:"apartment_number"`
	LicensePlate    string     `json:"license_plate,omitempty"`
	IDNumber        string     `json:"id_number,omitempty"`
	PhotoPath       string     `json:"photo_path,omitempty"`
	CheckInTime     time.Time  `gorm:"not null;index" json:"check_in_time"`
	CheckOutTime    *time.Time `gorm:"index" json:"check_out_time,omitempty"`
	ResidentName    string     `json:"resident_name,omitempty"`
	ResidentPhone   string     `json:"resident_phone,omitempty"`
	VisitorPhone    string     `json:"visitor_phone,omitempty"`
	IsActive        bool       `gorm:"default:true;index" json:"is_active"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy       string     `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (v *Visitor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// IsCheckedOut reports whether the visit has been closed.
func (v *Visitor) IsCheckedOut() bool {
	return v.CheckOutTime != nil
}
