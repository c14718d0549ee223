package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SmsVerification is a short-lived numeric code issued for a phone number.
// At most one valid (unused, unexpired) code exists per phone at any time.
type SmsVerification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PhoneNumber string    `gorm:"not null;index"`
	Code        string    `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	IsUsed      bool      `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *SmsVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the code is past its expiry.
func (v *SmsVerification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// IsValid reports whether the code can still be redeemed.
func (v *SmsVerification) IsValid() bool {
	return !v.IsUsed && !v.IsExpired()
}
