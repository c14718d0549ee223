package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MailSecurityNone = "None"
	MailSecuritySSL  = "SSL"
	MailSecurityTLS  = "TLS"
)

// SmsSettings holds the credentials for the SMS provider. Exactly one row is
// allowed; the password is encrypted at rest.
type SmsSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Sender    string    `gorm:"not null" json:"sender"`
	APIUrl    string    `gorm:"not null" json:"api_url"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *SmsSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// MailSettings holds the SMTP submission settings. Exactly one row is allowed;
// the password is encrypted at rest.
type MailSettings struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Host         string    `gorm:"not null" json:"host"`
	Port         int       `gorm:"not null" json:"port"`
	Username     string    `gorm:"not null" json:"username"`
	Password     string    `gorm:"not null" json:"-"`
	FromAddress  string    `gorm:"not null" json:"from_address"`
	FromName     string    `json:"from_name"`
	SecurityType string    `gorm:"type:varchar(10);not null;default:'TLS'" json:"security_type"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m *MailSettings) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
