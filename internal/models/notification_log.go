package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationChannelSMS  = "sms"
	NotificationChannelMail = "mail"
)

// NotificationLog records every outbound notification attempt, successful or not.
type NotificationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Channel   string    `gorm:"type:varchar(10);not null;index" json:"channel"`
	Recipient string    `gorm:"not null" json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `gorm:"type:text" json:"body"`
	Success   bool      `gorm:"index" json:"success"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
