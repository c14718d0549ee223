package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VisitorActionCheckIn  = "CheckIn"
	VisitorActionCheckOut = "CheckOut"
	VisitorActionUpdate   = "Update"
)

// VisitorLog is the audit trail for visitor lifecycle transitions
type VisitorLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VisitorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"visitor_id"`
	Action      string    `gorm:"type:varchar(50);not null;index" json:"action"`
	PerformedBy string    `gorm:"not null" json:"performed_by"`
	Details     string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Visitor *Visitor `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
}

func (VisitorLog) TableName() string {
	return "visitor_logs"
}

func (l *VisitorLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
