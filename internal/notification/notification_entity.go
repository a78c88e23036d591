package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryApplication = "application"
	CategoryTimesheet   = "timesheet"
)

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type Notification struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID     uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient" json:"recipient_id"`
	SenderID        *uuid.UUID `gorm:"type:uuid" json:"sender_id,omitempty"`
	Category        string    `gorm:"type:varchar(50);not null" json:"category"`
	EventType       string    `gorm:"type:varchar(50);not null" json:"event_type"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Message         string    `gorm:"type:text;not null" json:"message"`
	RelatedModel    string    `gorm:"type:varchar(50)" json:"related_model,omitempty"`
	RelatedObjectID *uuid.UUID `gorm:"type:uuid" json:"related_object_id,omitempty"`
	Priority        string    `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	IsRead          bool      `gorm:"not null;default:false;index:idx_notifications_is_read" json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
