package timesheet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timesheet mencatat jam kerja asisten per posisi per bulan. Month
// selalu disimpan sebagai tanggal 1 bulan tersebut; unique constraint
// (assistant_id, position_id, month) menolak laporan ganda.
type Timesheet struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AssistantID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_timesheet_assistant_position_month" json:"assistant_id"`
	PositionID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_timesheet_assistant_position_month" json:"position_id"`
	Month       time.Time      `gorm:"type:date;not null;uniqueIndex:uq_timesheet_assistant_position_month" json:"month"`
	HoursWorked int            `gorm:"not null" json:"hours_worked"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_timesheets_status" json:"status"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy  *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewNotes *string        `gorm:"type:text" json:"review_notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

func (t *Timesheet) IsPending() bool {
	return t.Status == StatusPending
}
