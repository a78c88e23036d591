package application

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PositionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_application_position_applicant;index:idx_applications_position"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_application_position_applicant;index:idx_applications_applicant"`

	Status     string `gorm:"type:varchar(20);not null;default:'SUBMITTED';index:idx_applications_status"`
	ResumeText string `gorm:"type:text"`

	AppliedAt   time.Time  `gorm:"not null"`
	ReviewedAt  *time.Time ``
	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	ReviewNotes *string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Application) IsFinal() bool {
	return a.Status == StatusAccepted || a.Status == StatusRejected
}
