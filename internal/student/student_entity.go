package student

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_student_user"`

	StudentNumber string `gorm:"type:varchar(30);not null"`
	Major         string `gorm:"type:varchar(100)"`

	// Status asisten diturunkan dari himpunan aplikasi yang accepted,
	// bukan diedit langsung.
	IsTA    bool       `gorm:"not null;default:false;index:idx_students_is_ta"`
	TASince *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
