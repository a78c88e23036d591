package position

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Position struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PostedBy uuid.UUID `gorm:"type:uuid;not null;index:idx_positions_posted_by"`

	Title        string `gorm:"type:varchar(200);not null"`
	CourseName   string `gorm:"type:varchar(100);not null"`
	CourseCode   string `gorm:"type:varchar(20);not null;index:idx_positions_course_code"`
	Description  string `gorm:"type:text"`
	Requirements string `gorm:"type:text"`

	// Kapasitas: capacity_filled hanya dimutasi lewat Ledger.Reserve/Release
	CapacityTotal  int `gorm:"type:int;not null"`
	CapacityFilled int `gorm:"type:int;not null;default:0"`

	WorkHoursPerWeek int `gorm:"type:int;not null"`
	// Tarif disimpan dalam satuan terkecil (sen) untuk hindari floating error.
	HourlyRateCents int64 `gorm:"type:bigint;not null"`

	StartDate           time.Time `gorm:"type:date;not null"`
	EndDate             time.Time `gorm:"type:date;not null"`
	ApplicationDeadline time.Time `gorm:"not null;index:idx_positions_deadline"`

	Status string `gorm:"type:varchar(20);not null;default:'OPEN';index:idx_positions_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (p *Position) IsFull() bool {
	return p.CapacityFilled >= p.CapacityTotal
}

func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}
