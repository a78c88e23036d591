package salary

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Salary adalah catatan gaji yang diturunkan dari satu timesheet yang
// sudah di-approve. Satu timesheet maksimal satu salary (unique
// constraint uq_salary_timesheet). Nominal dan detail perhitungan
// dibekukan saat generate; perubahan rate posisi sesudahnya tidak
// mengubah record ini.
type Salary struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TimesheetID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_salary_timesheet" json:"timesheet_id"`
	AssistantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_salaries_assistant" json:"assistant_id"`
	PositionID         uuid.UUID       `gorm:"type:uuid;not null" json:"position_id"`
	AmountCents        int64           `gorm:"not null" json:"amount_cents"`
	CalculationDetails json.RawMessage `gorm:"type:jsonb" json:"calculation_details"`
	PaymentStatus      string          `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_salaries_payment_status" json:"payment_status"`
	GeneratedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"generated_by"`
	GeneratedAt        time.Time       `gorm:"not null" json:"generated_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod      *string         `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	TransactionID      *string         `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Salary) TableName() string {
	return "salaries"
}

// CalculationDetail adalah snapshot perhitungan yang disimpan sebagai
// jsonb di kolom calculation_details.
type CalculationDetail struct {
	Hours     int    `json:"hours"`
	RateCents int64  `json:"rate_cents"`
	Formula   string `json:"formula"`
}
