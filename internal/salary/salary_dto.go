package salary

import "encoding/json"

type GenerateSalaryRequest struct {
	TimesheetID string `json:"timesheet_id" binding:"required,uuid"`
}

type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=bank_transfer check direct_deposit"`
	TransactionID string `json:"transaction_id" binding:"omitempty,max=100"`
}

type SalaryResponse struct {
	ID                 string          `json:"id"`
	TimesheetID        string          `json:"timesheet_id"`
	AssistantID        string          `json:"assistant_id"`
	PositionID         string          `json:"position_id"`
	AmountCents        int64           `json:"amount_cents"`
	CalculationDetails json.RawMessage `json:"calculation_details"`
	PaymentStatus      string          `json:"payment_status"`
	GeneratedBy        string          `json:"generated_by"`
	GeneratedAt        string          `json:"generated_at"`
	PaidAt             *string         `json:"paid_at,omitempty"`
	PaymentMethod      *string         `json:"payment_method,omitempty"`
	TransactionID      *string         `json:"transaction_id,omitempty"`
}
