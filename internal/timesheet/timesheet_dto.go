package timesheet

type SubmitTimesheetRequest struct {
	PositionID  string `json:"position_id" binding:"required,uuid"`
	Month       string `json:"month" binding:"required"`
	HoursWorked int    `json:"hours_worked" binding:"min=0,max=744"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

type EditTimesheetRequest struct {
	Month       string `json:"month" binding:"required"`
	HoursWorked int    `json:"hours_worked" binding:"min=0,max=744"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

type ReviewTimesheetRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Notes  string `json:"notes" binding:"omitempty,max=2000"`
}

type TimesheetResponse struct {
	ID          string  `json:"id"`
	AssistantID string  `json:"assistant_id"`
	PositionID  string  `json:"position_id"`
	Month       string  `json:"month"`
	HoursWorked int     `json:"hours_worked"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submitted_at"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ReviewNotes *string `json:"review_notes,omitempty"`
}
