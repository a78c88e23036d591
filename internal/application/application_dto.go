package application

type SubmitApplicationRequest struct {
	PositionID string `json:"position_id" binding:"required,uuid"`
	ResumeText string `json:"resume_text" binding:"required,min=20,max=10000"`
}

type ReviewApplicationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
	Notes  string `json:"notes" binding:"omitempty,max=2000"`
}

type ApplicationResponse struct {
	ID          string  `json:"id"`
	PositionID  string  `json:"position_id"`
	ApplicantID string  `json:"applicant_id"`
	Status      string  `json:"status"`
	ResumeText  string  `json:"resume_text,omitempty"`
	AppliedAt   string  `json:"applied_at"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ReviewNotes *string `json:"review_notes,omitempty"`
}
