package position

type CreatePositionRequest struct {
	Title               string `json:"title" binding:"required,max=200"`
	CourseName          string `json:"course_name" binding:"required,max=100"`
	CourseCode          string `json:"course_code" binding:"required,max=20"`
	Description         string `json:"description"`
	Requirements        string `json:"requirements"`
	CapacityTotal       int    `json:"capacity_total" binding:"required,min=1"`
	WorkHoursPerWeek    int    `json:"work_hours_per_week" binding:"required,min=1"`
	HourlyRateCents     int64  `json:"hourly_rate_cents" binding:"required,min=1"`
	StartDate           string `json:"start_date" binding:"required"`
	EndDate             string `json:"end_date" binding:"required"`
	ApplicationDeadline string `json:"application_deadline" binding:"required"`
}

type PositionResponse struct {
	ID                  string `json:"id"`
	PostedBy            string `json:"posted_by"`
	Title               string `json:"title"`
	CourseName          string `json:"course_name"`
	CourseCode          string `json:"course_code"`
	Description         string `json:"description"`
	Requirements        string `json:"requirements"`
	CapacityTotal       int    `json:"capacity_total"`
	CapacityFilled      int    `json:"capacity_filled"`
	WorkHoursPerWeek    int    `json:"work_hours_per_week"`
	HourlyRateCents     int64  `json:"hourly_rate_cents"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	ApplicationDeadline string `json:"application_deadline"`
	Status              string `json:"status"`
}
