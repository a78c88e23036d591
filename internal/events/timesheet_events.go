package events

import "time"

const TimesheetLifecycleTopic = "tams.timesheet.lifecycle.v1"

const (
	TimesheetSubmitted = "timesheet_submitted"
	TimesheetApproved  = "timesheet_approved"
	TimesheetRejected  = "timesheet_rejected"
)

type TimesheetEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	TimesheetID   string    `json:"timesheet_id"`
	PositionID    string    `json:"position_id"`
	PositionTitle string    `json:"position_title"`
	AssistantID   string    `json:"assistant_id"`
	ActorID       string    `json:"actor_id"`
	Month         string    `json:"month"`
	OccurredAt    time.Time `json:"occurred_at"`
}
