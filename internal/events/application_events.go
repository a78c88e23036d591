package events

import "time"

const ApplicationLifecycleTopic = "tams.application.lifecycle.v1"

const (
	ApplicationSubmitted = "application_submitted"
	ApplicationAccepted  = "application_accepted"
	ApplicationRejected  = "application_rejected"
	ApplicationRevoked   = "application_revoked"
)

type ApplicationEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	ApplicationID string    `json:"application_id"`
	PositionID    string    `json:"position_id"`
	PositionTitle string    `json:"position_title"`
	ApplicantID   string    `json:"applicant_id"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
