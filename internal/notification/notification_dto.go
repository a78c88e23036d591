package notification

import "time"

type NotificationResponse struct {
	ID              string  `json:"id"`
	Category        string  `json:"category"`
	EventType       string  `json:"event_type"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	RelatedModel    string  `json:"related_model,omitempty"`
	RelatedObjectID *string `json:"related_object_id,omitempty"`
	Priority        string  `json:"priority"`
	IsRead          bool    `json:"is_read"`
	CreatedAt       string  `json:"created_at"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:           n.ID.String(),
		Category:     n.Category,
		EventType:    n.EventType,
		Title:        n.Title,
		Message:      n.Message,
		RelatedModel: n.RelatedModel,
		Priority:     n.Priority,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt.Format(time.RFC3339),
	}
	if n.RelatedObjectID != nil {
		v := n.RelatedObjectID.String()
		resp.RelatedObjectID = &v
	}
	return resp
}
