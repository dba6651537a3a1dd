// internal/workers/applications/send-application-alert/models.go
package sendapplicationalert

import "vacancy-workers/internal/models"

type Input struct {
	Template      string            `json:"template"`
	ApplicationID string            `json:"applicationId"`
	Details       map[string]string `json:"details,omitempty"`
}

type Output struct {
	NotificationID string              `json:"notificationId"`
	Status         string              `json:"status"`
	Subject        string              `json:"subject"`
	SentAt         string              `json:"sentAt"` // ISO 8601
	Notification   models.Notification `json:"notification"`
}

const (
	StatusSent = "sent"
	// ChannelDirect names a publisher that does not report its channels.
	ChannelDirect = "direct"
)
