// internal/models/notification.go
package models

// Alert is a templated notification raised by the application workflow.
type Alert struct {
	Template      string            `json:"template"`
	ApplicationID string            `json:"application_id"`
	Details       map[string]string `json:"details,omitempty"`
}

const (
	TemplateApplicantApproved   = "applicant_approved"
	TemplateManualReviewPending = "manual_review_pending"
)

// Notification records one delivered alert.
type Notification struct {
	ID            string `json:"id"`
	Template      string `json:"template"`
	ApplicationID string `json:"applicationId"`
	Channel       string `json:"channel"` // "sns", "email,log"
	Status        string `json:"status"`  // "sent"
	SentAt        string `json:"sentAt"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var DefaultTemplates = map[string]NotificationTemplate{
	TemplateApplicantApproved: {
		Type:    TemplateApplicantApproved,
		Subject: "Rental application {{applicationId}} approved",
		Body:    "Application {{applicationId}} was approved ({{decision}}). Send lease packet and move-in instructions.",
	},
	TemplateManualReviewPending: {
		Type:    TemplateManualReviewPending,
		Subject: "Rental application {{applicationId}} awaiting review",
		Body:    "Application {{applicationId}} is waiting on manual review. Status: {{status}}. {{rationale}}",
	},
}
