// internal/alerts/template.go
package alerts

import (
	"fmt"
	"regexp"
	"strings"

	"vacancy-workers/internal/models"
)

// Message is a rendered alert ready for a transport.
type Message struct {
	Template string
	Subject  string
	Body     string
}

// Render fills the alert's template with applicationId plus every detail
// key. Placeholders with no value are removed.
func Render(templates map[string]models.NotificationTemplate, alert models.Alert) (Message, error) {
	tmpl, ok := templates[alert.Template]
	if !ok {
		return Message{}, fmt.Errorf("template not found for type: %s", alert.Template)
	}

	data := map[string]string{"applicationId": alert.ApplicationID}
	for k, v := range alert.Details {
		data[k] = v
	}

	return Message{
		Template: alert.Template,
		Subject:  renderTemplate(tmpl.Subject, data),
		Body:     strings.TrimSpace(renderTemplate(tmpl.Body, data)),
	}, nil
}

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// renderTemplate expands placeholders of tmpl in one pass. Values are
// inserted as-is, so braces inside a value are never expanded or removed.
func renderTemplate(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		return data[match[2:len(match)-2]]
	})
}
