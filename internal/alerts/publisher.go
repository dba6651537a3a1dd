// internal/alerts/publisher.go
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
)

const (
	ChannelSNS   = "sns"
	ChannelEmail = "email"
	ChannelLog   = "log"
)

// Channel is a single alert transport.
type Channel interface {
	applications.AlertPublisher
	Name() string
}

// SNSAPI is satisfied by common/aws.SNSClient.
type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// SESAPI is satisfied by common/aws.SESClient.
type SESAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SNSPublisher posts rendered alerts to a topic. The template name travels
// as a message attribute so subscribers can filter on it.
type SNSPublisher struct {
	client    SNSAPI
	topicARN  string
	templates map[string]models.NotificationTemplate
}

func NewSNSPublisher(client SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, templates: models.DefaultTemplates}
}

func (p *SNSPublisher) Name() string { return ChannelSNS }

func (p *SNSPublisher) Publish(ctx context.Context, alert models.Alert) error {
	msg, err := Render(p.templates, alert)
	if err != nil {
		return applications.Transport(err.Error(), err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(msg.Subject),
		Message:  aws.String(msg.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"template": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.Template),
			},
		},
	})
	if err != nil {
		return applications.Transport("sns publish failed", err)
	}
	return nil
}

// SESPublisher emails rendered alerts to a fixed recipient list.
type SESPublisher struct {
	client     SESAPI
	from       string
	recipients []string
	templates  map[string]models.NotificationTemplate
}

func NewSESPublisher(client SESAPI, from string, recipients []string) *SESPublisher {
	return &SESPublisher{
		client:     client,
		from:       from,
		recipients: append([]string(nil), recipients...),
		templates:  models.DefaultTemplates,
	}
}

func (p *SESPublisher) Name() string { return ChannelEmail }

func (p *SESPublisher) Publish(ctx context.Context, alert models.Alert) error {
	msg, err := Render(p.templates, alert)
	if err != nil {
		return applications.Transport(err.Error(), err)
	}

	_, err = p.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: p.recipients,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(msg.Body)},
			},
		},
		Source: aws.String(p.from),
	})
	if err != nil {
		return applications.Transport("ses send failed", err)
	}
	return nil
}

// LogPublisher writes alerts to the log. Used when no AWS transport is
// enabled.
type LogPublisher struct {
	log       logger.Logger
	templates map[string]models.NotificationTemplate
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: logger.Component(log, "alerts"), templates: models.DefaultTemplates}
}

func (p *LogPublisher) Name() string { return ChannelLog }

func (p *LogPublisher) Publish(_ context.Context, alert models.Alert) error {
	msg, err := Render(p.templates, alert)
	if err != nil {
		return applications.Transport(err.Error(), err)
	}
	p.log.Info("alert", map[string]interface{}{
		"template":      alert.Template,
		"applicationId": alert.ApplicationID,
		"subject":       msg.Subject,
		"body":          msg.Body,
	})
	return nil
}

// Fanout delivers each alert to every channel. All channels are attempted;
// any failure makes Publish return a TransportError naming the failed
// channels.
type Fanout struct {
	channels []Channel
	log      logger.Logger
}

func NewFanout(log logger.Logger, channels ...Channel) *Fanout {
	return &Fanout{channels: channels, log: logger.Component(log, "alerts")}
}

func (f *Fanout) Channels() []string {
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (f *Fanout) Publish(ctx context.Context, alert models.Alert) error {
	var (
		failed []string
		errs   []error
	)

	for _, ch := range f.channels {
		if err := ch.Publish(ctx, alert); err != nil {
			metrics.AlertsPublished.WithLabelValues(alert.Template, ch.Name(), metrics.ResultFailure).Inc()
			f.log.Error("alert delivery failed", map[string]interface{}{
				"channel":       ch.Name(),
				"template":      alert.Template,
				"applicationId": alert.ApplicationID,
				"error":         err.Error(),
			})
			failed = append(failed, ch.Name())
			errs = append(errs, err)
			continue
		}
		metrics.AlertsPublished.WithLabelValues(alert.Template, ch.Name(), metrics.ResultSuccess).Inc()
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		var transportErr *applications.TransportError
		if errors.As(errs[0], &transportErr) {
			return transportErr
		}
	}
	return applications.Transport(
		fmt.Sprintf("%s delivery failed", strings.Join(failed, ", ")),
		errors.Join(errs...),
	)
}
