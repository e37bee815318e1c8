// Package mailer delivers transactional e-mail.  Production uses AWS SES;
// development writes messages to the process log.
package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"

	"github.com/iliyamo/blog-api/internal/config"
)

// Message is a single e-mail with HTML and plain-text bodies.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// New picks a sender for cfg.Driver ("ses" or "log").
func New(cfg config.MailConfig) (Sender, error) {
	switch strings.ToLower(cfg.Driver) {
	case "ses":
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			return nil, fmt.Errorf("error creating AWS session: %w", err)
		}
		return NewSESSender(ses.New(sess), cfg.From), nil
	case "", "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported MAIL_DRIVER: %q", cfg.Driver)
	}
}

// SESSender sends through the SES SendEmail API.
type SESSender struct {
	api  sesiface.SESAPI
	from string
}

func NewSESSender(api sesiface.SESAPI, from string) *SESSender {
	return &SESSender{api: api, from: from}
}

func (s *SESSender) Send(ctx context.Context, m Message) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(m.To)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(m.HTML)},
				Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(m.Text)},
			},
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(m.Subject)},
		},
		Source: aws.String(s.from),
	}
	if _, err := s.api.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("ses send to %s: %w", m.To, err)
	}
	return nil
}

// LogSender prints messages instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	log.Printf("mail to=%s subject=%q\n%s", m.To, m.Subject, m.Text)
	return nil
}
