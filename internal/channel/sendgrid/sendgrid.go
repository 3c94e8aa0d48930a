// Package sendgrid delivers events through the SendGrid v3 mail send API.
package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jmehdipour/email-dispatch/internal/model"
)

const (
	mimeText = "text/plain"
	mimeHTML = "text/html"
)

// Client is the subset of *sendgrid.Client the channel needs.
type Client interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Channel struct {
	client Client
}

func New(apiKey string) *Channel {
	return NewWithClient(sg.NewSendClient(apiKey))
}

func NewWithClient(client Client) *Channel {
	return &Channel{client: client}
}

func (c *Channel) Name() string { return "sendgrid" }

// Send submits the event synchronously. The submission is detached from
// ctx cancellation so a started request always runs to completion.
// A transport failure or non-2xx response is returned as *SendError.
func (c *Channel) Send(ctx context.Context, ev model.EmailDeliveryEvent, fromName string) error {
	msg := BuildMessage(ev, fromName)

	res, err := c.client.SendWithContext(context.WithoutCancel(ctx), msg)
	if err != nil {
		se := &SendError{Err: err}
		if res != nil {
			se.StatusCode = res.StatusCode
			se.Body = res.Body
		}
		return se
	}

	if res.StatusCode/100 != 2 {
		return &SendError{StatusCode: res.StatusCode, Body: res.Body}
	}

	return nil
}

// BuildMessage maps an event onto a single-recipient SendGrid message.
func BuildMessage(ev model.EmailDeliveryEvent, fromName string) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.Subject = ev.Subject
	m.SetFrom(mail.NewEmail(fromName, ev.From))

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", ev.To))
	m.AddPersonalizations(p)

	switch ev.BodyType {
	case model.BodyTypePlain:
		m.AddContent(mail.NewContent(mimeText, ev.PlainTextBody))
	case model.BodyTypeHTML:
		m.AddContent(mail.NewContent(mimeHTML, ev.HTMLBody))
	case model.BodyTypeMime:
		m.AddContent(
			mail.NewContent(mimeText, ev.PlainTextBody),
			mail.NewContent(mimeHTML, ev.HTMLBody),
		)
	}

	return m
}

type SendError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sendgrid: %v", e.Err)
	}
	return fmt.Sprintf("sendgrid: status=%d", e.StatusCode)
}

func (e *SendError) Unwrap() error { return e.Err }

// Report renders the response body's error list as a single log line.
// ok is false when the body has no errors array.
func (e *SendError) Report() (string, bool) {
	return ParseReport(e.Body)
}
