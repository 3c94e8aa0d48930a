// Package mailer is the internal email-sending facility.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmehdipour/email-dispatch/internal/config"
)

// Transport sends a fully addressed email. from may carry a display name
// in "Name <address>" form.
type Transport interface {
	SendEmail(ctx context.Context, to, from, subject, body string, isHTML bool) error
	SendMimeEmail(ctx context.Context, to, from, subject, plainBody, htmlBody string) error
}

var ErrUnknownDriver = errors.New("unknown mailer driver")

// New builds the transport selected by cfg.Driver.
func New(ctx context.Context, cfg config.MailerConfig) (Transport, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "stdout":
		return NewStdout(), nil
	case "ses":
		return NewSES(ctx, cfg.SES)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
