package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/internal/model"
)

// eventFlags collects one EmailDeliveryEvent from the command line.
type eventFlags struct {
	to, from, subject string
	bodyType          string
	plain, html       string
	emailType         string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.to, "to", "", "recipient address")
	fl.StringVar(&f.from, "from", "no-reply@roblox.com", "sender address")
	fl.StringVar(&f.subject, "subject", "", "subject line")
	fl.StringVar(&f.bodyType, "body-type", "plain", "plain | html | mime")
	fl.StringVar(&f.plain, "plain", "", "plain text body")
	fl.StringVar(&f.html, "html", "", "HTML body")
	fl.StringVar(&f.emailType, "email-type", "", "email type label")
	_ = cmd.MarkFlagRequired("to")
}

func (f *eventFlags) event() (model.EmailDeliveryEvent, error) {
	bt, ok := model.ParseBodyType(f.bodyType)
	if !ok {
		return model.EmailDeliveryEvent{}, fmt.Errorf("unknown body type %q", f.bodyType)
	}
	return model.EmailDeliveryEvent{
		To:            f.to,
		From:          f.from,
		Subject:       f.subject,
		BodyType:      bt,
		PlainTextBody: f.plain,
		HTMLBody:      f.html,
		EmailType:     f.emailType,
	}, nil
}
