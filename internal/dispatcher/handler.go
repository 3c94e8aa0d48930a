package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmehdipour/email-dispatch/internal/address"
	"github.com/jmehdipour/email-dispatch/internal/channel/mailer"
	"github.com/jmehdipour/email-dispatch/internal/channel/sendgrid"
	"github.com/jmehdipour/email-dispatch/internal/metrics"
	"github.com/jmehdipour/email-dispatch/internal/model"
	"github.com/jmehdipour/email-dispatch/internal/sender"
	"github.com/jmehdipour/email-dispatch/internal/util"
)

var ErrMissingDependency = errors.New("missing dependency")

type AddressValidator interface {
	Check(ctx context.Context, to string) (address.Verdict, error)
}

type AllowList interface {
	Contains(emailType string) bool
}

type Deps struct {
	Log        *zap.Logger
	Validator  AddressValidator
	Internal   mailer.Transport
	AllowList  AllowList
	Metrics    *metrics.Metrics
	Senders    sender.Directory
	ThirdParty ThirdParty
}

// Handler validates one event and hands it to exactly one channel.
// It is safe for concurrent use.
type Handler struct {
	log        *zap.Logger
	validator  AddressValidator
	internal   mailer.Transport
	allow      AllowList
	metrics    *metrics.Metrics
	senders    sender.Directory
	thirdParty ThirdParty
}

func New(d Deps) (*Handler, error) {
	switch {
	case d.Log == nil:
		return nil, fmt.Errorf("%w: logger", ErrMissingDependency)
	case d.Validator == nil:
		return nil, fmt.Errorf("%w: address validator", ErrMissingDependency)
	case d.Internal == nil:
		return nil, fmt.Errorf("%w: internal transport", ErrMissingDependency)
	case d.AllowList == nil:
		return nil, fmt.Errorf("%w: allow-list", ErrMissingDependency)
	case d.Metrics == nil:
		return nil, fmt.Errorf("%w: metrics", ErrMissingDependency)
	}

	senders := d.Senders
	if senders.NoReplyAddress == "" || senders.InfoAddress == "" {
		senders = sender.NewDirectory(senders.NoReplyAddress, senders.InfoAddress)
	}

	return &Handler{
		log:        d.Log,
		validator:  d.Validator,
		internal:   d.Internal,
		allow:      d.AllowList,
		metrics:    d.Metrics,
		senders:    senders,
		thirdParty: d.ThirdParty,
	}, nil
}

// Handle processes one event. Rejections and SendGrid failures are logged
// and reported as handled (nil). Lookup and internal transport failures are
// returned so the caller leaves the message for redelivery.
func (h *Handler) Handle(ctx context.Context, ev model.EmailDeliveryEvent) error {
	log := h.log.With(zap.String("event_id", util.NewEventID()))

	verdict, err := h.validator.Check(ctx, ev.To)
	if err != nil {
		return fmt.Errorf("validate recipient: %w", err)
	}

	switch verdict {
	case address.VerdictInvalid:
		log.Warn("skipping message because recipient is not a valid email address")
		return nil
	case address.VerdictShadyProvider:
		log.Warn("skipping message because recipient is a shady provider")
		return nil
	case address.VerdictBlacklisted:
		h.metrics.BlacklistedTotal.WithLabelValues(ev.To).Inc()
		log.Warn("skipping message because sending to blacklisted emails is prohibited")
		return nil
	}

	h.metrics.EventsTotal.WithLabelValues(ev.EmailType).Inc()

	log.Info("sending email",
		zap.String("to", ev.To),
		zap.String("from", ev.From),
		zap.String("subject", ev.Subject),
		zap.String("email_type", ev.EmailType),
		zap.Stringer("body_type", ev.BodyType),
	)

	fromName := h.senders.DisplayName(ev.From)

	if ch, ok := h.thirdPartyFor(ev.EmailType); ok {
		log.Warn("email type is in the list for sendgrid email types", zap.String("email_type", ev.EmailType))
		h.metrics.SendGridTotal.WithLabelValues(ev.EmailType).Inc()

		if err := ch.Send(ctx, ev, fromName); err != nil {
			reportSendFailure(log, err)
		}
		return nil
	}

	return h.sendInternal(ctx, ev, sender.Format(fromName, ev.From))
}

func (h *Handler) thirdPartyFor(emailType string) (ThirdPartyChannel, bool) {
	if emailType == "" {
		return nil, false
	}
	ch, ok := h.thirdParty.Channel()
	if !ok || !h.allow.Contains(emailType) {
		return nil, false
	}
	return ch, true
}

func (h *Handler) sendInternal(ctx context.Context, ev model.EmailDeliveryEvent, from string) error {
	var err error
	switch ev.BodyType {
	case model.BodyTypeMime:
		err = h.internal.SendMimeEmail(ctx, ev.To, from, ev.Subject, ev.PlainTextBody, ev.HTMLBody)
	case model.BodyTypeHTML:
		err = h.internal.SendEmail(ctx, ev.To, from, ev.Subject, ev.HTMLBody, true)
	default:
		err = h.internal.SendEmail(ctx, ev.To, from, ev.Subject, ev.PlainTextBody, false)
	}
	if err != nil {
		return fmt.Errorf("internal transport: %w", err)
	}
	return nil
}

// reportSendFailure logs the aggregated SendGrid error list. Responses without
// a recognizable error body stay at debug.
func reportSendFailure(log *zap.Logger, err error) {
	var se *sendgrid.SendError
	if !errors.As(err, &se) {
		log.Debug("sendgrid submission failed", zap.Error(err))
		return
	}

	if report, ok := se.Report(); ok {
		log.Error(report, zap.Int("status", se.StatusCode))
		return
	}

	log.Debug("sendgrid submission failed without error body",
		zap.Int("status", se.StatusCode),
		zap.NamedError("cause", se.Err),
	)
}
