package dispatcher

import (
	"context"
	"reflect"

	"github.com/jmehdipour/email-dispatch/internal/model"
)

// ThirdPartyChannel submits an event to an external email API. fromName is
// the sender display name, possibly empty.
type ThirdPartyChannel interface {
	Send(ctx context.Context, ev model.EmailDeliveryEvent, fromName string) error
}

// ThirdParty is either no channel or exactly one, fixed at startup.
type ThirdParty struct {
	ch ThirdPartyChannel
}

func NoThirdParty() ThirdParty { return ThirdParty{} }

// UseThirdParty with a nil channel, including a typed nil pointer such as
// (*sendgrid.Client)(nil), is the same as NoThirdParty.
func UseThirdParty(ch ThirdPartyChannel) ThirdParty {
	if isNil(ch) {
		return NoThirdParty()
	}
	return ThirdParty{ch: ch}
}

func isNil(ch ThirdPartyChannel) bool {
	if ch == nil {
		return true
	}
	v := reflect.ValueOf(ch)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (t ThirdParty) Channel() (ThirdPartyChannel, bool) { return t.ch, t.ch != nil }

func (t ThirdParty) Enabled() bool { return t.ch != nil }
