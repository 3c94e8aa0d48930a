package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmehdipour/email-dispatch/internal/model"
)

func TestEventFlags(t *testing.T) {
	var f eventFlags
	c := &cobra.Command{Use: "x"}
	f.register(c)

	require.NoError(t, c.ParseFlags([]string{
		"--to", "user@example.com",
		"--subject", "Hi",
		"--body-type", "MIME",
		"--plain", "Hello",
		"--html", "<p>Hello</p>",
		"--email-type", "Welcome",
	}))

	ev, err := f.event()
	require.NoError(t, err)
	assert.Equal(t, model.EmailDeliveryEvent{
		To:            "user@example.com",
		From:          "no-reply@roblox.com",
		Subject:       "Hi",
		BodyType:      model.BodyTypeMime,
		PlainTextBody: "Hello",
		HTMLBody:      "<p>Hello</p>",
		EmailType:     "Welcome",
	}, ev)
}

func TestEventFlags_BadBodyType(t *testing.T) {
	f := eventFlags{to: "user@example.com", bodyType: "rtf"}
	_, err := f.event()
	assert.Error(t, err)
}
