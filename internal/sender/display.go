// Package sender resolves display names for well-known system sender addresses.
package sender

import "fmt"

const (
	NoReplyName = "Roblox no-reply"
	InfoName    = "Roblox"

	DefaultNoReplyAddress = "no-reply@roblox.com"
	DefaultInfoAddress    = "info@roblox.com"
)

// Directory maps the system sender addresses to their display names.
type Directory struct {
	NoReplyAddress string
	InfoAddress    string
}

// NewDirectory falls back to the default addresses for empty arguments.
func NewDirectory(noReply, info string) Directory {
	if noReply == "" {
		noReply = DefaultNoReplyAddress
	}
	if info == "" {
		info = DefaultInfoAddress
	}
	return Directory{NoReplyAddress: noReply, InfoAddress: info}
}

// DisplayName returns "" for any address that is not a system sender.
func (d Directory) DisplayName(from string) string {
	switch from {
	case d.NoReplyAddress:
		return NoReplyName
	case d.InfoAddress:
		return InfoName
	default:
		return ""
	}
}

// Format renders "Name <address>", or the bare address when name is empty.
func Format(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
