// Package allowlist holds the set of email types routed to the third-party channel.
package allowlist

import (
	"strings"
	"sync/atomic"

	"github.com/jmehdipour/email-dispatch/internal/config"
)

type set map[string]struct{}

// List is safe for concurrent use. Readers always see a complete snapshot;
// Replace swaps the whole set at once.
type List struct {
	p atomic.Pointer[set]
}

// New builds a List from a comma-delimited string.
func New(csv string) *List {
	l := &List{}
	l.Replace(csv)
	return l
}

// Parse splits a comma-delimited list, trimming entries and dropping empty ones.
func Parse(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Replace installs a new snapshot parsed from csv.
func (l *List) Replace(csv string) {
	entries := Parse(csv)
	s := make(set, len(entries))
	for _, e := range entries {
		s[e] = struct{}{}
	}
	l.p.Store(&s)
}

func (l *List) Contains(emailType string) bool {
	s := l.p.Load()
	if s == nil {
		return false
	}
	_, ok := (*s)[emailType]
	return ok
}

func (l *List) Len() int {
	if s := l.p.Load(); s != nil {
		return len(*s)
	}
	return 0
}

// Follow keeps the list in sync with sendgrid.email_types_csv. Close the
// returned subscription to stop following.
func (l *List) Follow(w *config.Watcher) *config.Subscription {
	return w.Subscribe(func(c config.Config) {
		l.Replace(c.SendGrid.EmailTypesCSV)
	})
}
