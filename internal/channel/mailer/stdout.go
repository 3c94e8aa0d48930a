package mailer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Stdout prints messages instead of sending them. Used for local runs.
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdout() *Stdout { return NewStdoutWithWriter(os.Stdout) }

func NewStdoutWithWriter(w io.Writer) *Stdout { return &Stdout{w: w} }

func (s *Stdout) SendEmail(_ context.Context, to, from, subject, body string, isHTML bool) error {
	kind := "text/plain"
	if isHTML {
		kind = "text/html"
	}
	return s.print(to, from, subject, [][2]string{{kind, body}})
}

func (s *Stdout) SendMimeEmail(_ context.Context, to, from, subject, plainBody, htmlBody string) error {
	return s.print(to, from, subject, [][2]string{{"text/plain", plainBody}, {"text/html", htmlBody}})
}

func (s *Stdout) print(to, from, subject string, parts [][2]string) error {
	var b strings.Builder
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "From: %s\nTo: %s\nSubject: %s\n", from, to, subject)
	for _, p := range parts {
		fmt.Fprintf(&b, "--- %s\n%s\n", p[0], p[1])
	}
	b.WriteString("========================================\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, b.String())
	return err
}
