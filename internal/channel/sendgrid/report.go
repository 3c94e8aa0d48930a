package sendgrid

import (
	"bytes"
	"encoding/json"
	"strings"
)

const reportPrefix = "Error when sending email via SendGrid: "

type errorBody struct {
	Errors *[]errorEntry `json:"errors"`
}

type errorEntry struct {
	Message json.RawMessage `json:"message"`
	Field   json.RawMessage `json:"field"`
	Help    json.RawMessage `json:"help"`
}

// ParseReport builds "Error when sending email via SendGrid: " followed by one
// line per entry of {"errors":[{"message","field","help"}]}. Field and help
// are appended only when present and non-empty.
func ParseReport(body string) (string, bool) {
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err != nil || eb.Errors == nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(reportPrefix)
	for _, e := range *eb.Errors {
		b.WriteString(rawText(e.Message))
		if f := rawText(e.Field); f != "" {
			b.WriteString(" (field: " + f + ")")
		}
		if h := rawText(e.Help); h != "" {
			b.WriteString(" (help: " + h + ")")
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n"), true
}

// rawText renders a JSON value as text: strings unquoted, null as "",
// anything else verbatim.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
