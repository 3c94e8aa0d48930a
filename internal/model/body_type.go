package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type BodyType int

const (
	BodyTypePlain BodyType = iota
	BodyTypeHTML
	BodyTypeMime
)

func (t BodyType) String() string {
	switch t {
	case BodyTypePlain:
		return "Plain"
	case BodyTypeHTML:
		return "Html"
	case BodyTypeMime:
		return "Mime"
	default:
		return fmt.Sprintf("BodyType(%d)", int(t))
	}
}

func (t BodyType) Valid() bool {
	return t == BodyTypePlain || t == BodyTypeHTML || t == BodyTypeMime
}

// ParseBodyType normalizes input; empty => plain. Only the variant names are
// accepted, so "text" or "txt" is rejected like any other unknown kind.
// Returns (value, true) if valid; otherwise (plain, false).
func ParseBodyType(s string) (BodyType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return BodyTypePlain, true
	case "html":
		return BodyTypeHTML, true
	case "mime":
		return BodyTypeMime, true
	default:
		return BodyTypePlain, false
	}
}

func (t BodyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the variant name ("Plain", "html", ...) or its ordinal (0, 1, 2).
func (t *BodyType) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		bt := BodyType(n)
		if !bt.Valid() {
			return fmt.Errorf("unknown body type %d", n)
		}
		*t = bt
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("body type: %w", err)
	}
	bt, ok := ParseBodyType(s)
	if !ok {
		return fmt.Errorf("unknown body type %q", s)
	}
	*t = bt
	return nil
}
