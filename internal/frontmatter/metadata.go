package frontmatter

import (
	"fmt"
	"strings"
	"time"
)

// Well-known metadata keys.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDate        = "date"
)

// Metadata is the decoded frontmatter mapping. Unknown keys are kept as-is.
type Metadata map[string]any

// String returns the value for key rendered as a string, and whether a
// non-empty scalar value was present.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch tv := v.(type) {
	case string:
		s = tv
	case time.Time:
		s = formatTime(tv)
	case int, int64, uint64, float64, bool:
		s = fmt.Sprint(tv)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// StringOr returns the value for key or fallback when it is absent or empty.
func (m Metadata) StringOr(key, fallback string) string {
	if s, ok := m.String(key); ok {
		return s
	}
	return fallback
}

// Title returns the title, falling back to fallback.
func (m Metadata) Title(fallback string) string {
	return m.StringOr(KeyTitle, fallback)
}

// Description returns the description or an empty string.
func (m Metadata) Description() string {
	return m.StringOr(KeyDescription, "")
}

// Date returns the date as display text. YAML timestamps are formatted as
// YYYY-MM-DD unless they carry a time of day.
func (m Metadata) Date() (string, bool) {
	return m.String(KeyDate)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
