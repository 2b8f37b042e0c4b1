package logformat

import (
	"regexp"
	"strings"
	"time"
)

// TimestampScanner extracts a leading timestamp from log lines.
// Patterns are anchored at the start of the line; a stamp embedded
// later in the line is never extracted.
type TimestampScanner struct {
	patterns []timestampPattern
}

type timestampPattern struct {
	regex   *regexp.Regexp
	layouts []string
}

// NewTimestampScanner creates a scanner with common timestamp formats
func NewTimestampScanner() *TimestampScanner {
	return &TimestampScanner{
		patterns: []timestampPattern{
			// ISO 8601 / RFC 3339 variants
			// 2024-01-15T10:30:45
			// 2024-01-15T10:30:45.123Z
			// 2024-01-15T10:30:45+00:00
			{
				regex:   regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{1,9})?(?:Z|[+-]\d{2}:\d{2})?`),
				layouts: []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"},
			},
			// Common log format, with or without milliseconds
			// 2024-01-15 10:30:45.123
			{
				regex:   regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d{3})?`),
				layouts: []string{"2006-01-02 15:04:05.000", "2006-01-02 15:04:05"},
			},
			// Bracket format common in many loggers
			// [2024-01-15 10:30:45.123]
			{
				regex:   regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d{3})?\]`),
				layouts: []string{"[2006-01-02 15:04:05.000]", "[2006-01-02 15:04:05]"},
			},
			// Syslog format
			// Jan 15 10:30:45
			{
				regex:   regexp.MustCompile(`^[A-Z][a-z]{2} {1,2}\d{1,2} \d{2}:\d{2}:\d{2}`),
				layouts: []string{"Jan 2 15:04:05", "Jan  2 15:04:05"},
			},
			// Time only (assume today)
			// 10:30:45.123
			{
				regex:   regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(?:\.\d{3})?`),
				layouts: []string{"15:04:05.000", "15:04:05"},
			},
		},
	}
}

// Scan attempts to extract a leading timestamp from a log line.
// On a match it returns the parsed time and the rest of the line with
// the stamp and one following space removed; otherwise it returns nil
// and the line unchanged.
func (s *TimestampScanner) Scan(line string) (*time.Time, string) {
	for _, pattern := range s.patterns {
		match := pattern.regex.FindString(line)
		if match == "" {
			continue
		}

		for _, layout := range pattern.layouts {
			t, err := time.Parse(layout, match)
			if err != nil {
				continue
			}

			// Time-only formats borrow today's date
			if layout == "15:04:05" || layout == "15:04:05.000" {
				now := time.Now()
				t = time.Date(now.Year(), now.Month(), now.Day(),
					t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
			}
			// Syslog format has no year
			if strings.HasPrefix(layout, "Jan") {
				t = time.Date(time.Now().Year(), t.Month(), t.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, time.Local)
			}

			rest := strings.TrimPrefix(line[len(match):], " ")
			return &t, rest
		}
	}

	return nil, line
}

// FormatTime formats a timestamp for display
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
