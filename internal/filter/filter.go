package filter

import (
	"regexp"
	"strings"
)

// LineSource is the view of an index the scanner needs
type LineSource interface {
	// LineCount returns total number of lines
	LineCount() int

	// Line returns the decoded text of line i
	Line(i int) string
}

// Predicate describes a line filter. An empty Pattern matches every line.
type Predicate struct {
	Pattern       string
	Regex         bool
	CaseSensitive bool
}

// Matcher reports whether a line passes a compiled predicate
type Matcher func(line string) bool

// Compile turns a predicate into a Matcher. An invalid regex pattern
// compiles to a matcher that rejects every line instead of erroring, so
// a typo in user input degrades the filter rather than the traversal.
func (p Predicate) Compile() Matcher {
	if p.Pattern == "" {
		return func(string) bool { return true }
	}

	if p.Regex {
		expr := p.Pattern
		if !p.CaseSensitive {
			expr = "(?i:" + expr + ")"
		}
		// Anchored at line start
		re, err := regexp.Compile(`\A` + expr)
		if err != nil {
			return func(string) bool { return false }
		}
		return func(line string) bool {
			// Empty lines always match
			if line == "" {
				return true
			}
			return re.MatchString(line)
		}
	}

	if p.CaseSensitive {
		pattern := p.Pattern
		return func(line string) bool {
			return line == "" || strings.Contains(line, pattern)
		}
	}

	pattern := strings.ToLower(p.Pattern)
	return func(line string) bool {
		return line == "" || strings.Contains(strings.ToLower(line), pattern)
	}
}

// Advance scans from cursor+direction toward the end of src (direction
// +1) or toward line 0 (direction -1) and returns the first line number
// whose text matches. The second result is false when the traversal is
// exhausted without a match. The caller owns the cursor; no state is
// kept between calls.
func Advance(src LineSource, cursor, direction int, match Matcher) (int, bool) {
	if direction >= 0 {
		direction = 1
	} else {
		direction = -1
	}

	count := src.LineCount()
	for i := cursor + direction; i >= 0 && i < count; i += direction {
		if match(src.Line(i)) {
			return i, true
		}
	}
	return 0, false
}
