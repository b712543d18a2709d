package pathtemplate

import (
	"strings"
)

// forbidden reports runes that cannot appear in a key segment
func forbidden(r rune) bool {
	if r <= 0x1F {
		return true
	}
	switch r {
	case '/', '\\', '?', '%', '*', ':', '|', '"', '<', '>', '#':
		return true
	}
	return false
}

// SafeSegment makes s usable as a single object key segment: forbidden
// characters become "-", whitespace runs collapse to one space and the
// result is trimmed.
func SafeSegment(s string) string {
	replaced := strings.Map(func(r rune) rune {
		if forbidden(r) {
			return '-'
		}
		return r
	}, s)

	return strings.Join(strings.Fields(replaced), " ")
}

// SafePath sanitizes every "/"-separated component of p with SafeSegment
// and drops empty components, keeping the separator structure.
func SafePath(p string) string {
	parts := strings.Split(p, "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		kept = append(kept, SafeSegment(part))
	}
	return strings.Join(kept, "/")
}
