// internal/rules/pattern.go
package rules

import (
	"strings"

	"github.com/solatis/searchcond/internal/types"
)

/*
 * Trigger pattern matching for field-requirement rules.
 *
 * A trigger pattern is either a literal field identifier ("atk") or a prefix
 * pattern ending in a single trailing wildcard ("link*" matches "link-value"
 * and "link-marker"). This is deliberately not glob or regex matching: a "*"
 * anywhere but the final position is part of the literal identifier.
 *
 * A bare "*" is rejected at compile time because it would trigger on any
 * input, which no rule author means.
 */

// Wildcard is the trailing token that turns a pattern into a prefix match.
const Wildcard = "*"

// Pattern is a parsed trigger pattern.
type Pattern struct {
	Raw    string // pattern as written in the rule document
	Token  string // literal field or prefix, without the wildcard
	Prefix bool   // true = match fields starting with Token
}

// ParsePattern parses a trigger pattern. Returns false for empty patterns and
// for a bare wildcard.
func ParsePattern(raw string) (Pattern, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Wildcard {
		return Pattern{}, false
	}
	if strings.HasSuffix(raw, Wildcard) {
		return Pattern{Raw: raw, Token: strings.TrimSuffix(raw, Wildcard), Prefix: true}, true
	}
	return Pattern{Raw: raw, Token: raw}, true
}

// Match reports whether field satisfies the pattern.
func (p Pattern) Match(field types.Field) bool {
	if p.Prefix {
		return strings.HasPrefix(string(field), p.Token)
	}
	return string(field) == p.Token
}

// matchAny reports whether any pattern matches field.
func matchAny(patterns []Pattern, field types.Field) bool {
	for _, p := range patterns {
		if p.Match(field) {
			return true
		}
	}
	return false
}
