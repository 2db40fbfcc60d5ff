package service

import (
	"regexp"
	"strings"

	"github.com/vanshika/moviegraph/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeName trims and collapses internal whitespace.
func normalizeName(name string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(name), " ")
}

// normalizeRoles trims every role, drops empty entries and duplicates, and
// keeps the first-seen order. "director" in any casing becomes the canonical
// Director role so it still yields a DIRECTED edge.
func normalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = normalizeName(role)
		if role == "" {
			continue
		}
		if strings.EqualFold(role, domain.RoleDirector) {
			role = domain.RoleDirector
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = normalizeName(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
