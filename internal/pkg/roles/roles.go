// Package roles works with the comma-joined role tags stored on users,
// e.g. "user,provider".
package roles

import "strings"

const (
	User     = "user"
	Provider = "provider"
)

// Split returns the non-empty, trimmed tags of a role string.
func Split(role string) []string {
	parts := strings.Split(role, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether tag is one of the role's tags.
func Has(role, tag string) bool {
	for _, t := range Split(role) {
		if t == tag {
			return true
		}
	}
	return false
}

// Add appends tag unless it is already present. Calling it repeatedly yields
// the same string.
func Add(role, tag string) string {
	if Has(role, tag) {
		return role
	}
	tags := append(Split(role), tag)
	return strings.Join(tags, ",")
}
