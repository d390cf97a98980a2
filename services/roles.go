package services

import (
	"strings"

	"github.com/lifecheck/lifecheck/models"
)

// RoleSet is the parsed form of the comma-joined role column. It is built
// once at the directory boundary; downstream code never re-parses raw text.
type RoleSet []string

// ParseRoleSet splits comma-joined role text, trimming entries and dropping
// empties. An effectively empty input yields the default role set.
func ParseRoleSet(raw string) RoleSet {
	parts := strings.Split(raw, ",")
	set := make(RoleSet, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" && !set.Has(trimmed) {
			set = append(set, trimmed)
		}
	}
	if len(set) == 0 {
		return RoleSet{models.DefaultRole}
	}
	return set
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(role string) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// String joins the set back into its stored comma-separated form.
func (s RoleSet) String() string {
	return strings.Join(s, ",")
}
