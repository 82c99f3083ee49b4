package domain

import "strings"

// ParseSkills splits a comma-separated skill list into lowercased, trimmed
// tokens. Order and duplicates are preserved. A blank list yields nil.
func ParseSkills(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		skills = append(skills, strings.ToLower(strings.TrimSpace(p)))
	}
	return skills
}
