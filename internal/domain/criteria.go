package domain

import "strings"

// Criteria holds the structured constraints of one search. Every field is
// optional; an empty field means no constraint on that dimension.
type Criteria struct {
	Gender            string
	Personality       string
	PreferredLocation string
	Curriculum        string
	TeachingMethods   []string
}

// Matches reports whether a school passes every active deterministic filter.
// All tests are case-insensitive substring containment. Teaching methods use
// OR semantics across the requested set; dimensions combine with AND.
func (c Criteria) Matches(s School) bool {
	if !containsFold(s.Gender, c.Gender) {
		return false
	}
	if !containsFold(s.Address, c.PreferredLocation) {
		return false
	}
	if !containsFold(s.Curriculum, c.Curriculum) {
		return false
	}
	if active := activeMethods(c.TeachingMethods); len(active) > 0 {
		matched := false
		for _, m := range active {
			if containsFold(s.TeachingMethods, m) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// WantsScoring reports whether the search asked for personality compatibility
// scoring.
func (c Criteria) WantsScoring() bool {
	return strings.TrimSpace(c.Personality) != ""
}

// containsFold reports whether haystack contains needle case-insensitively.
// An empty needle always passes (inactive filter).
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func activeMethods(methods []string) []string {
	active := make([]string, 0, len(methods))
	for _, m := range methods {
		if strings.TrimSpace(m) != "" {
			active = append(active, m)
		}
	}
	return active
}
