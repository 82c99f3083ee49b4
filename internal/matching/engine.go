// Package matching recommends scheduled workshops to a user by comparing the
// skills they seek against each workshop's title, description and category.
package matching

import (
	"sort"
	"strings"

	"github.com/vedran77/skillshare/internal/domain"
)

const (
	// MaxMatches caps the number of recommendations returned.
	MaxMatches = 6

	textHitWeight     = 1
	categoryHitWeight = 2
)

type Match struct {
	Workshop       domain.WorkshopSummary `json:"workshop"`
	Score          int                    `json:"match_score"`
	MatchingSkills []string               `json:"matching_skills"`
}

// FindMatches ranks candidates for user. Workshops that are not scheduled,
// that the user hosts, or that the user is already registered for are skipped.
//
// Each sought skill that occurs as a substring of "title description category"
// scores 1, and one that also occurs in the category scores 2 more. Results
// with a zero score are dropped, the rest are ordered by score descending with
// ties kept in candidate order, and at most MaxMatches are returned.
//
// FindMatches does not modify its inputs and is safe for concurrent use.
func FindMatches(user *domain.User, candidates []domain.WorkshopSummary) []Match {
	matches := []Match{}
	if user == nil {
		return matches
	}

	skills := user.SkillsSeekingList()
	if len(skills) == 0 {
		return matches
	}

	for _, w := range candidates {
		if w.Status != domain.WorkshopScheduled {
			continue
		}
		if w.IsRegistered(user.ID) || w.HostID == user.ID {
			continue
		}

		if m, ok := score(w, skills); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	return matches
}

func score(w domain.WorkshopSummary, skills []string) (Match, bool) {
	category := strings.ToLower(w.Category)
	text := strings.ToLower(w.Title + " " + w.Description + " " + w.Category)

	m := Match{Workshop: w, MatchingSkills: []string{}}
	for _, skill := range skills {
		inText := strings.Contains(text, skill)
		inCategory := strings.Contains(category, skill)

		if inText {
			m.Score += textHitWeight
		}
		if inCategory {
			m.Score += categoryHitWeight
		}
		if inText || inCategory {
			m.MatchingSkills = append(m.MatchingSkills, skill)
		}
	}

	return m, m.Score > 0
}
