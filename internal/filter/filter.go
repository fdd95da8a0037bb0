// Package filter narrows a fetched session history the way the dashboard
// filter bar does: every active criterion must hold, inactive criteria
// always pass, and the input order survives.
package filter

import (
	"strings"

	"github.com/claude/pumplog/internal/models"
)

// DayAny matches every weekday.
const DayAny = "any"

// Spec is one filter configuration. Zero values ("" dates, empty search
// strings, DayOfWeek empty or "any") deactivate their criterion.
type Spec struct {
	DateFrom  string
	DateTo    string
	DayOfWeek string
	Exercise  string
	Goal      string
}

// Apply returns the subsequence of sessions matching every active
// criterion, in the original order. It is a pure function; the input
// slice is never modified.
func Apply(sessions []models.TrainingSession, spec Spec) []models.TrainingSession {
	out := make([]models.TrainingSession, 0, len(sessions))
	for _, s := range sessions {
		if Matches(s, spec) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether a single session satisfies the spec.
// ISO dates compare correctly as strings, so the range checks are plain
// lexicographic comparisons on the date prefix.
func Matches(s models.TrainingSession, spec Spec) bool {
	date := s.Date
	if len(date) > len(models.DateLayout) {
		date = date[:len(models.DateLayout)]
	}
	if spec.DateFrom != "" && date < spec.DateFrom {
		return false
	}
	if spec.DateTo != "" && date > spec.DateTo {
		return false
	}
	if spec.DayOfWeek != "" && spec.DayOfWeek != DayAny && s.DayOfWeek != spec.DayOfWeek {
		return false
	}
	if spec.Exercise != "" && !anyExerciseContains(s.Exercises, spec.Exercise) {
		return false
	}
	if spec.Goal != "" && !containsFold(s.Goal, spec.Goal) {
		return false
	}
	return true
}

func anyExerciseContains(exercises []models.Exercise, needle string) bool {
	for _, ex := range exercises {
		if containsFold(ex.Name, needle) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
