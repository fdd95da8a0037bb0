package form

import (
	"fmt"
	"strings"

	"github.com/claude/pumplog/internal/models"
)

// Violation is one field-level schema failure. Field is a dotted path
// with bracketed positions ("exercises[0].sets"), Message the text the
// service's own schema reports for the same rule.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// Violations is the complete, ordered list of schema failures for one
// session value. Empty means the value is accepted for submission.
type Violations []Violation

// OK reports whether the value passed the schema.
func (vs Violations) OK() bool { return len(vs) == 0 }

func (vs Violations) String() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// ValidateValues runs the submission schema over a session value. It is
// pure and total: any session-shaped value yields either acceptance or
// every violation present, top-to-bottom in field order. An in-progress
// draft may fail freely; the schema only gates submission.
func ValidateValues(v models.FormValues) Violations {
	var vs Violations
	add := func(field, message string) {
		vs = append(vs, Violation{Field: field, Message: message})
	}

	if v.Date == "" {
		add("date", "Date is required")
	}
	if v.DayOfWeek == "" {
		add("dayOfWeek", "Day of week is required")
	}
	if v.TimeOfDay == "" {
		add("timeOfDay", "Time of day is required")
	}
	if v.Goal == "" {
		add("goal", "Goal is required")
	}
	if v.HeartRate.Start < 0 {
		add("heartRate.start", "Start heart rate must be 0 or greater")
	}
	if v.HeartRate.End < 0 {
		add("heartRate.end", "End heart rate must be 0 or greater")
	}

	if len(v.Exercises) == 0 {
		add("exercises", "At least one exercise is required")
	}
	for i, ex := range v.Exercises {
		path := fmt.Sprintf("exercises[%d]", i)
		if ex.Name == "" {
			add(path+".name", "Exercise name is required")
		}
		if ex.Tempo == "" {
			add(path+".tempo", "Tempo is required")
		}
		if ex.Rest < 0 {
			add(path+".rest", "Rest must be 0 or greater")
		}
		if len(ex.Sets) == 0 {
			add(path+".sets", "At least one set is required")
		}
		for j, set := range ex.Sets {
			setPath := fmt.Sprintf("%s.sets[%d]", path, j)
			if set.Reps < 0 {
				add(setPath+".reps", "Reps must be 0 or greater")
			}
			if set.Weight < 0 {
				add(setPath+".weight", "Weight must be 0 or greater")
			}
		}
	}

	return vs
}
