package models

import (
	"time"
)

// DateLayout is the wire format for session dates ("2025-06-02").
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for the time-of-day field ("07:45").
const ClockLayout = "15:04"

// Set is one performed unit of an exercise.
type Set struct {
	Reps    int     `json:"reps"`
	Weight  float64 `json:"weight"`
	Comment string  `json:"comment,omitempty"`
}

// Exercise is a named movement within a session. It has no identity of its
// own; position within the parent session's slice identifies it.
type Exercise struct {
	Name    string `json:"name"`
	Tempo   string `json:"tempo"`
	Rest    int    `json:"rest"`
	Comment string `json:"comment,omitempty"`
	Sets    []Set  `json:"sets"`
}

// HeartRate is the start/end heart-rate pair recorded for a session.
type HeartRate struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TrainingSession is one logged training event as the service stores it.
// The ID is assigned by the service and is empty until the first save.
// DayOfWeek is derived from Date; it travels on the wire because the
// service's schema requires it, but clients never edit it directly.
type TrainingSession struct {
	ID          string     `json:"_id,omitempty"`
	Date        string     `json:"date"`
	DayOfWeek   string     `json:"dayOfWeek"`
	TimeOfDay   string     `json:"timeOfDay,omitempty"`
	Goal        string     `json:"goal"`
	HeartRate   HeartRate  `json:"heartRate"`
	Exercises   []Exercise `json:"exercises"`
	SessionNote string     `json:"sessionNote,omitempty"`
}

// FormValues is the create/update request body: a session without its id.
type FormValues struct {
	Date        string     `json:"date"`
	DayOfWeek   string     `json:"dayOfWeek"`
	TimeOfDay   string     `json:"timeOfDay,omitempty"`
	Goal        string     `json:"goal"`
	HeartRate   HeartRate  `json:"heartRate"`
	Exercises   []Exercise `json:"exercises"`
	SessionNote string     `json:"sessionNote,omitempty"`
}

// Values strips the service-assigned id from a session.
func (s TrainingSession) Values() FormValues {
	return FormValues{
		Date:        s.Date,
		DayOfWeek:   s.DayOfWeek,
		TimeOfDay:   s.TimeOfDay,
		Goal:        s.Goal,
		HeartRate:   s.HeartRate,
		Exercises:   s.Exercises,
		SessionNote: s.SessionNote,
	}
}

// Session attaches an id to form values, yielding the stored shape.
func (v FormValues) Session(id string) TrainingSession {
	return TrainingSession{
		ID:          id,
		Date:        v.Date,
		DayOfWeek:   v.DayOfWeek,
		TimeOfDay:   v.TimeOfDay,
		Goal:        v.Goal,
		HeartRate:   v.HeartRate,
		Exercises:   v.Exercises,
		SessionNote: v.SessionNote,
	}
}

// DayNames are the weekday names the service uses, indexed by time.Weekday.
var DayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// IsDayName reports whether s is one of the seven weekday names.
func IsDayName(s string) bool {
	for _, d := range DayNames {
		if s == d {
			return true
		}
	}
	return false
}

// WeekdayName returns the Gregorian weekday name for an ISO date string.
// An empty or unparseable date yields the empty string, matching the
// derived day-of-week of a form with no date picked.
func WeekdayName(date string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return DayNames[t.Weekday()]
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidClock reports whether s is a wall-clock time in HH:MM form.
func ValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// ClockOnGrid reports whether an HH:MM string sits on the 15-minute grid
// the time picker offers. Off-grid values still pass validation; the grid
// is an entry convenience, not a schema rule.
func ClockOnGrid(s string) bool {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return false
	}
	return t.Minute()%15 == 0
}
