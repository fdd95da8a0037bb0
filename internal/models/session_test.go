package models

import (
	"encoding/json"
	"testing"
)

// TestWeekdayName verifies the Gregorian weekday derivation for known
// dates across the week.
func TestWeekdayName(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-06-01", "Sunday"},
		{"2025-06-02", "Monday"},
		{"2025-06-03", "Tuesday"},
		{"2025-06-04", "Wednesday"},
		{"2025-06-05", "Thursday"},
		{"2025-06-06", "Friday"},
		{"2025-06-07", "Saturday"},
		{"2024-02-29", "Thursday"}, // leap day
	}
	for _, c := range cases {
		if got := WeekdayName(c.date); got != c.want {
			t.Errorf("WeekdayName(%q) = %q, want %q", c.date, got, c.want)
		}
	}
}

// TestWeekdayNameEmpty verifies that no date yields no derived day,
// matching a form with nothing picked yet.
func TestWeekdayNameEmpty(t *testing.T) {
	if got := WeekdayName(""); got != "" {
		t.Errorf("WeekdayName(\"\") = %q, want \"\"", got)
	}
	if got := WeekdayName("not-a-date"); got != "" {
		t.Errorf("WeekdayName(garbage) = %q, want \"\"", got)
	}
}

// TestValidDate verifies real calendar dates pass and impossible ones fail.
func TestValidDate(t *testing.T) {
	if !ValidDate("2025-06-02") {
		t.Error("2025-06-02 should be valid")
	}
	if ValidDate("2025-02-30") {
		t.Error("2025-02-30 should be invalid")
	}
	if ValidDate("02/06/2025") {
		t.Error("slash format should be invalid")
	}
}

// TestClockOnGrid verifies the 15-minute grid check used by the time
// entry hint.
func TestClockOnGrid(t *testing.T) {
	for _, ok := range []string{"00:00", "07:15", "18:30", "23:45"} {
		if !ClockOnGrid(ok) {
			t.Errorf("%s should be on the grid", ok)
		}
	}
	for _, off := range []string{"07:10", "18:31", "nope"} {
		if ClockOnGrid(off) {
			t.Errorf("%s should be off the grid", off)
		}
	}
}

// TestSessionWireShape verifies the JSON field names the service expects,
// notably the "_id" key for identity and the nested heartRate pair.
func TestSessionWireShape(t *testing.T) {
	s := TrainingSession{
		ID:        "abc123",
		Date:      "2025-06-02",
		DayOfWeek: "Monday",
		TimeOfDay: "07:30",
		Goal:      "Strength",
		HeartRate: HeartRate{Start: 90, End: 120},
		Exercises: []Exercise{
			{Name: "Bench Press", Tempo: "3-1-1", Rest: 120, Sets: []Set{{Reps: 8, Weight: 60}}},
		},
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if raw["_id"] != "abc123" {
		t.Errorf("_id = %v, want abc123", raw["_id"])
	}
	hr, ok := raw["heartRate"].(map[string]any)
	if !ok {
		t.Fatalf("heartRate missing or wrong shape: %v", raw["heartRate"])
	}
	if hr["start"] != float64(90) || hr["end"] != float64(120) {
		t.Errorf("heartRate = %v, want start 90 end 120", hr)
	}
	if _, present := raw["timeOfDay"]; !present {
		t.Error("timeOfDay missing from wire form")
	}
}

// TestValuesRoundTrip verifies stripping and re-attaching the id keeps
// every other field intact.
func TestValuesRoundTrip(t *testing.T) {
	s := TrainingSession{
		ID:          "id-1",
		Date:        "2025-06-02",
		DayOfWeek:   "Monday",
		Goal:        "Hypertrophy",
		SessionNote: "felt strong",
		Exercises:   []Exercise{{Name: "Squat", Sets: []Set{{Reps: 5, Weight: 100}}}},
	}
	back := s.Values().Session("id-1")
	if back.ID != s.ID || back.Goal != s.Goal || back.SessionNote != s.SessionNote {
		t.Errorf("round trip changed fields: %+v", back)
	}
	if len(back.Exercises) != 1 || back.Exercises[0].Name != "Squat" {
		t.Errorf("round trip lost exercises: %+v", back.Exercises)
	}
}
