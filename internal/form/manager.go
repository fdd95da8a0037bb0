package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/claude/pumplog/internal/models"
)

// ErrIndexOutOfRange is returned when an operation targets an exercise or
// set position that does not exist. The web form could not produce such a
// call (every widget is bound to a live row); from the CLI it is a caller
// bug or a stale draft, so it surfaces as an error instead of a silent
// no-op.
var ErrIndexOutOfRange = errors.New("form: index out of range")

// Submitter is the slice of the API client the manager needs to save a
// session. Satisfied by *api.Client.
type Submitter interface {
	CreateTraining(ctx context.Context, values models.FormValues) (*models.TrainingSession, error)
	UpdateTraining(ctx context.Context, id string, values models.FormValues) (*models.TrainingSession, error)
}

// Manager owns the editable state of one training session. All operations
// are synchronous and keep the nested exercise/set slices well-formed;
// only Submit touches the network. A Manager is not safe for concurrent
// use; it models a single form on a single screen.
type Manager struct {
	id     string
	values models.FormValues
}

// New returns a manager holding an empty draft for a new session.
func New() *Manager {
	return &Manager{}
}

// Edit returns a manager seeded from a fetched session. The id is kept so
// Submit routes to update rather than create.
func Edit(s models.TrainingSession) *Manager {
	return &Manager{id: s.ID, values: clone(s.Values())}
}

// clone deep-copies form values so the manager never shares exercise and
// set backing arrays with its callers.
func clone(v models.FormValues) models.FormValues {
	out := v
	out.Exercises = make([]models.Exercise, len(v.Exercises))
	for i, ex := range v.Exercises {
		ex.Sets = append([]models.Set(nil), ex.Sets...)
		out.Exercises[i] = ex
	}
	return out
}

// ID returns the service-assigned session id, empty for a new session.
func (m *Manager) ID() string { return m.id }

// Values returns a deep copy of the current form values. Mutating the
// copy does not affect the manager.
func (m *Manager) Values() models.FormValues {
	return clone(m.values)
}

// Load replaces the entire draft value, rederiving the day of week from
// the incoming date. Used when a draft document is read back from disk.
func (m *Manager) Load(v models.FormValues) {
	m.values = clone(v)
	m.values.DayOfWeek = models.WeekdayName(v.Date)
}

// SetDate sets the session date and recomputes the derived day of week.
// An empty date clears both. The day of week is never stored apart from
// this derivation, so the two cannot drift.
func (m *Manager) SetDate(date string) error {
	if date != "" && !models.ValidDate(date) {
		return fmt.Errorf("form: invalid date %q (want YYYY-MM-DD)", date)
	}
	m.values.Date = date
	m.values.DayOfWeek = models.WeekdayName(date)
	return nil
}

// SetGoal sets the training goal.
func (m *Manager) SetGoal(goal string) { m.values.Goal = goal }

// SetTimeOfDay sets the HH:MM time of day.
func (m *Manager) SetTimeOfDay(clock string) error {
	if clock != "" && !models.ValidClock(clock) {
		return fmt.Errorf("form: invalid time %q (want HH:MM)", clock)
	}
	m.values.TimeOfDay = clock
	return nil
}

// SetSessionNote sets the free-text session note.
func (m *Manager) SetSessionNote(note string) { m.values.SessionNote = note }

// SetHeartRateStart sets the starting heart rate from text input.
// The empty string coerces to 0, matching the web form's empty number box.
func (m *Manager) SetHeartRateStart(s string) error {
	n, err := coerceInt(s)
	if err != nil {
		return err
	}
	m.values.HeartRate.Start = n
	return nil
}

// SetHeartRateEnd sets the ending heart rate from text input.
func (m *Manager) SetHeartRateEnd(s string) error {
	n, err := coerceInt(s)
	if err != nil {
		return err
	}
	m.values.HeartRate.End = n
	return nil
}

func coerceInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("form: not a number: %q", s)
	}
	return n, nil
}

// AddExercise appends a blank exercise and returns its index.
func (m *Manager) AddExercise() int {
	m.values.Exercises = append(m.values.Exercises, models.Exercise{
		Sets: []models.Set{},
	})
	return len(m.values.Exercises) - 1
}

// ExercisePatch holds the exercise fields to merge; nil pointers leave
// the current value untouched.
type ExercisePatch struct {
	Name    *string
	Tempo   *string
	Rest    *int
	Comment *string
}

// UpdateExercise merges patch fields into the exercise at index i.
func (m *Manager) UpdateExercise(i int, patch ExercisePatch) error {
	if i < 0 || i >= len(m.values.Exercises) {
		return fmt.Errorf("%w: exercise %d of %d", ErrIndexOutOfRange, i, len(m.values.Exercises))
	}
	ex := &m.values.Exercises[i]
	if patch.Name != nil {
		ex.Name = *patch.Name
	}
	if patch.Tempo != nil {
		ex.Tempo = *patch.Tempo
	}
	if patch.Rest != nil {
		ex.Rest = *patch.Rest
	}
	if patch.Comment != nil {
		ex.Comment = *patch.Comment
	}
	return nil
}

// RemoveExercise deletes the exercise at index i. Later exercises shift
// down one position; their relative order is untouched.
func (m *Manager) RemoveExercise(i int) error {
	if i < 0 || i >= len(m.values.Exercises) {
		return fmt.Errorf("%w: exercise %d of %d", ErrIndexOutOfRange, i, len(m.values.Exercises))
	}
	m.values.Exercises = append(m.values.Exercises[:i], m.values.Exercises[i+1:]...)
	return nil
}

// AddSet appends a zero set to the exercise at index i and returns the
// new set's index within that exercise.
func (m *Manager) AddSet(i int) (int, error) {
	if i < 0 || i >= len(m.values.Exercises) {
		return 0, fmt.Errorf("%w: exercise %d of %d", ErrIndexOutOfRange, i, len(m.values.Exercises))
	}
	ex := &m.values.Exercises[i]
	ex.Sets = append(ex.Sets, models.Set{})
	return len(ex.Sets) - 1, nil
}

// SetPatch holds the set fields to merge; nil pointers leave the current
// value untouched.
type SetPatch struct {
	Reps    *int
	Weight  *float64
	Comment *string
}

// UpdateSet merges patch fields into set j of exercise i.
func (m *Manager) UpdateSet(i, j int, patch SetPatch) error {
	if i < 0 || i >= len(m.values.Exercises) {
		return fmt.Errorf("%w: exercise %d of %d", ErrIndexOutOfRange, i, len(m.values.Exercises))
	}
	ex := &m.values.Exercises[i]
	if j < 0 || j >= len(ex.Sets) {
		return fmt.Errorf("%w: set %d of %d", ErrIndexOutOfRange, j, len(ex.Sets))
	}
	set := &ex.Sets[j]
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	if patch.Comment != nil {
		set.Comment = *patch.Comment
	}
	return nil
}

// RemoveSet deletes set j of exercise i, preserving the order of the
// remaining sets.
func (m *Manager) RemoveSet(i, j int) error {
	if i < 0 || i >= len(m.values.Exercises) {
		return fmt.Errorf("%w: exercise %d of %d", ErrIndexOutOfRange, i, len(m.values.Exercises))
	}
	ex := &m.values.Exercises[i]
	if j < 0 || j >= len(ex.Sets) {
		return fmt.Errorf("%w: set %d of %d", ErrIndexOutOfRange, j, len(ex.Sets))
	}
	ex.Sets = append(ex.Sets[:j], ex.Sets[j+1:]...)
	return nil
}

// Validate runs the submission schema against the current values without
// mutating them.
func (m *Manager) Validate() Violations {
	return ValidateValues(m.values)
}

// Submit saves the current values through the service: POST for a new
// session, PUT for an existing one. On success the manager's state is
// replaced by the service's canonical record (including the assigned id);
// on failure the draft is left exactly as it was.
func (m *Manager) Submit(ctx context.Context, client Submitter) (*models.TrainingSession, error) {
	var (
		saved *models.TrainingSession
		err   error
	)
	if m.id == "" {
		saved, err = client.CreateTraining(ctx, m.values)
	} else {
		saved, err = client.UpdateTraining(ctx, m.id, m.values)
	}
	if err != nil {
		return nil, err
	}
	m.id = saved.ID
	m.values = clone(saved.Values())
	return saved, nil
}
