package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/claude/pumplog/internal/form"
	"github.com/claude/pumplog/internal/models"
	"github.com/claude/pumplog/internal/state"
	"gopkg.in/yaml.v3"
)

const draftUsage = `Usage: pumplog draft <subcommand> [flags]

  new                                      start an empty draft
  edit <id>                                start a draft from a saved session
  import -file <path>                      start a draft from a YAML document
  set [-date -time -goal -note -hr-start -hr-end]
  add-exercise [-name -tempo -rest -comment]
  set-exercise -i N [-name -tempo -rest -comment]
  remove-exercise -i N
  add-set -i N [-reps -weight -comment]
  set-set -i N -j M [-reps -weight -comment]
  remove-set -i N -j M
  show                                     print the draft
  validate                                 run the submission schema
  submit                                   save to the service
  discard                                  drop the draft
`

func (a *app) cmdDraft(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, draftUsage)
		return fmt.Errorf("draft: subcommand required")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "new":
		return a.draftNew()
	case "edit":
		return a.draftEdit(rest)
	case "import":
		return a.draftImport(rest)
	case "set":
		return a.draftSet(rest)
	case "add-exercise":
		return a.draftAddExercise(rest)
	case "set-exercise":
		return a.draftSetExercise(rest)
	case "remove-exercise":
		return a.draftRemoveExercise(rest)
	case "add-set":
		return a.draftAddSet(rest)
	case "set-set":
		return a.draftSetSet(rest)
	case "remove-set":
		return a.draftRemoveSet(rest)
	case "show":
		return a.draftShow()
	case "validate":
		return a.draftValidate()
	case "submit":
		return a.draftSubmit()
	case "discard":
		return a.draftDiscard()
	default:
		fmt.Fprint(os.Stderr, draftUsage)
		return fmt.Errorf("draft: unknown subcommand %q", cmd)
	}
}

// currentManager loads the current draft into a form manager.
func (a *app) currentManager() (*state.Draft, *form.Manager, error) {
	d, err := a.st.CurrentDraft()
	if errors.Is(err, state.ErrNoDraft) {
		return nil, nil, fmt.Errorf("no draft in progress: run `pumplog draft new` first")
	}
	if err != nil {
		return nil, nil, err
	}
	m := form.Edit(d.Values.Session(d.SessionID))
	return d, m, nil
}

func (a *app) saveDraft(d *state.Draft, m *form.Manager) error {
	return a.st.UpdateDraft(d.ID, m.Values())
}

func (a *app) draftNew() error {
	m := form.New()
	d, err := a.st.CreateDraft("", m.Values())
	if err != nil {
		return err
	}
	fmt.Println("Started draft", d.ID)
	return nil
}

func (a *app) draftEdit(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pumplog draft edit <id>")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	s, err := a.client.GetTraining(context.Background(), args[0])
	if err != nil {
		return err
	}
	d, err := a.st.CreateDraft(s.ID, s.Values())
	if err != nil {
		return err
	}
	fmt.Printf("Started draft %s from session %s\n", d.ID, s.ID)
	return nil
}

// draftImport seeds a draft from a YAML session document, the CLI's
// bulk-entry counterpart of filling the whole web form at once. Keys
// follow the wire names (date, timeOfDay, goal, heartRate, exercises,
// sessionNote); dayOfWeek is derived, never read.
func (a *app) draftImport(args []string) error {
	fs := flag.NewFlagSet("draft import", flag.ExitOnError)
	file := fs.String("file", "", "path to YAML session document")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("draft import: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *file, err)
	}

	// Route through JSON so the document shares the wire field names.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", *file, err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting %s: %w", *file, err)
	}
	var values models.FormValues
	if err := json.Unmarshal(jsonData, &values); err != nil {
		return fmt.Errorf("decoding %s: %w", *file, err)
	}

	m := form.New()
	m.Load(values)
	d, err := a.st.CreateDraft("", m.Values())
	if err != nil {
		return err
	}
	fmt.Printf("Started draft %s from %s\n", d.ID, *file)
	return nil
}

func (a *app) draftSet(args []string) error {
	fs := flag.NewFlagSet("draft set", flag.ExitOnError)
	date := fs.String("date", "", "session date (YYYY-MM-DD, empty clears)")
	clock := fs.String("time", "", "time of day (HH:MM)")
	goal := fs.String("goal", "", "training goal")
	note := fs.String("note", "", "session note")
	hrStart := fs.String("hr-start", "", "starting heart rate")
	hrEnd := fs.String("hr-end", "", "ending heart rate")
	fs.Parse(args)

	given := visited(fs)
	if len(given) == 0 {
		return fmt.Errorf("draft set: no fields given")
	}

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}

	if given["date"] {
		if err := m.SetDate(*date); err != nil {
			return err
		}
	}
	if given["time"] {
		if err := m.SetTimeOfDay(*clock); err != nil {
			return err
		}
		if *clock != "" && !models.ClockOnGrid(*clock) {
			a.log.Warn("time is off the 15-minute grid", "time", *clock)
		}
	}
	if given["goal"] {
		m.SetGoal(*goal)
	}
	if given["note"] {
		m.SetSessionNote(*note)
	}
	if given["hr-start"] {
		if err := m.SetHeartRateStart(*hrStart); err != nil {
			return err
		}
	}
	if given["hr-end"] {
		if err := m.SetHeartRateEnd(*hrEnd); err != nil {
			return err
		}
	}
	return a.saveDraft(d, m)
}

func (a *app) draftAddExercise(args []string) error {
	fs := flag.NewFlagSet("draft add-exercise", flag.ExitOnError)
	name := fs.String("name", "", "exercise name")
	tempo := fs.String("tempo", "", "tempo notation (e.g. 3-1-1)")
	rest := fs.Int("rest", 0, "rest between sets, seconds")
	comment := fs.String("comment", "", "exercise comment")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}

	i := m.AddExercise()
	if err := m.UpdateExercise(i, exercisePatch(fs, name, tempo, rest, comment)); err != nil {
		return err
	}
	if err := a.saveDraft(d, m); err != nil {
		return err
	}
	fmt.Println("Added exercise", i)
	return nil
}

func (a *app) draftSetExercise(args []string) error {
	fs := flag.NewFlagSet("draft set-exercise", flag.ExitOnError)
	i := fs.Int("i", -1, "exercise index")
	name := fs.String("name", "", "exercise name")
	tempo := fs.String("tempo", "", "tempo notation")
	rest := fs.Int("rest", 0, "rest between sets, seconds")
	comment := fs.String("comment", "", "exercise comment")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	if err := m.UpdateExercise(*i, exercisePatch(fs, name, tempo, rest, comment)); err != nil {
		return err
	}
	return a.saveDraft(d, m)
}

func (a *app) draftRemoveExercise(args []string) error {
	fs := flag.NewFlagSet("draft remove-exercise", flag.ExitOnError)
	i := fs.Int("i", -1, "exercise index")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	if err := m.RemoveExercise(*i); err != nil {
		return err
	}
	return a.saveDraft(d, m)
}

func (a *app) draftAddSet(args []string) error {
	fs := flag.NewFlagSet("draft add-set", flag.ExitOnError)
	i := fs.Int("i", -1, "exercise index")
	reps := fs.Int("reps", 0, "repetitions")
	weight := fs.Float64("weight", 0, "weight")
	comment := fs.String("comment", "", "set comment")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}

	j, err := m.AddSet(*i)
	if err != nil {
		return err
	}
	if err := m.UpdateSet(*i, j, setPatch(fs, reps, weight, comment)); err != nil {
		return err
	}
	if err := a.saveDraft(d, m); err != nil {
		return err
	}
	fmt.Printf("Added set %d to exercise %d\n", j, *i)
	return nil
}

func (a *app) draftSetSet(args []string) error {
	fs := flag.NewFlagSet("draft set-set", flag.ExitOnError)
	i := fs.Int("i", -1, "exercise index")
	j := fs.Int("j", -1, "set index")
	reps := fs.Int("reps", 0, "repetitions")
	weight := fs.Float64("weight", 0, "weight")
	comment := fs.String("comment", "", "set comment")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	if err := m.UpdateSet(*i, *j, setPatch(fs, reps, weight, comment)); err != nil {
		return err
	}
	return a.saveDraft(d, m)
}

func (a *app) draftRemoveSet(args []string) error {
	fs := flag.NewFlagSet("draft remove-set", flag.ExitOnError)
	i := fs.Int("i", -1, "exercise index")
	j := fs.Int("j", -1, "set index")
	fs.Parse(args)

	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	if err := m.RemoveSet(*i, *j); err != nil {
		return err
	}
	return a.saveDraft(d, m)
}

func (a *app) draftShow() error {
	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	printSession(m.Values().Session(d.SessionID))
	return nil
}

func (a *app) draftValidate() error {
	_, m, err := a.currentManager()
	if err != nil {
		return err
	}
	vs := m.Validate()
	if vs.OK() {
		fmt.Println("Draft is ready to submit.")
		return nil
	}
	for _, v := range vs {
		fmt.Printf("  %s: %s\n", v.Field, v.Message)
	}
	return fmt.Errorf("draft has %d validation error(s)", len(vs))
}

func (a *app) draftSubmit() error {
	d, m, err := a.currentManager()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if vs := m.Validate(); !vs.OK() {
		for _, v := range vs {
			fmt.Printf("  %s: %s\n", v.Field, v.Message)
		}
		return fmt.Errorf("draft has %d validation error(s)", len(vs))
	}

	saved, err := m.Submit(context.Background(), a.client)
	if err != nil {
		return err
	}
	if err := a.st.DeleteDraft(d.ID); err != nil {
		a.log.Warn("draft saved but not cleaned up", "draft", d.ID, "error", err)
	}
	fmt.Println("Saved session", saved.ID)
	return nil
}

func (a *app) draftDiscard() error {
	d, err := a.st.CurrentDraft()
	if errors.Is(err, state.ErrNoDraft) {
		return fmt.Errorf("no draft in progress")
	}
	if err != nil {
		return err
	}
	if err := a.st.DeleteDraft(d.ID); err != nil {
		return err
	}
	fmt.Println("Discarded draft", d.ID)
	return nil
}

// visited returns the set of flags explicitly provided on the command
// line, so that unset flags leave the corresponding field untouched.
func visited(fs *flag.FlagSet) map[string]bool {
	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })
	return given
}

func exercisePatch(fs *flag.FlagSet, name, tempo *string, rest *int, comment *string) form.ExercisePatch {
	given := visited(fs)
	var p form.ExercisePatch
	if given["name"] {
		p.Name = name
	}
	if given["tempo"] {
		p.Tempo = tempo
	}
	if given["rest"] {
		p.Rest = rest
	}
	if given["comment"] {
		p.Comment = comment
	}
	return p
}

func setPatch(fs *flag.FlagSet, reps *int, weight *float64, comment *string) form.SetPatch {
	given := visited(fs)
	var p form.SetPatch
	if given["reps"] {
		p.Reps = reps
	}
	if given["weight"] {
		p.Weight = weight
	}
	if given["comment"] {
		p.Comment = comment
	}
	return p
}
