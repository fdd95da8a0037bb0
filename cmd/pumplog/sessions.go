package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/claude/pumplog/internal/filter"
	"github.com/claude/pumplog/internal/mcp"
	"github.com/claude/pumplog/internal/models"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	from := fs.String("from", "", "earliest date, inclusive (YYYY-MM-DD)")
	to := fs.String("to", "", "latest date, inclusive (YYYY-MM-DD)")
	day := fs.String("day", filter.DayAny, "weekday name, or 'any'")
	exercise := fs.String("exercise", "", "substring matched against exercise names")
	goal := fs.String("goal", "", "substring matched against the session goal")
	fs.Parse(args)

	if *day != filter.DayAny && !models.IsDayName(*day) {
		return fmt.Errorf("list: -day must be a weekday name or %q", filter.DayAny)
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	sessions, err := a.client.ListTrainings(context.Background())
	if err != nil {
		return err
	}

	matched := filter.Apply(sessions, filter.Spec{
		DateFrom:  *from,
		DateTo:    *to,
		DayOfWeek: *day,
		Exercise:  *exercise,
		Goal:      *goal,
	})

	if len(matched) == 0 {
		fmt.Println("No sessions logged yet.")
		return nil
	}
	for _, s := range matched {
		names := make([]string, len(s.Exercises))
		for i, ex := range s.Exercises {
			names[i] = ex.Name
		}
		fmt.Printf("%s  %s %-9s  %-20s  %s\n",
			s.ID, s.Date, s.DayOfWeek, s.Goal, strings.Join(names, ", "))
	}
	return nil
}

func (a *app) cmdShow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pumplog show <id>")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	s, err := a.client.GetTraining(context.Background(), args[0])
	if err != nil {
		return err
	}
	printSession(*s)
	return nil
}

func (a *app) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pumplog delete <id>")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if err := a.client.DeleteTraining(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}

func (a *app) cmdMCP() error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	s := mcp.New(a.client, Version, a.log)
	return mcpserver.ServeStdio(s)
}

func printSession(s models.TrainingSession) {
	if s.ID != "" {
		fmt.Println("Session", s.ID)
	} else {
		fmt.Println("Session (unsaved)")
	}
	fmt.Printf("  Date:       %s (%s)", s.Date, s.DayOfWeek)
	if s.TimeOfDay != "" {
		fmt.Printf(" at %s", s.TimeOfDay)
	}
	fmt.Println()
	fmt.Printf("  Goal:       %s\n", s.Goal)
	fmt.Printf("  Heart rate: %d -> %d\n", s.HeartRate.Start, s.HeartRate.End)
	if s.SessionNote != "" {
		fmt.Printf("  Note:       %s\n", s.SessionNote)
	}
	for i, ex := range s.Exercises {
		fmt.Printf("  [%d] %s  tempo %s  rest %ds", i, ex.Name, ex.Tempo, ex.Rest)
		if ex.Comment != "" {
			fmt.Printf("  (%s)", ex.Comment)
		}
		fmt.Println()
		for j, set := range ex.Sets {
			fmt.Printf("      [%d] %d x %.1f", j, set.Reps, set.Weight)
			if set.Comment != "" {
				fmt.Printf("  (%s)", set.Comment)
			}
			fmt.Println()
		}
	}
}
