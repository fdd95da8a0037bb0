package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/pumplog/internal/filter"
	"github.com/claude/pumplog/internal/form"
	"github.com/claude/pumplog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List training sessions, optionally filtered. Filters combine with AND; omitted filters match everything. Returns sessions in the order the service stores them."),
	mcp.WithString("from", mcp.Description("Earliest session date, inclusive (YYYY-MM-DD)")),
	mcp.WithString("to", mcp.Description("Latest session date, inclusive (YYYY-MM-DD)")),
	mcp.WithString("day", mcp.Description("Weekday name (Sunday..Saturday), or 'any'"), mcp.Enum("any", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday")),
	mcp.WithString("exercise", mcp.Description("Case-insensitive substring matched against exercise names (e.g. 'squat')")),
	mcp.WithString("goal", mcp.Description("Case-insensitive substring matched against the session goal")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Fetch one training session by id, including every exercise and set."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

var toolLogSession = mcp.NewTool("log_session",
	mcp.WithDescription("Log a new training session. Takes a JSON document with date (YYYY-MM-DD), timeOfDay (HH:MM), goal, heartRate {start,end}, sessionNote, and exercises, each with name, tempo, rest, and sets of {reps, weight, comment}. dayOfWeek is derived from the date and must not be supplied. The document is validated against the submission schema before anything is sent."),
	mcp.WithString("session", mcp.Required(), mcp.Description("Session document as a JSON string")),
)

var toolDeleteSession = mcp.NewTool("delete_session",
	mcp.WithDescription("Delete a training session by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec := filter.Spec{
		DateFrom:  req.GetString("from", ""),
		DateTo:    req.GetString("to", ""),
		DayOfWeek: req.GetString("day", ""),
		Exercise:  req.GetString("exercise", ""),
		Goal:      req.GetString("goal", ""),
	}
	if spec.DayOfWeek != "" && spec.DayOfWeek != filter.DayAny && !models.IsDayName(spec.DayOfWeek) {
		return mcp.NewToolResultError("day must be a weekday name or 'any'"), nil
	}

	sessions, err := h.ts.ListTrainings(ctx)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(filter.Apply(sessions, spec))
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	session, err := h.ts.GetTraining(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session", "id", id, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session)
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) logSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("session")
	if err != nil {
		return mcp.NewToolResultError("session parameter is required"), nil
	}

	var values models.FormValues
	if err := json.Unmarshal([]byte(doc), &values); err != nil {
		return mcp.NewToolResultError("invalid session JSON: " + err.Error()), nil
	}

	// Same path as the CLI: derive the weekday, then gate on the schema.
	m := form.New()
	m.Load(values)
	if vs := m.Validate(); !vs.OK() {
		return mcp.NewToolResultError("session rejected: " + vs.String()), nil
	}

	saved, err := m.Submit(ctx, h.ts)
	if err != nil {
		h.log.Error("mcp log_session", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(saved)
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) deleteSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	if err := h.ts.DeleteTraining(ctx, id); err != nil {
		h.log.Error("mcp delete_session", "id", id, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"deleted": id})
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ts.ListTrainings(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -14).Format(models.DateLayout)
	recent := filter.Apply(sessions, filter.Spec{DateFrom: cutoff})

	data, err := json.Marshal(recent)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
