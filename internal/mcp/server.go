// Package mcp exposes the training log to MCP clients over stdio. The
// binary runs locally; the data lives on the remote training service,
// reached through the same API client the CLI uses.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/pumplog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TrainingSource abstracts the training service for MCP tools.
// Satisfied by *api.Client.
type TrainingSource interface {
	ListTrainings(ctx context.Context) ([]models.TrainingSession, error)
	GetTraining(ctx context.Context, id string) (*models.TrainingSession, error)
	CreateTraining(ctx context.Context, values models.FormValues) (*models.TrainingSession, error)
	UpdateTraining(ctx context.Context, id string, values models.FormValues) (*models.TrainingSession, error)
	DeleteTraining(ctx context.Context, id string) error
}

// New creates an MCP server with all tools and resources registered.
func New(ts TrainingSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("pumplog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Training session log. List, filter, inspect, log, and delete the user's training sessions. All data is scoped to the authenticated user."),
	)

	h := &handlers{ts: ts, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolLogSession, Handler: h.logSession},
		server.ServerTool{Tool: toolDeleteSession, Handler: h.deleteSession},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ts  TrainingSource
	log *slog.Logger
}

var resRecentSessions = mcp.NewResource(
	"pumplog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Training sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
