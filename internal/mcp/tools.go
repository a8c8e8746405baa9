package mcp

import (
	"context"
	"strings"

	"github.com/claude/rangelog/internal/models"
	"github.com/claude/rangelog/internal/stats"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List all stored practice sessions with their dates, shot counts, available clubs and per-session metric bounds."),
)

var toolGetSessionShots = mcp.NewTool("get_session_shots",
	mcp.WithDescription("Retrieve every shot of one session with its raw metric values and the session's unit labels."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID, as returned by list_sessions")),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Per-club progression of a metric over time: for each club, the per-session average of the metric sorted chronologically."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name from the allowlist (e.g. \"Carry Distance\", \"Club Speed\")")),
	mcp.WithString("clubs", mcp.Description("Optional comma-separated club filter (e.g. \"Driver,7 Iron\"). Empty includes all clubs.")),
)

var toolGetGlobalStats = mcp.NewTool("get_global_stats",
	mcp.WithDescription("Global min/max bounds per metric across all stored shots, plus the full set of observed club types."),
)

var toolListMetrics = mcp.NewTool("list_metrics",
	mcp.WithDescription("List the metric names eligible for bounds and progression queries."),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.store.ListSessions(ctx)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionShots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("session_id is not a valid UUID"), nil
	}

	session, err := h.store.GetSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("session not found: " + idStr), nil
	}
	shots, err := h.store.SessionShots(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session_shots", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"session": session,
		"shots":   shots,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}

	var clubs []string
	for _, c := range strings.Split(req.GetString("clubs", ""), ",") {
		if c = strings.TrimSpace(c); c != "" {
			clubs = append(clubs, c)
		}
	}

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	summary, err := stats.ProgressionSummary(snap.Sessions, snap.Shots, metric, clubs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getGlobalStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_global_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats.GlobalStats(snap.Shots))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(models.MetricAllowlist)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
