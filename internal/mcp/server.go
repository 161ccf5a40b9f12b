// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the to-do list as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Server wraps the task store and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	store       core.TaskStore
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over store. metricsCalc and alertEngine
// may be nil if the event journal is disabled.
func NewServer(store core.TaskStore, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:       store,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "todo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	Position  int    `json:"position,omitempty"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"which tasks to list: all, active or completed. Defaults to all."`
}

type listTasksOutput struct {
	Tasks          []taskOutput `json:"tasks"`
	Count          int          `json:"count"`
	ActiveCount    int          `json:"active_count"`
	CompletedCount int          `json:"completed_count"`
	TotalCount     int          `json:"total_count"`
}

type addTaskInput struct {
	Title string `json:"title" jsonschema:"the task title; surrounding whitespace is trimmed"`
}

type taskRefInput struct {
	Ref string `json:"ref" jsonschema:"the task's position in list_tasks (unfiltered) or an id prefix of at least 4 characters"`
}

type renameTaskInput struct {
	Ref   string `json:"ref" jsonschema:"the task's position in list_tasks (unfiltered) or an id prefix of at least 4 characters"`
	Title string `json:"title" jsonschema:"the new title; an empty title deletes the task"`
}

type changeOutput struct {
	Message     string      `json:"message"`
	Task        *taskOutput `json:"task,omitempty"`
	ActiveCount int         `json:"active_count"`
	TotalCount  int         `json:"total_count"`
}

type clearCompletedInput struct{}

type getStatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for stats (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type statsOutput struct {
	TasksAdded     int            `json:"tasks_added"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksRenamed   int            `json:"tasks_renamed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksCleared   int            `json:"tasks_cleared"`
	PersistErrors  int            `json:"persist_errors"`
	FilterChanges  map[string]int `json:"filter_changes"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks newest first with an optional filter (all, active, completed). Counts always cover the whole list.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Add a task to the top of the list. Blank titles are ignored.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_task",
		Description: "Flip a task between active and completed.",
	}, s.handleToggleTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rename_task",
		Description: "Change a task's title. An empty title deletes the task.",
	}, s.handleRenameTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "clear_completed",
		Description: "Delete every completed task.",
	}, s.handleClearCompleted)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Get activity counts from the event journal: tasks added, completed, renamed, deleted and failed saves.",
	}, s.handleGetStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (failed saves, stale tasks, too many active tasks).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter := models.FilterAll
	if strings.TrimSpace(input.Filter) != "" {
		f, err := models.ParseFilter(input.Filter)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{Tasks: []taskOutput{}}, nil
		}
		filter = f
	}

	all := s.store.Tasks()
	snap := s.store.Snapshot()
	out := listTasksOutput{
		Tasks:          []taskOutput{},
		ActiveCount:    snap.ActiveCount,
		CompletedCount: snap.CompletedCount,
		TotalCount:     snap.TotalCount,
	}
	for i, t := range all {
		if filter.Matches(t) {
			out.Tasks = append(out.Tasks, taskToOutput(i+1, t))
		}
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, changeOutput, error) {
	before := s.store.Snapshot()
	snap := s.store.AddTask(input.Title)
	if snap.Version == before.Version {
		return errorResult("title is required"), changeOutput{}, nil
	}

	added := taskToOutput(1, s.store.Tasks()[0])
	return nil, changeOutput{
		Message:     fmt.Sprintf("added %q", added.Title),
		Task:        &added,
		ActiveCount: snap.ActiveCount,
		TotalCount:  snap.TotalCount,
	}, nil
}

func (s *Server) handleToggleTask(_ context.Context, _ *gomcp.CallToolRequest, input taskRefInput) (*gomcp.CallToolResult, changeOutput, error) {
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, changeOutput{}, nil
	}

	snap := s.store.ToggleTask(task.ID)
	task.Completed = !task.Completed
	state := "active"
	if task.Completed {
		state = "completed"
	}
	out := taskToOutput(0, task)
	return nil, changeOutput{
		Message:     fmt.Sprintf("marked %q %s", task.Title, state),
		Task:        &out,
		ActiveCount: snap.ActiveCount,
		TotalCount:  snap.TotalCount,
	}, nil
}

func (s *Server) handleRenameTask(_ context.Context, _ *gomcp.CallToolRequest, input renameTaskInput) (*gomcp.CallToolResult, changeOutput, error) {
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, changeOutput{}, nil
	}

	snap := s.store.RenameTask(task.ID, input.Title)
	renamed, ok := s.store.Get(task.ID)
	if !ok {
		return nil, changeOutput{
			Message:     fmt.Sprintf("deleted %q", task.Title),
			ActiveCount: snap.ActiveCount,
			TotalCount:  snap.TotalCount,
		}, nil
	}
	out := taskToOutput(0, renamed)
	return nil, changeOutput{
		Message:     fmt.Sprintf("renamed %q to %q", task.Title, renamed.Title),
		Task:        &out,
		ActiveCount: snap.ActiveCount,
		TotalCount:  snap.TotalCount,
	}, nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskRefInput) (*gomcp.CallToolResult, changeOutput, error) {
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, changeOutput{}, nil
	}

	snap := s.store.DeleteTask(task.ID)
	return nil, changeOutput{
		Message:     fmt.Sprintf("deleted %q", task.Title),
		ActiveCount: snap.ActiveCount,
		TotalCount:  snap.TotalCount,
	}, nil
}

func (s *Server) handleClearCompleted(_ context.Context, _ *gomcp.CallToolRequest, _ clearCompletedInput) (*gomcp.CallToolResult, changeOutput, error) {
	before := s.store.Snapshot()
	snap := s.store.ClearCompleted()
	return nil, changeOutput{
		Message:     fmt.Sprintf("cleared %d completed task(s)", before.TotalCount-snap.TotalCount),
		ActiveCount: snap.ActiveCount,
		TotalCount:  snap.TotalCount,
	}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, input getStatsInput) (*gomcp.CallToolResult, statsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("stats not available (event journal may be disabled)"), emptyStatsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyStatsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating stats: %s", err)), emptyStatsOutput(), nil
	}

	out := statsOutput{
		TasksAdded:     metrics.TasksAdded,
		TasksCompleted: metrics.TasksCompleted,
		TasksReopened:  metrics.TasksReopened,
		TasksRenamed:   metrics.TasksRenamed,
		TasksDeleted:   metrics.TasksDeleted,
		TasksCleared:   metrics.TasksCleared,
		PersistErrors:  metrics.PersistErrors,
		FilterChanges:  metrics.FilterChanges,
		EventCount:     metrics.EventCount,
	}
	if out.FilterChanges == nil {
		out.FilterChanges = make(map[string]int)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (event journal may be disabled)"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// resolve finds the task for ref. Positions count over the unfiltered list
// so they match list_tasks without a filter.
func (s *Server) resolve(ref string) (models.Task, *gomcp.CallToolResult) {
	all := s.store.Tasks()
	view := models.Snapshot{Filter: models.FilterAll, Filtered: all}
	task, err := core.ResolveRef(view, all, ref)
	if err != nil {
		return models.Task{}, errorResult(err.Error())
	}
	return task, nil
}

// taskToOutput converts a task; position 0 omits the position.
func taskToOutput(position int, t models.Task) taskOutput {
	return taskOutput{
		Position:  position,
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
	}
}

func emptyStatsOutput() statsOutput {
	return statsOutput{FilterChanges: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
