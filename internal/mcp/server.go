// Package mcp exposes the SkillPulse task store as MCP (Model Context
// Protocol) tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/internal/observability"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// Server wraps the task services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	db          core.RemoteDatabase
	auth        core.UserAuthentication
	localizer   *core.Localizer
	pageLimit   int
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// Deps are the services behind the tools. MetricsCalc and AlertEngine may
// be nil when observability is disabled.
type Deps struct {
	DB          core.RemoteDatabase
	Auth        core.UserAuthentication
	Localizer   *core.Localizer
	PageLimit   int
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
}

// NewServer creates an MCP server over deps.
func NewServer(deps Deps, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if deps.PageLimit <= 0 {
		deps.PageLimit = models.DefaultPageLimit
	}
	if deps.Localizer == nil {
		deps.Localizer, _ = core.NewLocalizer("en")
	}

	s := &Server{
		db:          deps.DB,
		auth:        deps.Auth,
		localizer:   deps.Localizer,
		pageLimit:   deps.PageLimit,
		metricsCalc: deps.MetricsCalc,
		alertEngine: deps.AlertEngine,
	}
	s.server = gomcp.NewServer(&gomcp.Implementation{Name: "pulse", Version: version}, nil)
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Timestamp   string `json:"timestamp"`
}

type listTasksInput struct {
	Cursor string `json:"cursor,omitempty" jsonschema:"next_cursor from a previous call; empty for the newest tasks"`
	Date   string `json:"date,omitempty" jsonschema:"only return tasks whose start time contains this text (e.g. 2026-01-06)"`
}

type listTasksOutput struct {
	Tasks      []taskOutput `json:"tasks"`
	Count      int          `json:"count"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type addTaskInput struct {
	Description string `json:"description" jsonschema:"what was done"`
	StartTime   string `json:"start_time" jsonschema:"RFC 3339 start time with offset (e.g. 2026-01-06T10:00:00-03:00)"`
	EndTime     string `json:"end_time" jsonschema:"RFC 3339 end time with offset"`
}

type updateTaskInput struct {
	TaskID      string `json:"task_id" jsonschema:"the task ID returned by list_tasks"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type deleteTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task ID returned by list_tasks"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type whoamiInput struct{}

type whoamiOutput struct {
	Email    string `json:"email,omitempty"`
	LoggedIn bool   `json:"logged_in"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksImported  int            `json:"tasks_imported"`
	PagesLoaded    int            `json:"pages_loaded"`
	Logins         int            `json:"logins"`
	AuthFailures   int            `json:"auth_failures"`
	StoreFailures  int            `json:"store_failures"`
	FailuresByCode map[string]int `json:"failures_by_code"`
	ActiveUsers    int            `json:"active_users"`
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
		Description: "List the logged-in user's tasks newest first, one page at a time. Pass next_cursor back to get the following page.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Record a task with a description, start time, and end time.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Replace the description and times of an existing task.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task by ID.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "whoami",
		Description: "Report the email of the logged-in user.",
	}, s.handleWhoami)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get usage and failure counts from the event log.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (repeated auth or store failures, full disk).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	page, err := s.db.LoadTasks(ctx, input.Cursor)
	if err != nil {
		return s.failure(err), listTasksOutput{}, nil
	}

	out := listTasksOutput{}
	if len(page) == s.pageLimit {
		out.NextCursor = page[len(page)-1].Timestamp
	}
	if strings.TrimSpace(input.Date) != "" {
		page = core.FilterTasksByDate(page, input.Date)
	}

	out.Tasks = make([]taskOutput, len(page))
	out.Count = len(page)
	for i, t := range page {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleAddTask(ctx context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if msg, ok := core.ValidateTaskFields(input.Description, input.StartTime, input.EndTime); !ok {
		return errorResult(s.localizer.Text(msg)), messageOutput{}, nil
	}
	if err := s.db.AddTask(ctx, input.Description, input.StartTime, input.EndTime); err != nil {
		return s.failure(err), messageOutput{}, nil
	}
	return nil, messageOutput{Message: s.localizer.Text(models.Resource(core.MsgTaskAdded))}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	if err := s.db.UpdateTask(ctx, input.TaskID, input.Description, input.StartTime, input.EndTime); err != nil {
		return s.failure(err), messageOutput{}, nil
	}
	return nil, messageOutput{Message: s.localizer.Text(models.Resource(core.MsgTaskUpdated))}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input deleteTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	if err := s.db.DeleteTask(ctx, input.TaskID); err != nil {
		return s.failure(err), messageOutput{}, nil
	}
	return nil, messageOutput{Message: s.localizer.Text(models.Resource(core.MsgTaskDeleted))}, nil
}

func (s *Server) handleWhoami(ctx context.Context, _ *gomcp.CallToolRequest, _ whoamiInput) (*gomcp.CallToolResult, whoamiOutput, error) {
	email, err := s.auth.UserLogged(ctx)
	if err != nil {
		return s.failure(err), whoamiOutput{}, nil
	}
	return nil, whoamiOutput{Email: email, LoggedIn: email != ""}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksUpdated:   metrics.TasksUpdated,
		TasksDeleted:   metrics.TasksDeleted,
		TasksImported:  metrics.TasksImported,
		PagesLoaded:    metrics.PagesLoaded,
		Logins:         metrics.Logins,
		AuthFailures:   metrics.AuthFailures,
		StoreFailures:  metrics.StoreFailures,
		FailuresByCode: metrics.FailuresByCode,
		ActiveUsers:    metrics.ActiveUsers,
		EventCount:     metrics.EventCount,
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
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
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

func taskToOutput(t models.Task) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Description: t.Description,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Timestamp:   t.Timestamp,
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{FailuresByCode: make(map[string]int)}
}

// failure renders an adapter error the way the UI would show it, with the
// error code in brackets.
func (s *Server) failure(err error) *gomcp.CallToolResult {
	text := s.localizer.Alert(models.ErrorAlert(core.ErrorText(models.CodeOf(err)), models.MessageOf(err)))
	return errorResult(fmt.Sprintf("[%s] %s", models.CodeOf(err), text))
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a duration such as "7d", "30d", or "24h" into the
// instant that far before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
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
