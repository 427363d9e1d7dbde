package observability

import (
	"fmt"
	"time"
)

// Metrics summarizes the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksImported  int            `json:"tasks_imported"`
	PagesLoaded    int            `json:"pages_loaded"`
	Logins         int            `json:"logins"`
	Logouts        int            `json:"logouts"`
	SignUps        int            `json:"sign_ups"`
	AuthFailures   int            `json:"auth_failures"`
	StoreFailures  int            `json:"store_failures"`
	FailuresByCode map[string]int `json:"failures_by_code"`
	ActiveUsers    int            `json:"active_users"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{FailuresByCode: make(map[string]int)}
	m.EventCount = len(events)
	users := make(map[string]struct{})

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		if user, ok := event.Data["user"].(string); ok && user != "" {
			users[user] = struct{}{}
		}

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.updated":
			m.TasksUpdated++
		case "task.deleted":
			m.TasksDeleted++
		case "task.imported":
			m.TasksImported += intValue(event.Data["count"])
		case "task.loaded":
			m.PagesLoaded++
		case "task.failed":
			m.StoreFailures++
		case "auth.login":
			m.Logins++
		case "auth.logout":
			m.Logouts++
		case "auth.signup":
			m.SignUps++
		case "auth.failed":
			m.AuthFailures++
		}

		if code, ok := event.Data["code"].(string); ok && code != "" {
			m.FailuresByCode[code]++
		}
	}

	m.ActiveUsers = len(users)
	return m, nil
}

// intValue reads a count that went through JSON, where numbers decode as
// float64.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
