package core

import "github.com/valter-silva-au/skillpulse/pkg/models"

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// failureData builds the event payload logged when an operation fails.
func failureData(op string, err error) map[string]any {
	return map[string]any{
		"op":    op,
		"code":  string(models.CodeOf(err)),
		"error": err.Error(),
	}
}
