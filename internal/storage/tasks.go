// Package storage persists tasks, users, and the login session.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

var (
	// ErrNotFound is returned when no record matches the given key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when inserting a record whose key exists.
	ErrDuplicate = errors.New("already exists")
)

// TaskStore is a document store of tasks keyed by ID.
// Update and Delete only match tasks owned by userID.
type TaskStore interface {
	Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
	Insert(ctx context.Context, task models.Task) error
	Update(ctx context.Context, userID, id string, fields models.TaskFields) error
	Delete(ctx context.Context, userID, id string) error
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Close(ctx context.Context) error
}

// sortNewestFirst orders tasks by timestamp descending, breaking ties by ID
// descending so pages are stable.
func sortNewestFirst(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Timestamp != tasks[j].Timestamp {
			return tasks[i].Timestamp > tasks[j].Timestamp
		}
		return tasks[i].ID > tasks[j].ID
	})
}

// pageTasks returns the page of tasks selected by q.
func pageTasks(tasks []models.Task, q models.TaskQuery) []models.Task {
	limit := q.Limit
	if limit <= 0 {
		limit = models.DefaultPageLimit
	}

	owned := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.UserID != q.UserID {
			continue
		}
		if q.After != "" && t.Timestamp >= q.After {
			continue
		}
		owned = append(owned, t)
	}
	sortNewestFirst(owned)

	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned
}
