package core

import (
	"context"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// RemoteDatabase is the task store as seen by the state modules. Every
// method scopes its work to the logged-in user and reports expected
// failures as *models.DataError.
type RemoteDatabase interface {
	// LoadTasks returns up to one page of tasks strictly older than cursor,
	// newest first. An empty cursor starts at the newest task.
	LoadTasks(ctx context.Context, cursor string) ([]models.Task, error)
	AddTask(ctx context.Context, description, startTime, endTime string) error
	UpdateTask(ctx context.Context, id, description, startTime, endTime string) error
	DeleteTask(ctx context.Context, id string) error
}

// UserAuthentication is the authentication service as seen by the state
// modules.
type UserAuthentication interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	SignUp(ctx context.Context, email, password string) error
	// UserLogged returns the email of the logged-in user, or "" when
	// nobody is logged in.
	UserLogged(ctx context.Context) (string, error)
}

// TaskDocumentStore is the document store underneath RemoteDatabase.
// This interface is defined locally in core so fakes need not touch disk.
type TaskDocumentStore interface {
	Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
	Insert(ctx context.Context, task models.Task) error
	Update(ctx context.Context, userID, id string, fields models.TaskFields) error
	Delete(ctx context.Context, userID, id string) error
	TaskIDLister
}

// TaskIDLister lists existing task IDs that start with a prefix.
type TaskIDLister interface {
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
