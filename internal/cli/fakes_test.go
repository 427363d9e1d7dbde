package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// fakeDB is an in-memory core.RemoteDatabase holding tasks newest first.
type fakeDB struct {
	mu      sync.Mutex
	tasks   []models.Task
	loadErr error
	saveErr error
	added   []models.TaskFields
	updated map[string]models.TaskFields
	deleted []string
}

func (f *fakeDB) LoadTasks(_ context.Context, cursor string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var page []models.Task
	for _, t := range f.tasks {
		if cursor != "" && t.Timestamp >= cursor {
			continue
		}
		page = append(page, t)
		if len(page) == PageLimit {
			break
		}
	}
	return page, nil
}

func (f *fakeDB) AddTask(_ context.Context, description, startTime, endTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.added = append(f.added, models.TaskFields{Description: description, StartTime: startTime, EndTime: endTime})
	return nil
}

func (f *fakeDB) UpdateTask(_ context.Context, id, description, startTime, endTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.updated == nil {
		f.updated = make(map[string]models.TaskFields)
	}
	f.updated[id] = models.TaskFields{Description: description, StartTime: startTime, EndTime: endTime}
	return nil
}

func (f *fakeDB) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeAuth is an in-memory core.UserAuthentication.
type fakeAuth struct {
	mu        sync.Mutex
	email     string
	password  string
	loginErr  error
	signUpErr error
	signedUp  []string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return f.loginErr
	}
	f.email = email
	f.password = password
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = ""
	return nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.signedUp = append(f.signedUp, email)
	return nil
}

func (f *fakeAuth) UserLogged(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email, nil
}

// withServices installs db and auth as the package services for one test.
func withServices(t *testing.T, db *fakeDB, auth *fakeAuth, pageLimit int) {
	t.Helper()
	origDB, origAuth, origLimit, origLogger, origLoc := DB, Auth, PageLimit, Logger, Localizer
	t.Cleanup(func() {
		DB, Auth, PageLimit, Logger, Localizer = origDB, origAuth, origLimit, origLogger, origLoc
	})
	DB = db
	Auth = auth
	PageLimit = pageLimit
	Logger = nil
	Localizer = nil
}

// runCmd runs cmd's RunE with stdin as input and returns what it printed.
func runCmd(t *testing.T, cmd *cobra.Command, args []string, stdin string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	defer func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		cmd.SetIn(nil)
	}()
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// sampleTasks returns n tasks for ana, newest first, one hour each.
func sampleTasks(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		k := n - i
		tasks[i] = models.Task{
			ID:          fmt.Sprintf("20260106%03d", k),
			UserID:      "ana@example.com",
			Description: fmt.Sprintf("Task %d", k),
			Timestamp:   fmt.Sprintf("2026-01-06T13:00:00.%09dZ", k),
			StartTime:   fmt.Sprintf("2026-01-0%dT%02d:00:00-03:00", 5+k%2, 8+k),
			EndTime:     fmt.Sprintf("2026-01-0%dT%02d:00:00-03:00", 5+k%2, 9+k),
		}
	}
	return tasks
}
