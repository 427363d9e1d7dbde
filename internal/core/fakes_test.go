package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// fakeRemoteDatabase is an in-memory RemoteDatabase that pages newest
// first the way the real store does.
type fakeRemoteDatabase struct {
	mu    sync.Mutex
	tasks []models.Task
	limit int

	loadErr   error
	addErr    error
	updateErr error
	deleteErr error

	loadCalls int
	cursors   []string
	added     []models.TaskFields
	updated   []models.Task

	// pagedGate, when set, blocks LoadTasks calls that carry a cursor.
	pagedGate chan struct{}
}

func newFakeRemoteDatabase(limit int, tasks ...models.Task) *fakeRemoteDatabase {
	return &fakeRemoteDatabase{tasks: tasks, limit: limit}
}

func (f *fakeRemoteDatabase) LoadTasks(_ context.Context, cursor string) ([]models.Task, error) {
	f.mu.Lock()
	f.loadCalls++
	f.cursors = append(f.cursors, cursor)
	gate := f.pagedGate
	f.mu.Unlock()

	if gate != nil && cursor != "" {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}

	sorted := make([]models.Task, len(f.tasks))
	copy(sorted, f.tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp > sorted[j].Timestamp })

	var page []models.Task
	for _, t := range sorted {
		if cursor != "" && t.Timestamp >= cursor {
			continue
		}
		page = append(page, t)
		if len(page) == f.limit {
			break
		}
	}
	return page, nil
}

func (f *fakeRemoteDatabase) AddTask(_ context.Context, description, startTime, endTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, models.TaskFields{Description: description, StartTime: startTime, EndTime: endTime})
	f.tasks = append(f.tasks, models.Task{
		ID:          fmt.Sprintf("fake-%d", len(f.tasks)+1),
		Description: description,
		Timestamp:   stampFor(len(f.tasks) + 1000),
		StartTime:   startTime,
		EndTime:     endTime,
	})
	return nil
}

func (f *fakeRemoteDatabase) UpdateTask(_ context.Context, id, description, startTime, endTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Description = description
			f.tasks[i].StartTime = startTime
			f.tasks[i].EndTime = endTime
			f.updated = append(f.updated, f.tasks[i])
			return nil
		}
	}
	return models.NewDataError(models.CodeRemoteStore, "Task not found")
}

func (f *fakeRemoteDatabase) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return models.NewDataError(models.CodeRemoteStore, "Task not found")
}

func (f *fakeRemoteDatabase) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCalls
}

// fakeAuth is an in-memory UserAuthentication.
type fakeAuth struct {
	mu    sync.Mutex
	email string

	loginErr  error
	logoutErr error
	signUpErr error
	userErr   error

	logins  int
	signUps int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.email = email
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.email = ""
	return nil
}

func (f *fakeAuth) SignUp(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps++
	return f.signUpErr
}

func (f *fakeAuth) UserLogged(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return "", f.userErr
	}
	return f.email, nil
}

// recordingLogger keeps every logged event type.
type recordingLogger struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingLogger) LogEvent(eventType string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *recordingLogger) has(eventType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == eventType {
			return true
		}
	}
	return false
}

// stampFor returns a fixed-width timestamp that grows with n.
func stampFor(n int) string {
	return fmt.Sprintf("2026-01-06T13:00:00.%09dZ", n)
}

// seedTasks builds n tasks with distinct increasing timestamps, spread
// over three start dates.
func seedTasks(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{
			ID:          fmt.Sprintf("task-%03d", i+1),
			UserID:      "ana@example.com",
			Description: fmt.Sprintf("Activity %d", i%4),
			Timestamp:   stampFor(i + 1),
			StartTime:   fmt.Sprintf("2026-01-0%dT10:00:00-03:00", 5+i%3),
			EndTime:     fmt.Sprintf("2026-01-0%dT11:00:00-03:00", 5+i%3),
		}
	}
	return tasks
}

func nextEvent(t *testing.T, ch <-chan models.UiEvent) models.UiEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func expectNoEvent(t *testing.T, ch <-chan models.UiEvent) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("expected no event, got %#v", e)
	default:
	}
}

// waitFor polls get until cond holds.
func waitFor[S any](t *testing.T, get func() S, cond func(S) bool) S {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := get()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for state, last %+v", s)
		}
		time.Sleep(time.Millisecond)
	}
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
