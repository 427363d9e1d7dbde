package core

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

func newTestTaskList(limit int, tasks ...models.Task) (*TaskList, *fakeRemoteDatabase, *fakeAuth) {
	db := newFakeRemoteDatabase(limit, tasks...)
	auth := &fakeAuth{email: "ana@example.com"}
	return NewTaskList(db, auth, nil, limit), db, auth
}

func TestTaskList_RefreshLoadsFirstPage(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(3)...)
	defer l.Close()

	l.OnAction(RefreshTasks{})
	l.Wait()

	s := l.State()
	if s.Loading {
		t.Error("expected loading to be false")
	}
	if len(s.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(s.Tasks))
	}
	if s.Tasks[0].ID != "task-003" {
		t.Errorf("expected newest task first, got %s", s.Tasks[0].ID)
	}
	if s.CanLoadMore {
		t.Error("expected canLoadMore false for a short page")
	}
	if s.User != "ana" {
		t.Errorf("expected user ana, got %q", s.User)
	}
	want := []string{"Activity 2", "Activity 1", "Activity 0"}
	if !reflect.DeepEqual(s.Descriptions, want) {
		t.Errorf("expected descriptions %v, got %v", want, s.Descriptions)
	}
}

func TestTaskList_FullPageAllowsLoadMore(t *testing.T) {
	l, db, _ := newTestTaskList(2, seedTasks(3)...)
	defer l.Close()

	l.OnAction(RefreshTasks{})
	l.Wait()
	if !l.State().CanLoadMore {
		t.Fatal("expected canLoadMore after a full page")
	}

	l.OnAction(LoadMoreTasks{})
	l.Wait()

	s := l.State()
	if len(s.Tasks) != 3 || s.CanLoadMore || s.LoadingMore {
		t.Fatalf("unexpected state after load more: %d tasks, canLoadMore=%v, loadingMore=%v",
			len(s.Tasks), s.CanLoadMore, s.LoadingMore)
	}
	if db.cursors[1] != stampFor(2) {
		t.Errorf("expected cursor %s, got %s", stampFor(2), db.cursors[1])
	}
}

func TestTaskList_RefreshError(t *testing.T) {
	l, db, _ := newTestTaskList(50)
	defer l.Close()
	db.loadErr = models.NewDataError(models.CodeRemoteStore, "offline")

	l.OnAction(RefreshTasks{})
	l.Wait()

	s := l.State()
	if s.Loading {
		t.Error("expected loading to be false after failure")
	}
	if s.Alert == nil || s.Alert.Error == nil {
		t.Fatal("expected error alert")
	}
	if s.Alert.Error.Text.Key != errorKey(models.CodeRemoteStore) || s.Alert.Error.Detail != "offline" {
		t.Errorf("unexpected alert %+v", s.Alert.Error)
	}

	l.OnAction(DismissAlert{})
	if l.State().Alert != nil {
		t.Error("expected alert to be dismissed")
	}
}

func TestTaskList_LoadMoreErrorKeepsTasks(t *testing.T) {
	l, db, _ := newTestTaskList(2, seedTasks(5)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	db.mu.Lock()
	db.loadErr = models.NewDataError(models.CodeRemoteStore, "boom")
	db.mu.Unlock()
	l.OnAction(LoadMoreTasks{})
	l.Wait()

	s := l.State()
	if len(s.Tasks) != 2 {
		t.Errorf("expected loaded tasks kept, got %d", len(s.Tasks))
	}
	if s.Alert == nil || s.Alert.Error == nil {
		t.Error("expected error alert")
	}
	if s.LoadingMore {
		t.Error("expected loadingMore cleared")
	}
}

func TestTaskList_LoadMoreGuardIssuesOneFetch(t *testing.T) {
	l, db, _ := newTestTaskList(2, seedTasks(6)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	gate := make(chan struct{})
	db.mu.Lock()
	db.pagedGate = gate
	db.mu.Unlock()

	l.OnAction(LoadMoreTasks{})
	if !l.State().LoadingMore {
		t.Fatal("expected loadingMore to be set synchronously")
	}
	l.OnAction(LoadMoreTasks{})
	l.OnAction(LoadMoreTasks{})
	close(gate)
	l.Wait()

	if got := db.calls(); got != 2 {
		t.Fatalf("expected 2 fetches (refresh + one load more), got %d", got)
	}
	s := l.State()
	if len(s.Tasks) != 4 {
		t.Errorf("expected 4 tasks, got %d", len(s.Tasks))
	}
	seen := make(map[string]bool)
	for _, task := range s.Tasks {
		if seen[task.ID] {
			t.Fatalf("task %s duplicated", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskList_StaleLoadMoreDiscardedAfterRefresh(t *testing.T) {
	l, db, _ := newTestTaskList(2, seedTasks(6)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	gate := make(chan struct{})
	db.mu.Lock()
	db.pagedGate = gate
	db.mu.Unlock()

	l.OnAction(LoadMoreTasks{})
	l.OnAction(RefreshTasks{})
	waitFor(t, l.State, func(s TaskListState) bool { return !s.Loading })
	close(gate)
	l.Wait()

	s := l.State()
	if len(s.Tasks) != 2 {
		t.Fatalf("expected only the refreshed page, got %v", taskIDs(s.Tasks))
	}
	if s.LoadingMore {
		t.Error("expected loadingMore cleared")
	}
	if !s.CanLoadMore {
		t.Error("expected canLoadMore after refreshed full page")
	}
}

func TestTaskList_LoadMoreAfterFilterKeepsFilter(t *testing.T) {
	l, db, _ := newTestTaskList(2, seedTasks(6)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	gate := make(chan struct{})
	db.mu.Lock()
	db.pagedGate = gate
	db.mu.Unlock()

	l.OnAction(LoadMoreTasks{})
	l.OnAction(FilterByDate{Date: "2026-01-07"})
	if got := taskIDs(l.State().Tasks); len(got) != 1 || got[0] != "task-006" {
		t.Fatalf("expected [task-006] before the page lands, got %v", got)
	}
	close(gate)
	l.Wait()

	s := l.State()
	if s.FilterDate != "2026-01-07" {
		t.Errorf("expected filter kept, got %q", s.FilterDate)
	}
	if s.CanLoadMore {
		t.Error("expected canLoadMore false while filtering")
	}
	got := taskIDs(s.Tasks)
	if len(got) != 2 || got[0] != "task-006" || got[1] != "task-003" {
		t.Errorf("expected [task-006 task-003], got %v", got)
	}
	for _, task := range s.Tasks {
		if !strings.Contains(task.StartTime, "2026-01-07") {
			t.Errorf("task %s (start %s) shown under filter", task.ID, task.StartTime)
		}
	}

	l.OnAction(ClearFilter{})
	s = l.State()
	if len(s.Tasks) != 4 {
		t.Errorf("expected both pages after clearing, got %v", taskIDs(s.Tasks))
	}
	if !s.CanLoadMore {
		t.Error("expected canLoadMore restored after a full page")
	}
}

func TestTaskList_FilterByDate(t *testing.T) {
	l, _, _ := newTestTaskList(4, seedTasks(4)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	l.OnAction(FilterByDate{Date: "2026-01-05"})
	s := l.State()
	if s.FilterDate != "2026-01-05" {
		t.Errorf("expected filter date set, got %q", s.FilterDate)
	}
	if s.CanLoadMore {
		t.Error("expected canLoadMore false while filtering")
	}
	for _, task := range s.Tasks {
		if task.StartTime[:10] != "2026-01-05" {
			t.Errorf("task %s does not match filter", task.ID)
		}
	}
	if len(s.Tasks) != 2 {
		t.Errorf("expected 2 matching tasks, got %v", taskIDs(s.Tasks))
	}

	l.OnAction(ClearFilter{})
	s = l.State()
	if len(s.Tasks) != 4 || s.FilterDate != "" {
		t.Errorf("expected filter cleared, got %d tasks, filter %q", len(s.Tasks), s.FilterDate)
	}
	if !s.CanLoadMore {
		t.Error("expected canLoadMore restored when all tasks reach the page limit")
	}
}

func TestTaskList_FilterBlankIsNoop(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(3)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	before := l.State()
	l.OnAction(FilterByDate{Date: "   "})
	after := l.State()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("expected blank filter to change nothing")
	}
}

func TestTaskList_DeleteRemovesExactlyOne(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(5)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	target := l.State().Tasks[2]
	l.OnAction(RequestDelete{Task: &target})
	if s := l.State(); !s.ShowDeleteDialog || s.ItemToDelete == nil || s.ItemToDelete.ID != target.ID {
		t.Fatalf("expected delete dialog for %s", target.ID)
	}

	l.OnAction(ConfirmDelete{})
	if s := l.State(); s.ShowDeleteDialog || s.ItemToDelete != nil {
		t.Error("expected dialog closed before the delete completes")
	}
	l.Wait()

	s := l.State()
	if len(s.Tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(s.Tasks))
	}
	for _, task := range s.Tasks {
		if task.ID == target.ID {
			t.Fatalf("task %s still displayed", target.ID)
		}
	}
	for _, task := range l.allTasks {
		if task.ID == target.ID {
			t.Fatalf("task %s still accumulated", target.ID)
		}
	}
	if len(l.allTasks) != 4 {
		t.Errorf("expected 4 accumulated tasks, got %d", len(l.allTasks))
	}
	if s.Alert == nil || s.Alert.Success == nil || s.Alert.Success.Key != MsgTaskDeleted {
		t.Errorf("expected success alert, got %+v", s.Alert)
	}
}

func TestTaskList_DeleteMissingLeavesListUnchanged(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(3)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()
	before := taskIDs(l.State().Tasks)

	l.OnAction(RequestDelete{Task: &models.Task{ID: "missing"}})
	l.OnAction(ConfirmDelete{})
	l.Wait()

	s := l.State()
	if !reflect.DeepEqual(taskIDs(s.Tasks), before) {
		t.Errorf("expected list unchanged, got %v", taskIDs(s.Tasks))
	}
	if s.Alert == nil || s.Alert.Error == nil {
		t.Fatal("expected error alert")
	}
	if s.Alert.Error.Detail != "Task not found" {
		t.Errorf("expected adapter message, got %q", s.Alert.Error.Detail)
	}
}

func TestTaskList_DeleteFailureKeepsTaskVisible(t *testing.T) {
	l, db, _ := newTestTaskList(50, seedTasks(2)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()
	db.mu.Lock()
	db.deleteErr = models.NewDataError(models.CodeRemoteStore, "denied")
	db.mu.Unlock()

	target := l.State().Tasks[0]
	l.OnAction(RequestDelete{Task: &target})
	l.OnAction(ConfirmDelete{})
	l.Wait()

	if got := len(l.State().Tasks); got != 2 {
		t.Errorf("expected task to stay visible, got %d tasks", got)
	}
}

func TestTaskList_RequestDeleteNilCancels(t *testing.T) {
	l, _, _ := newTestTaskList(50)
	defer l.Close()

	task := models.Task{ID: "x"}
	l.OnAction(RequestDelete{Task: &task})
	l.OnAction(RequestDelete{Task: nil})

	s := l.State()
	if s.ShowDeleteDialog || s.ItemToDelete != nil {
		t.Error("expected pending delete to be cleared")
	}

	l.OnAction(ConfirmDelete{})
	l.Wait()
	if l.State().Alert != nil {
		t.Error("expected confirm without a pending task to do nothing")
	}
}

func TestTaskList_LogoutNavigatesUp(t *testing.T) {
	l, _, auth := newTestTaskList(50)
	defer l.Close()

	l.OnAction(Logout{})
	if _, ok := nextEvent(t, l.Events()).(models.NavigateUp); !ok {
		t.Fatal("expected NavigateUp")
	}
	l.Wait()
	if email, _ := auth.UserLogged(context.Background()); email != "" {
		t.Errorf("expected session cleared, got %q", email)
	}
}

func TestTaskList_LogoutFailureShowsAlert(t *testing.T) {
	l, _, auth := newTestTaskList(50)
	defer l.Close()
	auth.logoutErr = models.NewDataError(models.CodeAuthLogout, "")

	l.OnAction(Logout{})
	l.Wait()

	expectNoEvent(t, l.Events())
	s := l.State()
	if s.Alert == nil || s.Alert.Error == nil || s.Alert.Error.Text.Key != errorKey(models.CodeAuthLogout) {
		t.Errorf("expected logout alert, got %+v", s.Alert)
	}
}

func TestTaskList_OpenAddTaskCarriesDescriptions(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(2)...)
	defer l.Close()
	l.OnAction(RefreshTasks{})
	l.Wait()

	l.OnAction(OpenAddTask{})
	nav, ok := nextEvent(t, l.Events()).(models.Navigate)
	if !ok {
		t.Fatal("expected Navigate")
	}
	route, ok := nav.Route.(models.AddTaskRoute)
	if !ok {
		t.Fatalf("expected AddTaskRoute, got %T", nav.Route)
	}
	if route.Suggestions != "Activity 1|||Activity 0" {
		t.Errorf("unexpected suggestions %q", route.Suggestions)
	}
}

func TestTaskList_OpenTaskCarriesFields(t *testing.T) {
	l, _, _ := newTestTaskList(50)
	defer l.Close()
	task := seedTasks(1)[0]

	l.OnAction(OpenTask{Task: task})
	nav := nextEvent(t, l.Events()).(models.Navigate)
	want := models.EditTaskRoute{
		TaskID:      task.ID,
		Description: task.Description,
		StartTime:   task.StartTime,
		EndTime:     task.EndTime,
	}
	if nav.Route != want {
		t.Errorf("expected %+v, got %+v", want, nav.Route)
	}
}

func TestTaskList_SubscribeSeesUpdates(t *testing.T) {
	l, _, _ := newTestTaskList(50, seedTasks(1)...)
	defer l.Close()
	states, cancel := l.Subscribe()
	defer cancel()

	if s := <-states; len(s.Tasks) != 0 {
		t.Fatalf("expected empty initial state, got %d tasks", len(s.Tasks))
	}
	l.OnAction(RefreshTasks{})
	l.Wait()

	s := <-states
	if len(s.Tasks) != 1 || s.Loading || s.User != "ana" {
		t.Errorf("expected latest snapshot, got %+v", s)
	}
}
