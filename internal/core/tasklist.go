package core

import (
	"context"
	"strings"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// TaskListState is the observable state of the task list.
type TaskListState struct {
	Loading bool
	Alert   *models.MessageAlert
	// User is the display name of the logged-in user (the email's local part).
	User string
	// Tasks is the displayed set, newest first.
	Tasks []models.Task
	// Descriptions holds every distinct description loaded so far, in the
	// order first seen.
	Descriptions     []string
	ShowDeleteDialog bool
	ItemToDelete     *models.Task
	CanLoadMore      bool
	LoadingMore      bool
	FilterDate       string
}

// TaskListAction is an input to TaskList.OnAction.
type TaskListAction interface {
	taskListAction()
}

// RefreshTasks reloads the first page and the current user. It is sent on
// first display and every time the list regains focus.
type RefreshTasks struct{}

// LoadMoreTasks fetches the next page.
type LoadMoreTasks struct{}

// FilterByDate shows only tasks whose start time contains Date.
type FilterByDate struct {
	Date string
}

// ClearFilter shows every loaded task again.
type ClearFilter struct{}

// RequestDelete opens the delete confirmation for Task. A nil Task
// cancels it.
type RequestDelete struct {
	Task *models.Task
}

// ConfirmDelete deletes the task awaiting confirmation.
type ConfirmDelete struct{}

// Logout ends the session.
type Logout struct{}

// OpenTask asks to edit Task.
type OpenTask struct {
	Task models.Task
}

// OpenAddTask asks to create a task.
type OpenAddTask struct{}

// DismissAlert clears the current alert. It is accepted by every module.
type DismissAlert struct{}

func (RefreshTasks) taskListAction()  {}
func (LoadMoreTasks) taskListAction() {}
func (FilterByDate) taskListAction()  {}
func (ClearFilter) taskListAction()   {}
func (RequestDelete) taskListAction() {}
func (ConfirmDelete) taskListAction() {}
func (Logout) taskListAction()        {}
func (OpenTask) taskListAction()      {}
func (OpenAddTask) taskListAction()   {}
func (DismissAlert) taskListAction()  {}

// TaskList owns the logged-in user's tasks: paging, date filtering, and
// two-phase deletion.
type TaskList struct {
	*screen[TaskListState]

	db        RemoteDatabase
	auth      UserAuthentication
	pageLimit int

	// The fields below are only touched inside state updates.
	allTasks   []models.Task
	lastCursor string
	generation int
	// hasMore records whether the last page was full, so clearing a
	// filter can restore CanLoadMore.
	hasMore bool
}

// NewTaskList creates a TaskList. Nothing is loaded until RefreshTasks is
// dispatched. logger may be nil.
func NewTaskList(db RemoteDatabase, auth UserAuthentication, logger EventLogger, pageLimit int) *TaskList {
	if pageLimit <= 0 {
		pageLimit = models.DefaultPageLimit
	}
	return &TaskList{
		screen:    newScreen(TaskListState{}, logger),
		db:        db,
		auth:      auth,
		pageLimit: pageLimit,
	}
}

// OnAction applies action. State changes that need an adapter call happen
// when the call completes; use Wait to block until then.
func (l *TaskList) OnAction(action TaskListAction) {
	switch a := action.(type) {
	case RefreshTasks:
		l.refresh()
	case LoadMoreTasks:
		l.loadMore()
	case FilterByDate:
		l.filter(a.Date)
	case ClearFilter:
		l.clearFilter()
	case RequestDelete:
		l.requestDelete(a.Task)
	case ConfirmDelete:
		l.confirmDelete()
	case Logout:
		l.logout()
	case OpenTask:
		l.emit(models.Navigate{Route: models.EditTaskRoute{
			TaskID:      a.Task.ID,
			Description: a.Task.Description,
			StartTime:   a.Task.StartTime,
			EndTime:     a.Task.EndTime,
		}})
	case OpenAddTask:
		suggestions := strings.Join(l.State().Descriptions, models.SuggestionSeparator)
		l.emit(models.Navigate{Route: models.AddTaskRoute{Suggestions: suggestions}})
	case DismissAlert:
		l.update(func(s TaskListState) TaskListState {
			s.Alert = nil
			return s
		})
	}
}

func (l *TaskList) refresh() {
	var gen int
	l.update(func(s TaskListState) TaskListState {
		l.generation++
		gen = l.generation
		l.lastCursor = ""
		s.Loading = true
		return s
	})

	l.launch(func(ctx context.Context) {
		res := models.ResultOf(l.db.LoadTasks(ctx, ""))
		l.update(func(s TaskListState) TaskListState {
			if gen != l.generation {
				return s
			}
			s.Loading = false
			page, err := res.Get()
			if err != nil {
				s.Alert = errorAlert(err)
				return s
			}
			l.allTasks = cloneTasks(page)
			l.lastCursor = lastTimestamp(page, "")
			l.hasMore = len(page) == l.pageLimit
			s.Tasks = cloneTasks(page)
			s.Descriptions = mergeDescriptions(nil, page)
			s.CanLoadMore = l.hasMore
			s.FilterDate = ""
			return s
		})
	})

	l.launch(func(ctx context.Context) {
		res := models.ResultOf(l.auth.UserLogged(ctx))
		l.update(func(s TaskListState) TaskListState {
			email, err := res.Get()
			if err != nil {
				s.Alert = errorAlert(err)
				return s
			}
			s.User = displayName(email)
			return s
		})
	})
}

func (l *TaskList) loadMore() {
	var (
		start  bool
		cursor string
		gen    int
	)
	l.update(func(s TaskListState) TaskListState {
		if s.LoadingMore || !s.CanLoadMore {
			return s
		}
		start = true
		cursor = l.lastCursor
		gen = l.generation
		s.LoadingMore = true
		return s
	})
	if !start {
		return
	}

	l.launch(func(ctx context.Context) {
		res := models.ResultOf(l.db.LoadTasks(ctx, cursor))
		l.update(func(s TaskListState) TaskListState {
			s.LoadingMore = false
			if gen != l.generation {
				return s
			}
			page, err := res.Get()
			if err != nil {
				s.Alert = errorAlert(err)
				return s
			}
			l.allTasks = appendTasks(l.allTasks, page)
			l.lastCursor = lastTimestamp(page, l.lastCursor)
			l.hasMore = len(page) == l.pageLimit
			s.Descriptions = mergeDescriptions(s.Descriptions, page)
			if s.FilterDate != "" {
				s.Tasks = FilterTasksByDate(l.allTasks, s.FilterDate)
				s.CanLoadMore = false
				return s
			}
			s.Tasks = appendTasks(s.Tasks, page)
			s.CanLoadMore = l.hasMore
			return s
		})
	})
}

func (l *TaskList) filter(date string) {
	if strings.TrimSpace(date) == "" {
		return
	}
	l.update(func(s TaskListState) TaskListState {
		s.Tasks = FilterTasksByDate(l.allTasks, date)
		s.FilterDate = date
		s.CanLoadMore = false
		return s
	})
}

func (l *TaskList) clearFilter() {
	l.update(func(s TaskListState) TaskListState {
		s.Tasks = cloneTasks(l.allTasks)
		s.FilterDate = ""
		s.CanLoadMore = l.hasMore
		return s
	})
}

func (l *TaskList) requestDelete(task *models.Task) {
	l.update(func(s TaskListState) TaskListState {
		if task == nil {
			s.ShowDeleteDialog = false
			s.ItemToDelete = nil
			return s
		}
		t := *task
		s.ShowDeleteDialog = true
		s.ItemToDelete = &t
		return s
	})
}

func (l *TaskList) confirmDelete() {
	var target *models.Task
	l.update(func(s TaskListState) TaskListState {
		target = s.ItemToDelete
		s.ShowDeleteDialog = false
		s.ItemToDelete = nil
		return s
	})
	if target == nil {
		return
	}

	id := target.ID
	l.launch(func(ctx context.Context) {
		err := l.db.DeleteTask(ctx, id)
		l.update(func(s TaskListState) TaskListState {
			if err != nil {
				s.Alert = errorAlert(err)
				return s
			}
			l.allTasks = removeTask(l.allTasks, id)
			s.Tasks = removeTask(s.Tasks, id)
			s.Alert = models.SuccessAlert(models.Resource(MsgTaskDeleted))
			return s
		})
	})
}

func (l *TaskList) logout() {
	l.launch(func(ctx context.Context) {
		err := l.auth.Logout(ctx)
		l.update(func(s TaskListState) TaskListState {
			if err != nil {
				s.Alert = errorAlert(err)
			} else {
				s.Alert = nil
			}
			return s
		})
		if err != nil {
			l.logEvent("auth.failed", failureData("logout", err))
			return
		}
		l.logEvent("auth.logout", nil)
		l.emit(models.NavigateUp{})
	})
}

// FilterTasksByDate returns the tasks whose start time contains date,
// keeping their order.
func FilterTasksByDate(tasks []models.Task, date string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(t.StartTime, date) {
			out = append(out, t)
		}
	}
	return out
}

func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

// appendTasks returns a new slice so earlier snapshots stay unchanged.
func appendTasks(base, more []models.Task) []models.Task {
	out := make([]models.Task, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

func removeTask(tasks []models.Task, id string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func lastTimestamp(page []models.Task, fallback string) string {
	if len(page) == 0 {
		return fallback
	}
	return page[len(page)-1].Timestamp
}

func mergeDescriptions(existing []string, page []models.Task) []string {
	seen := make(map[string]bool, len(existing)+len(page))
	out := make([]string, 0, len(existing)+len(page))
	for _, d := range existing {
		seen[d] = true
		out = append(out, d)
	}
	for _, t := range page {
		if !seen[t.Description] {
			seen[t.Description] = true
			out = append(out, t.Description)
		}
	}
	return out
}
