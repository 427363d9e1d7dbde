package models

// Route identifies a destination a state module asks the caller to open.
type Route interface {
	route()
}

// TaskListRoute opens the task list.
type TaskListRoute struct{}

// AddTaskRoute opens the add flow. Suggestions holds previously used
// descriptions joined by SuggestionSeparator.
type AddTaskRoute struct {
	Suggestions string
}

// EditTaskRoute opens the edit flow seeded with an existing task.
type EditTaskRoute struct {
	TaskID      string
	Description string
	StartTime   string
	EndTime     string
}

func (TaskListRoute) route() {}
func (AddTaskRoute) route()  {}
func (EditTaskRoute) route() {}

// UiEvent is a one-shot signal emitted by a state module, distinct from its
// persistent state.
type UiEvent interface {
	uiEvent()
}

// Navigate asks the caller to open Route.
type Navigate struct {
	Route Route
}

// NavigateUp asks the caller to leave the current screen.
type NavigateUp struct{}

func (Navigate) uiEvent()   {}
func (NavigateUp) uiEvent() {}
