package core

import (
	"context"
	"strings"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// AddTaskState is the observable state of the add flow.
type AddTaskState struct {
	Description     string
	StartTime       string
	EndTime         string
	Suggestions     []string
	ShowSuggestions bool
	Loading         bool
	Alert           *models.MessageAlert
}

// AddTaskAction is an input to AddTask.OnAction.
type AddTaskAction interface {
	addTaskAction()
}

// DescriptionChanged sets the description field.
type DescriptionChanged struct{ Value string }

// StartTimeChanged sets the start time field.
type StartTimeChanged struct{ Value string }

// EndTimeChanged sets the end time field.
type EndTimeChanged struct{ Value string }

// SuggestionSelected replaces the description with a suggestion.
type SuggestionSelected struct{ Value string }

// DismissSuggestions hides the suggestion list.
type DismissSuggestions struct{}

// SaveTask submits the fields.
type SaveTask struct{}

// NavigateBack leaves the screen without saving.
type NavigateBack struct{}

func (DescriptionChanged) addTaskAction() {}
func (StartTimeChanged) addTaskAction()   {}
func (EndTimeChanged) addTaskAction()     {}
func (SuggestionSelected) addTaskAction() {}
func (DismissSuggestions) addTaskAction() {}
func (SaveTask) addTaskAction()           {}
func (NavigateBack) addTaskAction()       {}
func (DismissAlert) addTaskAction()       {}

// AddTask holds the fields of a task being created.
type AddTask struct {
	*screen[AddTaskState]
	db RemoteDatabase
}

// NewAddTask creates an AddTask seeded with the suggestions carried by
// route. logger may be nil.
func NewAddTask(db RemoteDatabase, logger EventLogger, route models.AddTaskRoute) *AddTask {
	initial := AddTaskState{Suggestions: ParseSuggestions(route.Suggestions)}
	return &AddTask{
		screen: newScreen(initial, logger),
		db:     db,
	}
}

// OnAction applies action.
func (m *AddTask) OnAction(action AddTaskAction) {
	switch a := action.(type) {
	case DescriptionChanged:
		m.update(func(s AddTaskState) AddTaskState {
			s.Description = a.Value
			s.ShowSuggestions = MatchesSuggestion(a.Value, s.Suggestions)
			return s
		})
	case StartTimeChanged:
		m.update(func(s AddTaskState) AddTaskState {
			s.StartTime = a.Value
			return s
		})
	case EndTimeChanged:
		m.update(func(s AddTaskState) AddTaskState {
			s.EndTime = a.Value
			return s
		})
	case SuggestionSelected:
		m.update(func(s AddTaskState) AddTaskState {
			s.Description = a.Value
			s.ShowSuggestions = false
			return s
		})
	case DismissSuggestions:
		m.update(func(s AddTaskState) AddTaskState {
			s.ShowSuggestions = false
			return s
		})
	case SaveTask:
		m.save()
	case NavigateBack:
		m.emit(models.NavigateUp{})
	case DismissAlert:
		m.update(func(s AddTaskState) AddTaskState {
			s.Alert = nil
			return s
		})
	}
}

func (m *AddTask) save() {
	var (
		submit bool
		fields models.TaskFields
	)
	m.update(func(s AddTaskState) AddTaskState {
		if s.Loading {
			return s
		}
		if msg, ok := ValidateTaskFields(s.Description, s.StartTime, s.EndTime); !ok {
			s.Alert = models.ErrorAlert(msg, "")
			return s
		}
		submit = true
		fields = models.TaskFields{Description: s.Description, StartTime: s.StartTime, EndTime: s.EndTime}
		s.Loading = true
		return s
	})
	if !submit {
		return
	}

	m.launch(func(ctx context.Context) {
		err := m.db.AddTask(ctx, fields.Description, fields.StartTime, fields.EndTime)
		m.update(func(s AddTaskState) AddTaskState {
			s.Loading = false
			if err != nil {
				s.Alert = errorAlert(err)
			} else {
				s.Alert = models.SuccessAlert(models.Resource(MsgTaskAdded))
			}
			return s
		})
		if err == nil {
			m.emit(models.NavigateUp{})
		}
	})
}

// ValidateTaskFields checks description, start time, and end time in that
// order and returns the message for the first blank one.
func ValidateTaskFields(description, startTime, endTime string) (models.UiText, bool) {
	switch {
	case strings.TrimSpace(description) == "":
		return models.Resource(MsgDescriptionRequired), false
	case strings.TrimSpace(startTime) == "":
		return models.Resource(MsgStartTimeRequired), false
	case strings.TrimSpace(endTime) == "":
		return models.Resource(MsgEndTimeRequired), false
	}
	return models.UiText{}, true
}

// ParseSuggestions splits a route parameter into its non-blank
// descriptions.
func ParseSuggestions(joined string) []string {
	var out []string
	for _, s := range strings.Split(joined, models.SuggestionSeparator) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchesSuggestion reports whether input is non-blank and occurs,
// ignoring case, in at least one suggestion.
func MatchesSuggestion(input string, suggestions []string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	needle := strings.ToLower(input)
	for _, s := range suggestions {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// FilterSuggestions returns the suggestions that contain input, ignoring
// case.
func FilterSuggestions(input string, suggestions []string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	needle := strings.ToLower(input)
	var out []string
	for _, s := range suggestions {
		if strings.Contains(strings.ToLower(s), needle) {
			out = append(out, s)
		}
	}
	return out
}
