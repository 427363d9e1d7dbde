package core

import (
	"context"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// EditTaskState is the observable state of the edit flow. TaskID never
// changes.
type EditTaskState struct {
	TaskID      string
	Description string
	StartTime   string
	EndTime     string
	Loading     bool
	Alert       *models.MessageAlert
}

// EditTaskAction is an input to EditTask.OnAction.
type EditTaskAction interface {
	editTaskAction()
}

func (DescriptionChanged) editTaskAction() {}
func (StartTimeChanged) editTaskAction()   {}
func (EndTimeChanged) editTaskAction()     {}
func (SaveTask) editTaskAction()           {}
func (NavigateBack) editTaskAction()       {}
func (DismissAlert) editTaskAction()       {}

// EditTask holds the fields of an existing task being modified.
type EditTask struct {
	*screen[EditTaskState]
	db RemoteDatabase
}

// NewEditTask creates an EditTask seeded from route. logger may be nil.
func NewEditTask(db RemoteDatabase, logger EventLogger, route models.EditTaskRoute) *EditTask {
	initial := EditTaskState{
		TaskID:      route.TaskID,
		Description: route.Description,
		StartTime:   route.StartTime,
		EndTime:     route.EndTime,
	}
	return &EditTask{
		screen: newScreen(initial, logger),
		db:     db,
	}
}

// OnAction applies action.
func (m *EditTask) OnAction(action EditTaskAction) {
	switch a := action.(type) {
	case DescriptionChanged:
		m.update(func(s EditTaskState) EditTaskState {
			s.Description = a.Value
			return s
		})
	case StartTimeChanged:
		m.update(func(s EditTaskState) EditTaskState {
			s.StartTime = a.Value
			return s
		})
	case EndTimeChanged:
		m.update(func(s EditTaskState) EditTaskState {
			s.EndTime = a.Value
			return s
		})
	case SaveTask:
		m.save()
	case NavigateBack:
		m.emit(models.NavigateUp{})
	case DismissAlert:
		m.update(func(s EditTaskState) EditTaskState {
			s.Alert = nil
			return s
		})
	}
}

func (m *EditTask) save() {
	var (
		submit bool
		target EditTaskState
	)
	m.update(func(s EditTaskState) EditTaskState {
		if s.Loading {
			return s
		}
		submit = true
		target = s
		s.Loading = true
		return s
	})
	if !submit {
		return
	}

	m.launch(func(ctx context.Context) {
		err := m.db.UpdateTask(ctx, target.TaskID, target.Description, target.StartTime, target.EndTime)
		m.update(func(s EditTaskState) EditTaskState {
			s.Loading = false
			if err != nil {
				s.Alert = errorAlert(err)
			} else {
				s.Alert = models.SuccessAlert(models.Resource(MsgTaskUpdated))
			}
			return s
		})
		if err == nil {
			m.emit(models.NavigateUp{})
		}
	})
}
