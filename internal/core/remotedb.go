package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/valter-silva-au/skillpulse/internal/storage"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// UnknownUser owns tasks written while nobody is logged in.
const UnknownUser = "unknown"

// maxIDAttempts bounds how often AddTask retries after an ID collision.
const maxIDAttempts = 3

// storeRemoteDatabase implements RemoteDatabase over a TaskDocumentStore,
// scoping every call to the user reported by UserAuthentication.
type storeRemoteDatabase struct {
	store     TaskDocumentStore
	auth      UserAuthentication
	ids       TaskIDGenerator
	clock     *stampClock
	pageLimit int
	logger    EventLogger

	// addMu serializes ID generation and insert within this process.
	addMu sync.Mutex
}

// NewRemoteDatabase creates a RemoteDatabase. logger may be nil.
func NewRemoteDatabase(store TaskDocumentStore, auth UserAuthentication, ids TaskIDGenerator, logger EventLogger, pageLimit int) RemoteDatabase {
	return newRemoteDatabase(store, auth, ids, logger, pageLimit, nil)
}

func newRemoteDatabase(store TaskDocumentStore, auth UserAuthentication, ids TaskIDGenerator, logger EventLogger, pageLimit int, now func() time.Time) *storeRemoteDatabase {
	if pageLimit <= 0 {
		pageLimit = models.DefaultPageLimit
	}
	return &storeRemoteDatabase{
		store:     store,
		auth:      auth,
		ids:       ids,
		clock:     newStampClock(now),
		pageLimit: pageLimit,
		logger:    logger,
	}
}

func (r *storeRemoteDatabase) currentUser(ctx context.Context) (string, error) {
	email, err := r.auth.UserLogged(ctx)
	if err != nil {
		return "", err
	}
	if email == "" {
		return UnknownUser, nil
	}
	return email, nil
}

func (r *storeRemoteDatabase) LoadTasks(ctx context.Context, cursor string) ([]models.Task, error) {
	user, err := r.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := r.store.Find(ctx, models.TaskQuery{UserID: user, After: cursor, Limit: r.pageLimit})
	if err != nil {
		return nil, r.fail("load", err)
	}
	r.logEvent("task.loaded", map[string]any{"user": user, "count": len(tasks), "paged": cursor != ""})
	return tasks, nil
}

func (r *storeRemoteDatabase) AddTask(ctx context.Context, description, startTime, endTime string) error {
	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	r.addMu.Lock()
	defer r.addMu.Unlock()

	for attempt := 1; ; attempt++ {
		id, err := r.ids.NextTaskID(ctx, startTime)
		if err != nil {
			return r.fail("add", err)
		}

		task := models.Task{
			ID:          id,
			UserID:      user,
			Description: description,
			Timestamp:   r.clock.Stamp(),
			StartTime:   startTime,
			EndTime:     endTime,
		}
		err = r.store.Insert(ctx, task)
		if err == nil {
			r.logEvent("task.created", map[string]any{"task_id": id, "user": user})
			return nil
		}
		if !errors.Is(err, storage.ErrDuplicate) || attempt == maxIDAttempts {
			return r.fail("add", err)
		}
	}
}

func (r *storeRemoteDatabase) UpdateTask(ctx context.Context, id, description, startTime, endTime string) error {
	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	fields := models.TaskFields{Description: description, StartTime: startTime, EndTime: endTime}
	if err := r.store.Update(ctx, user, id, fields); err != nil {
		return r.fail("update", err)
	}
	r.logEvent("task.updated", map[string]any{"task_id": id, "user": user})
	return nil
}

func (r *storeRemoteDatabase) DeleteTask(ctx context.Context, id string) error {
	user, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, user, id); err != nil {
		return r.fail("delete", err)
	}
	r.logEvent("task.deleted", map[string]any{"task_id": id, "user": user})
	return nil
}

// fail wraps a store error as a DataError and logs it. A full disk keeps
// its own code; everything else is a remote-store failure.
func (r *storeRemoteDatabase) fail(op string, err error) error {
	code := models.CodeRemoteStore
	if errors.Is(err, syscall.ENOSPC) {
		code = models.CodeDiskFull
	}
	de := models.WrapDataError(code, fmt.Errorf("%s task: %w", op, err))
	r.logEvent("task.failed", failureData(op, de))
	return de
}

func (r *storeRemoteDatabase) logEvent(eventType string, data map[string]any) {
	if r.logger != nil {
		_ = r.logger.LogEvent(eventType, data)
	}
}
