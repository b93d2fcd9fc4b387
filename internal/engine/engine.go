package engine

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "task-sync.com/task-sync/internal/errors"
	model "task-sync.com/task-sync/internal/models"
	"task-sync.com/task-sync/internal/storage"
)

// LocalStore is the always-available on-device store.
type LocalStore interface {
	Load(userKey string) []model.Task
	Save(userKey string, tasks []model.Task) error
}

// RemoteStore is the networked store of record.
type RemoteStore interface {
	FetchAll(ctx context.Context, userID string) ([]model.Task, error)
	PushAll(ctx context.Context, userID string, tasks []model.Task) error
	DeleteOne(ctx context.Context, userID, taskID string) error
}

// ReminderScheduler keeps at most one pending reminder per task id.
type ReminderScheduler interface {
	Schedule(task model.Task)
	Cancel(taskID string)
}

// Engine owns the in-memory task collection for the current session and
// mediates every mutation through the local and remote stores and the
// reminder schedule. Mutations are applied under one mutex, so the
// collection has a single logical writer; everything past the in-memory
// update runs as a detached background write.
type Engine struct {
	local          LocalStore
	remote         RemoteStore
	reminders      ReminderScheduler
	reminderOffset time.Duration

	mu           sync.Mutex
	sess         *session
	connectivity connectivityState

	wg sync.WaitGroup
}

func New(
	local LocalStore,
	remote RemoteStore,
	reminders ReminderScheduler,
	reminderOffset time.Duration,
) *Engine {
	return &Engine{
		local:          local,
		remote:         remote,
		reminders:      reminders,
		reminderOffset: reminderOffset,
	}
}

// Initialize starts a fresh session for an identity (empty userID means
// guest), replacing any previous session and cancelling its reminders. The
// local collection is loaded before Initialize returns; reconciliation
// against the remote store runs in the background once connectivity allows.
func (e *Engine) Initialize(userID string) {
	e.mu.Lock()
	if e.sess != nil {
		for _, task := range e.sess.tasks {
			e.reminders.Cancel(task.ID)
		}
	}
	sess := &session{
		id:     uuid.NewString(),
		userID: userID,
	}
	e.sess = sess
	e.mu.Unlock()

	tasks := e.local.Load(storage.UserKeyFor(userID))

	e.mu.Lock()
	if e.sess != sess {
		// superseded by a newer Initialize while loading
		e.mu.Unlock()
		return
	}
	sess.tasks = tasks
	sess.localLoaded = true
	e.mu.Unlock()

	log.Printf("session %s: loaded %d tasks from local store", sess.id, len(tasks))

	e.maybeReconcile(sess)
}

func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	if online {
		e.connectivity = connectivityOnline
	} else {
		e.connectivity = connectivityOffline
	}
	sess := e.sess
	e.mu.Unlock()

	if online && sess != nil {
		e.maybeReconcile(sess)
	}
}

// maybeReconcile runs the one-time local/remote reconciliation when every
// precondition holds: identity known, local load complete, online, and not
// yet reconciled this session. The latch advances before the attempt so a
// failure never causes a retry storm.
func (e *Engine) maybeReconcile(sess *session) {
	e.mu.Lock()
	if e.sess != sess ||
		sess.reconciled ||
		!sess.localLoaded ||
		sess.userID == "" ||
		e.connectivity != connectivityOnline {
		e.mu.Unlock()
		return
	}
	sess.reconciled = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.reconcile(sess)
	}()
}

func (e *Engine) reconcile(sess *session) {
	ctx := context.Background()

	remoteTasks, err := e.remote.FetchAll(ctx, sess.userID)
	if err != nil {
		log.Printf("session %s: reconciliation fetch failed: %v", sess.id, err)
		return
	}

	// The in-memory collection is captured here, not at trigger time: a
	// mutation landing between local load and this point is overwritten by
	// a non-empty remote collection (last writer at the collection level).
	e.mu.Lock()
	if e.sess != sess {
		e.mu.Unlock()
		return
	}
	local := copyTasks(sess.tasks)
	if len(remoteTasks) > 0 {
		sess.tasks = copyTasks(remoteTasks)
	}
	e.mu.Unlock()

	switch {
	case len(remoteTasks) > 0:
		log.Printf("session %s: reconciled from remote (%d tasks)", sess.id, len(remoteTasks))
		e.saveLocal(storage.UserKeyFor(sess.userID), remoteTasks)
	case len(local) > 0:
		if err := e.remote.PushAll(ctx, sess.userID, local); err != nil {
			log.Printf("session %s: reconciliation push failed: %v", sess.id, err)
			return
		}
		log.Printf("session %s: pushed %d local tasks to remote", sess.id, len(local))
	}
}

// Submit creates a task, or updates the one named by editingID. The title
// is required after trimming. An edit keeps the task's existing reminder
// time; only a task without one is assigned now+offset. Completed tasks
// cannot be edited.
func (e *Engine) Submit(title, description, editingID string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, apperrors.ErrEmptyTitle
	}

	e.mu.Lock()
	sess := e.sess
	if sess == nil {
		e.mu.Unlock()
		return model.Task{}, apperrors.ErrNoSession
	}

	now := time.Now()
	var out model.Task

	if editingID != "" {
		if idx := indexOf(sess.tasks, editingID); idx >= 0 {
			task := sess.tasks[idx]
			if task.Completed {
				e.mu.Unlock()
				return model.Task{}, apperrors.ErrTaskCompleted
			}
			task.Title = title
			task.Description = description
			task.UpdatedAt = now
			if task.ReminderAt == nil {
				reminderAt := now.Add(e.reminderOffset)
				task.ReminderAt = &reminderAt
			}
			sess.tasks[idx] = task
			out = task
		}
	}

	if out.ID == "" {
		reminderAt := now.Add(e.reminderOffset)
		out = model.Task{
			ID:          nextID(sess.tasks, now),
			Title:       title,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
			ReminderAt:  &reminderAt,
		}
		sess.tasks = append([]model.Task{out}, sess.tasks...)
	}

	sess.form = editForm{}
	userID := sess.userID
	snapshot := copyTasks(sess.tasks)
	e.mu.Unlock()

	e.reminders.Cancel(out.ID)
	e.reminders.Schedule(out)
	e.fanOut(userID, snapshot)

	return out, nil
}

func (e *Engine) ToggleComplete(id string) (model.Task, error) {
	e.mu.Lock()
	sess := e.sess
	if sess == nil {
		e.mu.Unlock()
		return model.Task{}, apperrors.ErrNoSession
	}

	idx := indexOf(sess.tasks, id)
	if idx < 0 {
		e.mu.Unlock()
		return model.Task{}, apperrors.ErrTaskNotFound
	}

	task := sess.tasks[idx]
	task.Completed = !task.Completed
	task.UpdatedAt = time.Now()
	sess.tasks[idx] = task

	userID := sess.userID
	snapshot := copyTasks(sess.tasks)
	e.mu.Unlock()

	if task.Completed {
		e.reminders.Cancel(task.ID)
	}
	e.fanOut(userID, snapshot)

	return task, nil
}

// Delete removes a task everywhere. The per-record remote delete is issued
// independently of the full-collection fan-out; neither rolls the other
// back on failure.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	sess := e.sess
	if sess == nil {
		e.mu.Unlock()
		return apperrors.ErrNoSession
	}

	idx := indexOf(sess.tasks, id)
	if idx < 0 {
		e.mu.Unlock()
		return apperrors.ErrTaskNotFound
	}

	sess.tasks = append(sess.tasks[:idx], sess.tasks[idx+1:]...)
	if sess.form.EditingID == id {
		sess.form = editForm{}
	}

	userID := sess.userID
	snapshot := copyTasks(sess.tasks)
	e.mu.Unlock()

	e.reminders.Cancel(id)
	e.fanOut(userID, snapshot)

	if userID != "" {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.remote.DeleteOne(context.Background(), userID, id); err != nil {
				log.Printf("remote delete failed for task %s: %v", id, err)
			}
		}()
	}

	return nil
}

func (e *Engine) BeginEdit(id string) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.sess
	if sess == nil {
		return model.Task{}, apperrors.ErrNoSession
	}

	idx := indexOf(sess.tasks, id)
	if idx < 0 {
		return model.Task{}, apperrors.ErrTaskNotFound
	}

	task := sess.tasks[idx]
	if task.Completed {
		return model.Task{}, apperrors.ErrTaskCompleted
	}

	sess.form = editForm{
		EditingID:   task.ID,
		Title:       task.Title,
		Description: task.Description,
	}
	return task, nil
}

func (e *Engine) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != nil {
		e.sess.form = editForm{}
	}
}

func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil
	}
	return copyTasks(e.sess.tasks)
}

func (e *Engine) Session() SessionInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	info := SessionInfo{Connectivity: e.connectivity.String()}
	if e.sess != nil {
		info.SessionID = e.sess.id
		info.UserID = e.sess.userID
		info.LocalLoaded = e.sess.localLoaded
		info.Reconciled = e.sess.reconciled
		info.EditingID = e.sess.form.EditingID
		info.FormTitle = e.sess.form.Title
		info.FormDescription = e.sess.form.Description
	}
	return info
}

// fanOut persists a collection snapshot: always to the local store, and to
// the remote store when an identity exists. Both writes are detached and
// best-effort; failures are logged and the in-memory state is never rolled
// back. Writes from successive mutations are unordered with respect to each
// other, so the last write to land wins at the storage layer.
func (e *Engine) fanOut(userID string, snapshot []model.Task) {
	e.saveLocal(storage.UserKeyFor(userID), snapshot)

	if userID == "" {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.remote.PushAll(context.Background(), userID, snapshot); err != nil {
			log.Printf("remote push failed: %v", err)
		}
	}()
}

func (e *Engine) saveLocal(userKey string, snapshot []model.Task) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.local.Save(userKey, snapshot); err != nil {
			log.Printf("local save failed: %v", err)
		}
	}()
}

// Flush blocks until all in-flight background writes have finished.
func (e *Engine) Flush() {
	e.wg.Wait()
}

// nextID mints a millisecond-epoch task id, bumping past any id already in
// the collection.
func nextID(tasks []model.Task, now time.Time) string {
	candidate := now.UnixMilli()
	for {
		id := strconv.FormatInt(candidate, 10)
		if indexOf(tasks, id) < 0 {
			return id
		}
		candidate++
	}
}
