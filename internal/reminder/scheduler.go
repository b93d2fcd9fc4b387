package reminder

import (
	"log"
	"sync"
	"time"

	model "task-sync.com/task-sync/internal/models"
)

// Notifier delivers a reminder when its timer fires.
type Notifier interface {
	Notify(task model.Task)
}

type LogNotifier struct{}

func (LogNotifier) Notify(task model.Task) {
	body := task.Description
	if body == "" {
		body = "Task reminder"
	}
	log.Printf("reminder: %s — %s", task.Title, body)
}

// Scheduler keeps at most one pending reminder per task id. Scheduling
// under an id that already has a timer replaces it, and Cancel on an
// unknown id is a no-op, so callers can invoke both redundantly.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	notifier Notifier
}

func NewScheduler(notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		notifier: notifier,
	}
}

// Schedule arms a timer for the task's reminder. It is a no-op when the
// task has no reminder or the reminder is not in the future.
func (s *Scheduler) Schedule(task model.Task) {
	if task.ReminderAt == nil {
		return
	}

	delay := time.Until(*task.ReminderAt)
	if delay <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[task.ID]; ok {
		existing.Stop()
	}

	id := task.ID
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		s.notifier.Notify(task)
	})
}

func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
}

func (s *Scheduler) Pending(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[taskID]
	return ok
}

func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
