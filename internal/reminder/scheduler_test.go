package reminder

import (
	"testing"
	"time"

	model "task-sync.com/task-sync/internal/models"
)

type chanNotifier struct {
	fired chan model.Task
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{fired: make(chan model.Task, 8)}
}

func (n *chanNotifier) Notify(task model.Task) {
	n.fired <- task
}

func taskDueIn(id string, delay time.Duration) model.Task {
	reminderAt := time.Now().Add(delay)
	return model.Task{
		ID:         id,
		Title:      "Task " + id,
		ReminderAt: &reminderAt,
	}
}

func TestScheduleWithoutReminderIsNoop(t *testing.T) {
	s := NewScheduler(newChanNotifier())
	defer s.Shutdown()

	s.Schedule(model.Task{ID: "1", Title: "No reminder"})
	if s.Pending("1") {
		t.Error("task without reminder must not be scheduled")
	}
}

func TestSchedulePastReminderIsNoop(t *testing.T) {
	s := NewScheduler(newChanNotifier())
	defer s.Shutdown()

	s.Schedule(taskDueIn("1", -time.Minute))
	if s.Pending("1") {
		t.Error("past reminder must not be scheduled")
	}
}

func TestScheduleFires(t *testing.T) {
	n := newChanNotifier()
	s := NewScheduler(n)
	defer s.Shutdown()

	s.Schedule(taskDueIn("1", 20*time.Millisecond))
	if !s.Pending("1") {
		t.Fatal("expected a pending reminder")
	}

	select {
	case fired := <-n.fired:
		if fired.ID != "1" {
			t.Errorf("wrong task delivered: %s", fired.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}

	if s.Pending("1") {
		t.Error("fired reminder still pending")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	n := newChanNotifier()
	s := NewScheduler(n)
	defer s.Shutdown()

	s.Cancel("unknown")

	s.Schedule(taskDueIn("1", 30*time.Millisecond))
	s.Cancel("1")
	s.Cancel("1")

	if s.Pending("1") {
		t.Error("cancelled reminder still pending")
	}

	select {
	case <-n.fired:
		t.Error("cancelled reminder fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRescheduleReplacesPendingReminder(t *testing.T) {
	n := newChanNotifier()
	s := NewScheduler(n)
	defer s.Shutdown()

	stale := taskDueIn("1", 30*time.Millisecond)
	s.Schedule(stale)

	fresh := taskDueIn("1", 50*time.Millisecond)
	fresh.Title = "Renamed"
	s.Schedule(fresh)

	select {
	case fired := <-n.fired:
		if fired.Title != "Renamed" {
			t.Errorf("stale reminder fired: %s", fired.Title)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}

	select {
	case fired := <-n.fired:
		t.Errorf("duplicate reminder fired: %s", fired.Title)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestShutdownDisarmsEverything(t *testing.T) {
	n := newChanNotifier()
	s := NewScheduler(n)

	s.Schedule(taskDueIn("1", 30*time.Millisecond))
	s.Schedule(taskDueIn("2", 30*time.Millisecond))
	s.Shutdown()

	if s.Pending("1") || s.Pending("2") {
		t.Error("pending reminders survived shutdown")
	}

	select {
	case <-n.fired:
		t.Error("reminder fired after shutdown")
	case <-time.After(100 * time.Millisecond):
	}
}
