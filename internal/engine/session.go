package engine

import (
	model "task-sync.com/task-sync/internal/models"
)

type connectivityState int

const (
	connectivityUnknown connectivityState = iota
	connectivityOffline
	connectivityOnline
)

func (c connectivityState) String() string {
	switch c {
	case connectivityOnline:
		return "online"
	case connectivityOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// editForm mirrors the draft state of the task form: which task is being
// edited, if any, and the draft fields.
type editForm struct {
	EditingID   string
	Title       string
	Description string
}

// session is the per-identity state of the engine. A session is created by
// Initialize and replaced wholesale when the identity changes; the two
// latches are one-way within a session's lifetime.
type session struct {
	id          string
	userID      string
	tasks       []model.Task
	localLoaded bool
	reconciled  bool
	form        editForm
}

// SessionInfo is a read-only snapshot of session state for callers.
type SessionInfo struct {
	SessionID       string `json:"session_id"`
	UserID          string `json:"user_id,omitempty"`
	Connectivity    string `json:"connectivity"`
	LocalLoaded     bool   `json:"local_loaded"`
	Reconciled      bool   `json:"reconciled"`
	EditingID       string `json:"editing_id,omitempty"`
	FormTitle       string `json:"form_title,omitempty"`
	FormDescription string `json:"form_description,omitempty"`
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
