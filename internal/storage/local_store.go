package storage

import (
	"log"
	"time"

	"gorm.io/gorm"

	model "task-sync.com/task-sync/internal/models"
)

// TaskRow is the persisted shape of a task. Rows are scoped by the owning
// user key so one database can hold the guest collection and any number of
// signed-in collections side by side.
type TaskRow struct {
	UserKey     string    `gorm:"primaryKey;size:64"`
	TaskID      string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Completed   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	ReminderAt  *time.Time
}

const GuestKey = "tasks_guest"

func UserKeyFor(userID string) string {
	if userID == "" {
		return GuestKey
	}
	return "tasks_" + userID
}

type LocalStore struct {
	db *gorm.DB
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// Load returns the stored collection for a user key, newest first.
// Failures degrade to an empty collection.
func (s *LocalStore) Load(userKey string) []model.Task {
	var rows []TaskRow
	err := s.db.
		Where("user_key = ?", userKey).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		log.Printf("local store: load failed for %s: %v", userKey, err)
		return nil
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks
}

func (s *LocalStore) Save(userKey string, tasks []model.Task) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_key = ?", userKey).Delete(&TaskRow{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		rows := make([]TaskRow, 0, len(tasks))
		for _, task := range tasks {
			rows = append(rows, rowFromTask(userKey, task))
		}
		return tx.Create(&rows).Error
	})
}

func (r TaskRow) toTask() model.Task {
	return model.Task{
		ID:          r.TaskID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ReminderAt:  r.ReminderAt,
	}
}

func rowFromTask(userKey string, task model.Task) TaskRow {
	return TaskRow{
		UserKey:     userKey,
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		ReminderAt:  task.ReminderAt,
	}
}
