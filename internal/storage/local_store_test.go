package storage

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "task-sync.com/task-sync/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&TaskRow{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

func testTask(id, title string, createdAt time.Time) model.Task {
	reminderAt := createdAt.Add(5 * time.Minute)
	return model.Task{
		ID:          id,
		Title:       title,
		Description: "notes",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		ReminderAt:  &reminderAt,
	}
}

func TestUserKeyFor(t *testing.T) {
	if got := UserKeyFor(""); got != GuestKey {
		t.Errorf("expected guest key for empty identity, got %s", got)
	}
	if got := UserKeyFor("u1"); got != "tasks_u1" {
		t.Errorf("expected tasks_u1, got %s", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := NewLocalStore(setupTestDB(t))

	older := testTask("1", "Older", time.Now().Add(-time.Hour))
	newer := testTask("2", "Newer", time.Now())

	if err := store.Save("tasks_u1", []model.Task{older, newer}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := store.Load("tasks_u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}
	if got[0].ReminderAt == nil {
		t.Error("reminder timestamp lost in round trip")
	}
}

func TestLoadMissingKeyReturnsEmpty(t *testing.T) {
	store := NewLocalStore(setupTestDB(t))

	if got := store.Load("tasks_nobody"); len(got) != 0 {
		t.Errorf("expected empty collection, got %v", got)
	}
}

func TestSaveOverwritesWholeCollection(t *testing.T) {
	store := NewLocalStore(setupTestDB(t))

	a := testTask("a", "A", time.Now().Add(-2*time.Hour))
	b := testTask("b", "B", time.Now().Add(-time.Hour))

	if err := store.Save("tasks_u1", []model.Task{a, b}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save("tasks_u1", []model.Task{b}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got := store.Load("tasks_u1")
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected overwrite to leave only b, got %v", got)
	}

	if err := store.Save("tasks_u1", nil); err != nil {
		t.Fatalf("empty save failed: %v", err)
	}
	if got := store.Load("tasks_u1"); len(got) != 0 {
		t.Errorf("expected empty collection after clearing save, got %v", got)
	}
}

func TestCollectionsAreScopedByUserKey(t *testing.T) {
	store := NewLocalStore(setupTestDB(t))

	if err := store.Save(GuestKey, []model.Task{testTask("g", "Guest task", time.Now())}); err != nil {
		t.Fatalf("guest save failed: %v", err)
	}
	if err := store.Save("tasks_u1", []model.Task{testTask("u", "User task", time.Now())}); err != nil {
		t.Fatalf("user save failed: %v", err)
	}

	if got := store.Load(GuestKey); len(got) != 1 || got[0].ID != "g" {
		t.Errorf("guest collection polluted: %v", got)
	}
	if got := store.Load("tasks_u1"); len(got) != 1 || got[0].ID != "u" {
		t.Errorf("user collection polluted: %v", got)
	}
}
