package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	model "task-sync.com/task-sync/internal/models"
)

// TaskStore is the networked store of record. Each user's collection lives
// in one hash, task id -> JSON document, so a full push can replace the
// collection atomically.
type TaskStore struct {
	client rueidis.Client
}

func NewTaskStore(client rueidis.Client) *TaskStore {
	return &TaskStore{client: client}
}

func collectionKey(userID string) string {
	return "tasks:" + userID
}

func (s *TaskStore) FetchAll(ctx context.Context, userID string) ([]model.Task, error) {
	cmd := s.client.B().Hgetall().Key(collectionKey(userID)).Build()
	entries, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(entries))
	for id, doc := range entries {
		var task model.Task
		if err := json.Unmarshal([]byte(doc), &task); err != nil {
			return nil, fmt.Errorf("decode remote task %s: %w", id, err)
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// PushAll overwrites the user's remote collection. The delete and rewrite
// run inside MULTI/EXEC so readers never observe a partial batch.
func (s *TaskStore) PushAll(ctx context.Context, userID string, tasks []model.Task) error {
	key := collectionKey(userID)

	cmds := make(rueidis.Commands, 0, 4)
	cmds = append(cmds, s.client.B().Multi().Build())
	cmds = append(cmds, s.client.B().Del().Key(key).Build())

	if len(tasks) > 0 {
		hset := s.client.B().Hset().Key(key).FieldValue()
		for _, task := range tasks {
			doc, err := json.Marshal(task)
			if err != nil {
				return fmt.Errorf("encode task %s: %w", task.ID, err)
			}
			hset = hset.FieldValue(task.ID, string(doc))
		}
		cmds = append(cmds, hset.Build())
	}

	cmds = append(cmds, s.client.B().Exec().Build())

	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}

	return nil
}

func (s *TaskStore) DeleteOne(ctx context.Context, userID, taskID string) error {
	cmd := s.client.B().Hdel().Key(collectionKey(userID)).Field(taskID).Build()
	return s.client.Do(ctx, cmd).Error()
}
