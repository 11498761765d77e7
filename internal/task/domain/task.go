package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/hexaquery/internal/shared/domain/query"
	sharedBus "github.com/davicafu/hexaquery/internal/shared/infra/platform/bus"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Valid indica si el estado es uno de los conocidos.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskCompleted, TaskFailed:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) PartitionKey() string {
	return t.ID.String()
}

var _ sharedBus.Keyer = (*Task)(nil)

// TaskFromRecord convierte una fila del ejecutor en Task.
func TaskFromRecord(r query.Record) (*Task, error) {
	t := &Task{}
	var err error
	if t.ID, err = uuidValue(r["id"]); err != nil {
		return nil, err
	}
	t.Title, _ = r["title"].(string)
	t.Description, _ = r["description"].(string)
	if s, ok := r["status"].(string); ok {
		t.Status = TaskStatus(s)
	}
	if v := r["assignee_id"]; v != nil {
		id, err := uuidValue(v)
		if err != nil {
			return nil, err
		}
		t.AssigneeID = &id
	}
	if v := r["created_by"]; v != nil {
		id, err := uuidValue(v)
		if err != nil {
			return nil, err
		}
		t.CreatedBy = &id
	}
	if ts, ok := query.TimeValue(r["created_at"]); ok {
		t.CreatedAt = ts
	}
	if ts, ok := query.TimeValue(r["updated_at"]); ok {
		t.UpdatedAt = ts
	}
	return t, nil
}

func uuidValue(v any) (uuid.UUID, error) {
	if v == nil {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidTask, v)
	}
	return id, nil
}
