package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrorNotFound      = errors.New("task not found")
	ErrorConflict      = errors.New("conflict")
	ErrorInvalidFormat = errors.New("invalid task file format")
	ErrorIO            = errors.New("task storage failure")
)

// maxIDAttempts bounds id regeneration when a generated id is already taken.
const maxIDAttempts = 8

// TaskRepository is the storage contract shared by every backend.
// Records keep insertion order.
type TaskRepository interface {
	Create(ctx context.Context, title, description string) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Update(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error)
	Delete(ctx context.Context, id string) (model.Task, error)
	Close() error
}
