package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError names the form field that failed; it matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var (
	errTitleRequired  = &ValidationError{Field: "title", Message: "Title is required"}
	errTaskIDRequired = &ValidationError{Field: "task_id", Message: "Task ID is required"}
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, errTitleRequired
	}
	return s.repo.Create(ctx, title, strings.TrimSpace(description))
}

// List returns every task, or only those with the given status when filter
// names one. Any other filter value lists everything.
func (s *TaskService) List(ctx context.Context, filter string) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return ParseFilter(filter).Apply(tasks), nil
}

func ParseFilter(v string) model.TaskFilter {
	var f model.TaskFilter
	if status, ok := model.ParseStatus(v); ok {
		f.Status = &status
	}
	return f
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	id, err := requireID(id)
	if err != nil {
		return model.Task{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, id string, markCompleted bool, description string) (model.Task, error) {
	id, err := requireID(id)
	if err != nil {
		return model.Task{}, err
	}
	description = strings.TrimSpace(description)
	return s.repo.Update(ctx, id, model.TaskUpdate{
		MarkComplete: markCompleted,
		Description:  &description,
	})
}

func (s *TaskService) Delete(ctx context.Context, id string) (model.Task, error) {
	id, err := requireID(id)
	if err != nil {
		return model.Task{}, err
	}
	return s.repo.Delete(ctx, id)
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errTaskIDRequired
	}
	return id, nil
}
