package model

import (
	"strings"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus accepts only the exact status names used in the task file.
func ParseStatus(v string) (Status, bool) {
	s := Status(v)
	return s, s.Valid()
}

// IDLength is the length of generated task ids.
const IDLength = 8

type Task struct {
	ID          string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

type TaskOption func(*Task)

// WithID keeps an existing id instead of generating one.
func WithID(id string) TaskOption {
	return func(t *Task) {
		if id != "" {
			t.ID = id
		}
	}
}

func WithStatus(s Status) TaskOption {
	return func(t *Task) {
		if s != "" {
			t.Status = s
		}
	}
}

// NewTask builds a task as given; no trimming or validation happens here.
func NewTask(title, description string, opts ...TaskOption) Task {
	t := Task{
		Title:       title,
		Description: description,
		Status:      StatusPending,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.ID == "" {
		t.ID = NewID()
	}
	return t
}

func NewID() string {
	return uuid.NewString()[:IDLength]
}

func (t *Task) MarkCompleted() {
	t.Status = StatusCompleted
}

func (t *Task) UpdateDescription(text string) {
	t.Description = text
}

func (t Task) ToRecord() Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
}

// Apply returns the task with upd applied. A blank description leaves the
// current one in place.
func (t Task) Apply(upd TaskUpdate) Task {
	if upd.Description != nil && strings.TrimSpace(*upd.Description) != "" {
		t.UpdateDescription(*upd.Description)
	}
	if upd.MarkComplete {
		t.MarkCompleted()
	}
	return t.ToRecord()
}

type TaskUpdate struct {
	MarkComplete bool
	Description  *string
}

type TaskFilter struct {
	Status *Status
}

func (f TaskFilter) Match(t Task) bool {
	return f.Status == nil || t.Status == *f.Status
}

func (f TaskFilter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
