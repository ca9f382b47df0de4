package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewTask(t *testing.T) {
	t.Run("generates id and defaults to pending", func(t *testing.T) {
		task := NewTask("Buy milk", "2%")

		require.Len(t, task.ID, IDLength)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, "2%", task.Description)
		assert.Equal(t, StatusPending, task.Status)
	})

	t.Run("keeps supplied id and status", func(t *testing.T) {
		task := NewTask("Read", "ch. 4", WithID("a1b2c3d4"), WithStatus(StatusCompleted))

		assert.Equal(t, "a1b2c3d4", task.ID)
		assert.Equal(t, StatusCompleted, task.Status)
	})

	t.Run("empty option values fall back to defaults", func(t *testing.T) {
		task := NewTask("Read", "", WithID(""), WithStatus(""))

		assert.Len(t, task.ID, IDLength)
		assert.Equal(t, StatusPending, task.Status)
	})

	t.Run("no trimming", func(t *testing.T) {
		task := NewTask("  spaced  ", " d ")
		assert.Equal(t, "  spaced  ", task.Title)
		assert.Equal(t, " d ", task.Description)
	})

	t.Run("ids differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := NewTask("x", "").ID
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

func TestTask_MarkCompleted(t *testing.T) {
	task := NewTask("Buy milk", "2%")

	task.MarkCompleted()
	assert.Equal(t, StatusCompleted, task.Status)

	task.MarkCompleted()
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestTask_UpdateDescription(t *testing.T) {
	task := NewTask("Buy milk", "2%")

	task.UpdateDescription("")
	assert.Equal(t, "", task.Description)

	task.UpdateDescription("whole")
	assert.Equal(t, "whole", task.Description)
}

func TestTask_Apply(t *testing.T) {
	base := NewTask("Buy milk", "2%", WithID("abcd1234"))

	tests := []struct {
		name string
		upd  TaskUpdate
		want Task
	}{
		{
			name: "mark complete with blank description",
			upd:  TaskUpdate{MarkComplete: true, Description: strPtr("")},
			want: Task{ID: "abcd1234", Title: "Buy milk", Description: "2%", Status: StatusCompleted},
		},
		{
			name: "whitespace description is ignored",
			upd:  TaskUpdate{Description: strPtr("   ")},
			want: Task{ID: "abcd1234", Title: "Buy milk", Description: "2%", Status: StatusPending},
		},
		{
			name: "new description",
			upd:  TaskUpdate{Description: strPtr("skim")},
			want: Task{ID: "abcd1234", Title: "Buy milk", Description: "skim", Status: StatusPending},
		},
		{
			name: "no-op",
			upd:  TaskUpdate{},
			want: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Apply(tt.upd))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("Completed")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)

	_, ok = ParseStatus("completed")
	assert.False(t, ok)

	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestTaskFilter_Apply(t *testing.T) {
	tasks := []Task{
		{ID: "a1", Status: StatusPending},
		{ID: "b2", Status: StatusCompleted},
		{ID: "c3", Status: StatusPending},
	}

	completed := StatusCompleted
	got := TaskFilter{Status: &completed}.Apply(tasks)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ID)

	pending := StatusPending
	got = TaskFilter{Status: &pending}.Apply(tasks)
	assert.Equal(t, []string{"a1", "c3"}, ids(got))

	assert.Equal(t, tasks, TaskFilter{}.Apply(tasks))
}

func ids(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
