package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// FileRepo keeps the whole collection in one JSON array file.
type FileRepo struct {
	path   string
	logger *zap.Logger
	newID  func() string

	mu sync.Mutex
}

type FileOption func(*FileRepo)

// WithIDGenerator replaces model.NewID, mostly for tests.
func WithIDGenerator(gen func() string) FileOption {
	return func(r *FileRepo) {
		r.newID = gen
	}
}

func NewFileRepo(path string, logger *zap.Logger, opts ...FileOption) *FileRepo {
	r := &FileRepo{
		path:   path,
		logger: logger,
		newID:  model.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FileRepo) Path() string {
	return r.path
}

// Init writes an empty collection when the file does not exist yet.
func (r *FileRepo) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", ErrorIO, r.path, err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir %s: %w", ErrorIO, dir, err)
		}
	}
	r.logger.Info("creating task file", zap.String("path", r.path))
	return r.WriteAll(nil)
}

// ReadAll loads the collection. A missing file reads as empty and is not created.
func (r *FileRepo) ReadAll() ([]model.Task, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrorIO, r.path, err)
	}

	if err := validateTaskFile(data); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidFormat, err)
	}
	return tasks, nil
}

// WriteAll replaces the file with tasks, pretty-printed with 4-space indentation.
func (r *FileRepo) WriteAll(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("%w: encode tasks: %w", ErrorIO, err)
	}

	if err := atomicWriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrorIO, r.path, err)
	}
	return nil
}

// FindIndex returns the position of the first task with id, or -1.
func FindIndex(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *FileRepo) FindIndex(id string) (int, error) {
	tasks, err := r.ReadAll()
	if err != nil {
		return -1, err
	}
	return FindIndex(tasks, id), nil
}

func (r *FileRepo) Create(ctx context.Context, title, description string) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.ReadAll()
	if err != nil {
		return model.Task{}, err
	}

	id, err := r.freeID(tasks)
	if err != nil {
		return model.Task{}, err
	}

	task := model.NewTask(title, description, model.WithID(id))
	tasks = append(tasks, task.ToRecord())
	if err := r.WriteAll(tasks); err != nil {
		return model.Task{}, err
	}

	r.logger.Debug("task created", zap.String("task_id", task.ID))
	return task.ToRecord(), nil
}

func (r *FileRepo) freeID(tasks []model.Task) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if FindIndex(tasks, id) < 0 {
			return id, nil
		}
		r.logger.Warn("generated task id already taken", zap.String("task_id", id))
	}
	return "", fmt.Errorf("%w: no free task id after %d attempts", ErrorConflict, maxIDAttempts)
}

func (r *FileRepo) List(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.ReadAll()
}

func (r *FileRepo) Get(ctx context.Context, id string) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	tasks, err := r.ReadAll()
	if err != nil {
		return model.Task{}, err
	}
	idx := FindIndex(tasks, id)
	if idx < 0 {
		return model.Task{}, ErrorNotFound
	}
	return tasks[idx], nil
}

func (r *FileRepo) Update(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.ReadAll()
	if err != nil {
		return model.Task{}, err
	}
	idx := FindIndex(tasks, id)
	if idx < 0 {
		return model.Task{}, ErrorNotFound
	}

	stored := tasks[idx]
	task := model.NewTask(stored.Title, stored.Description,
		model.WithID(stored.ID),
		model.WithStatus(stored.Status),
	)
	tasks[idx] = task.Apply(upd)

	// Even an empty update rewrites the file.
	if err := r.WriteAll(tasks); err != nil {
		return model.Task{}, err
	}
	return tasks[idx], nil
}

func (r *FileRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.ReadAll()
	if err != nil {
		return model.Task{}, err
	}
	idx := FindIndex(tasks, id)
	if idx < 0 {
		return model.Task{}, ErrorNotFound
	}

	removed := tasks[idx]
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := r.WriteAll(tasks); err != nil {
		return model.Task{}, err
	}

	r.logger.Debug("task deleted", zap.String("task_id", removed.ID))
	return removed, nil
}

func (r *FileRepo) Close() error {
	return nil
}

// atomicWriteFile writes content to a temp file next to path and renames it
// over the destination.
func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
