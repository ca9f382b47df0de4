package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		position    INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'Pending'
	)
`

// SQLiteRepo stores tasks in an embedded database file (or ":memory:").
type SQLiteRepo struct {
	db     *sql.DB
	logger *zap.Logger
	newID  func() string
}

func NewSQLiteRepo(dbPath string, logger *zap.Logger) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrorIO, err)
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrorIO, err)
	}

	return &SQLiteRepo{
		db:     db,
		logger: logger,
		newID:  model.NewID,
	}, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, title, description string) (model.Task, error) {
	for i := 0; i < maxIDAttempts; i++ {
		t := model.NewTask(title, description, model.WithID(r.newID()))
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO tasks (task_id, title, description, status)
			VALUES (?, ?, ?, ?)
		`, t.ID, t.Title, t.Description, string(t.Status))

		err = r.mapError(err)
		if errors.Is(err, ErrorConflict) {
			r.logger.Warn("generated task id already taken", zap.String("task_id", t.ID))
			continue
		}
		if err != nil {
			return model.Task{}, err
		}
		return t.ToRecord(), nil
	}
	return model.Task{}, fmt.Errorf("%w: no free task id after %d attempts", ErrorConflict, maxIDAttempts)
}

func (r *SQLiteRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, title, description, status
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, r.mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status); err != nil {
			return nil, r.mapError(err)
		}
		tasks = append(tasks, t)
	}
	return tasks, r.mapError(rows.Err())
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := r.db.QueryRowContext(ctx, `
		SELECT task_id, title, description, status
		FROM tasks
		WHERE task_id = ?
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	return t, r.mapError(err)
}

func (r *SQLiteRepo) Update(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}
	defer tx.Rollback()

	var stored model.Task
	err = tx.QueryRowContext(ctx, `
		SELECT task_id, title, description, status
		FROM tasks
		WHERE task_id = ?
	`, id).Scan(&stored.ID, &stored.Title, &stored.Description, &stored.Status)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}

	t := model.NewTask(stored.Title, stored.Description,
		model.WithID(stored.ID),
		model.WithStatus(stored.Status),
	).Apply(upd)

	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET description = ?, status = ? WHERE task_id = ?
	`, t.Description, string(t.Status), t.ID); err != nil {
		return model.Task{}, r.mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, r.mapError(err)
	}
	return t, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM tasks
		WHERE task_id = ?
		RETURNING task_id, title, description, status
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	return t, r.mapError(err)
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrorConflict
	}
	return fmt.Errorf("%w: %w", ErrorIO, err)
}
