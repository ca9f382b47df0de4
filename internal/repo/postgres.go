package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		position    BIGSERIAL,
		task_id     TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'Pending'
	)
`

// PostgresRepo stores one row per task.
type PostgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	newID  func() string
}

func NewPostgresRepo(pool *pgxpool.Pool, logger *zap.Logger) *PostgresRepo {
	return &PostgresRepo{
		pool:   pool,
		logger: logger,
		newID:  model.NewID,
	}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrorIO, err)
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, title, description string) (model.Task, error) {
	for i := 0; i < maxIDAttempts; i++ {
		t := model.NewTask(title, description, model.WithID(r.newID()))
		_, err := r.pool.Exec(ctx, `
			INSERT INTO tasks (task_id, title, description, status)
			VALUES ($1, $2, $3, $4)
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

func (r *PostgresRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
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

func (r *PostgresRepo) Get(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT task_id, title, description, status
		FROM tasks
		WHERE task_id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	return t, r.mapError(err)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, upd model.TaskUpdate) (model.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}
	defer tx.Rollback(ctx)

	var stored model.Task
	err = tx.QueryRow(ctx, `
		SELECT task_id, title, description, status
		FROM tasks
		WHERE task_id = $1
		FOR UPDATE
	`, id).Scan(&stored.ID, &stored.Title, &stored.Description, &stored.Status)
	if err != nil {
		return model.Task{}, r.mapError(err)
	}

	t := model.NewTask(stored.Title, stored.Description,
		model.WithID(stored.ID),
		model.WithStatus(stored.Status),
	).Apply(upd)

	if _, err := tx.Exec(ctx, `
		UPDATE tasks SET description = $2, status = $3 WHERE task_id = $1
	`, t.ID, t.Description, string(t.Status)); err != nil {
		return model.Task{}, r.mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Task{}, r.mapError(err)
	}
	return t, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE task_id = $1
		RETURNING task_id, title, description, status
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status)
	return t, r.mapError(err)
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrorConflict
	}
	return fmt.Errorf("%w: %w", ErrorIO, err)
}
