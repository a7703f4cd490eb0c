package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/dbx"
	"github.com/dmitrijs2005/taskly/internal/server/models"
)

const taskColumns = `id, user_id, title, description, due_date, due_time, priority,
		 reminder_fires_at, reminder_offset, archived, archived_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		firesAt, archivedAt sql.NullTime
		offset              sql.NullInt64
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Date, &t.Time, &t.Priority,
		&firesAt, &offset, &t.Archived, &archivedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if firesAt.Valid && offset.Valid {
		ts, n := firesAt.Time, int(offset.Int64)
		t.ReminderFiresAt, t.ReminderOffset = &ts, &n
	}
	if archivedAt.Valid {
		ts := archivedAt.Time
		t.ArchivedAt = &ts
	}
	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, archived bool) ([]*models.Task, error) {
	order := "created_at, id"
	if archived {
		order = "archived_at DESC, id"
	}

	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE user_id = $1 AND archived = $2
		 ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, query, userID, archived)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) error {
	query :=
		`INSERT INTO tasks (id, user_id, title, description, due_date, due_time, priority,
		                    reminder_fires_at, reminder_offset)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Date, task.Time, task.Priority,
		task.ReminderFiresAt, task.ReminderOffset,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `
	return r.one(r.db.QueryRowContext(ctx, query, id, userID))
}

// Update stores the editable fields of task and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) error {
	query :=
		`UPDATE tasks
		 SET title = $3, description = $4, due_date = $5, due_time = $6, priority = $7,
		     reminder_fires_at = $8, reminder_offset = $9, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Date, task.Time, task.Priority,
		task.ReminderFiresAt, task.ReminderOffset,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query :=
		`DELETE FROM tasks
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetArchived(ctx context.Context, userID, id string, archived bool, at time.Time) (*models.Task, error) {
	var archivedAt *time.Time
	if archived {
		archivedAt = &at
	}

	query :=
		`UPDATE tasks
		 SET archived = $3, archived_at = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND archived <> $3
		 RETURNING ` + taskColumns

	return r.one(r.db.QueryRowContext(ctx, query, id, userID, archived, archivedAt))
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Task, error) {
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
