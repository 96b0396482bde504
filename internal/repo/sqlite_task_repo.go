package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dom "github.com/rhinobase/workshop/internal/domain"

	"github.com/google/uuid"
)

// sqliteTime keeps a fixed width so created_at sorts lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteTaskRepo implements TaskRepo over a database/sql handle opened
// with the modernc.org/sqlite driver.
type SQLiteTaskRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteTaskRepo(db *sql.DB) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db, now: time.Now}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, text string) (dom.Task, error) {
	t := dom.Task{
		ID:        uuid.NewString(),
		Task:      text,
		Status:    false,
		CreatedAt: r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, task, status, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Task, t.Status, t.CreatedAt.Format(sqliteTime),
	)
	if err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, task, status, created_at FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dom.Task{}, ErrNotFound
	}
	return t, err
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task, status, created_at FROM tasks ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *SQLiteTaskRepo) SetStatus(ctx context.Context, id string, status bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *SQLiteTaskRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(s rowScanner) (dom.Task, error) {
	var (
		t       dom.Task
		created string
	)
	if err := s.Scan(&t.ID, &t.Task, &t.Status, &created); err != nil {
		return dom.Task{}, err
	}
	at, err := time.Parse(sqliteTime, created)
	if err != nil {
		return dom.Task{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	t.CreatedAt = at
	return t, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
