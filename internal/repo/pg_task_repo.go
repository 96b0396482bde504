package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/rhinobase/workshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgTaskColumns = `id::text, task, status, created_at`

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, text string) (dom.Task, error) {
	query := `
		INSERT INTO tasks (task)
		VALUES ($1)
		RETURNING ` + pgTaskColumns
	var out dom.Task
	err := r.db.QueryRow(ctx, query, text).Scan(&out.ID, &out.Task, &out.Status, &out.CreatedAt)
	return out, err
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	query := `SELECT ` + pgTaskColumns + ` FROM tasks WHERE id = $1`
	var t dom.Task
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Task, &t.Status, &t.CreatedAt)
	if err != nil {
		return dom.Task{}, pgNotFound(err)
	}
	return t, nil
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	query := `SELECT ` + pgTaskColumns + ` FROM tasks ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		var t dom.Task
		if err := rows.Scan(&t.ID, &t.Task, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) SetStatus(ctx context.Context, id string, status bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return pgNotFound(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return pgNotFound(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// pgNotFound maps "no row" and "not a uuid" (22P02) to ErrNotFound.
func pgNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == "22P02" {
		return fmt.Errorf("%w: %s", ErrNotFound, pge.Message)
	}
	return err
}
