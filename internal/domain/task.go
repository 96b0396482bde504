package domain

import "time"

// Task is a single todo record. Not tied to gin, Postgres or Redis.
type Task struct {
	ID     string
	Task   string
	Status bool

	CreatedAt time.Time
}
