package dto

import (
	"errors"
	"time"
)

var ErrMissingTask = errors.New("task is required")

// CreateTaskRequest is the JSON body for POST /todos.
// Text is the field name older clients send; Task wins when both are set.
type CreateTaskRequest struct {
	Task *string `json:"task"`
	Text *string `json:"text"`
}

// Value returns the submitted task text.
func (r CreateTaskRequest) Value() (string, error) {
	switch {
	case r.Task != nil:
		return *r.Task, nil
	case r.Text != nil:
		return *r.Text, nil
	}
	return "", ErrMissingTask
}

// UpdateTaskStatusRequest is the JSON body for PUT /todos/{id}.
type UpdateTaskStatusRequest struct {
	Status *bool `json:"status" binding:"required"`
}

type TaskResponse struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmptyResponse is the `{}` body returned by PUT and DELETE.
type EmptyResponse struct{}

type ErrorResponse struct {
	Error string `json:"error"`
}
