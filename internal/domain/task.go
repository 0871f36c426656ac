package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Toggle returns the opposite status.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusCompleted {
		return TaskStatusPending
	}
	return TaskStatusCompleted
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return st, nil
}

// FilterStatus selects which tasks a view shows.
type FilterStatus string

const (
	FilterAll       FilterStatus = "all"
	FilterPending   FilterStatus = "pending"
	FilterCompleted FilterStatus = "completed"
)

// Matches reports whether a task with status s passes the filter.
func (f FilterStatus) Matches(s TaskStatus) bool {
	switch f {
	case FilterAll:
		return true
	case FilterPending:
		return s == TaskStatusPending
	case FilterCompleted:
		return s == TaskStatusCompleted
	}
	return false
}

func ParseFilterStatus(s string) (FilterStatus, error) {
	switch f := FilterStatus(s); f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, s)
}

// Task is a single-owner to-do item.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask is the input for task creation.
type NewTask struct {
	Title       string
	Description string
}

func (n NewTask) Validate() error {
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	return validateDescription(n.Description)
}

// TaskPatch carries a partial task update. Nil fields are left as is.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *p.Status)
	}
	return nil
}

// Apply copies the set fields onto t. It does not touch timestamps.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > 200 {
		return fmt.Errorf("%w: title must be 200 characters or fewer", ErrInvalidInput)
	}
	return nil
}

func validateDescription(description string) error {
	if len(strings.TrimSpace(description)) > 1000 {
		return fmt.Errorf("%w: description must be 1000 characters or fewer", ErrInvalidInput)
	}
	return nil
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// ListByUser returns the user's tasks, newest first.
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}
