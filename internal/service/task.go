package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/taskboard/internal/domain"
)

// TaskService handles owner-scoped task operations.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Create adds a pending task for the user.
func (s *TaskService) Create(ctx context.Context, userID string, input domain.NewTask) (*domain.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TaskStatusPending,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update applies a partial update to a task the user owns.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes a task the user owns.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// owned loads a task and hides tasks of other users behind ErrNotFound.
func (s *TaskService) owned(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return task, nil
}
