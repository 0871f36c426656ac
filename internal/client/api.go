package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/msomdec/taskboard/internal/domain"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*domain.AuthResult, error) {
	var out wireAuth
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	user, err := out.User.toDomain()
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carried no access token", path)
	}
	return &domain.AuthResult{AccessToken: out.AccessToken, User: user}, nil
}

// GetProfile returns the user the stored session belongs to.
func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var out wireUser
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	user, err := out.toDomain()
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update and returns the full user.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	body := wireProfile{Name: update.Name, Email: update.Email, Avatar: update.Avatar}
	var out wireUser
	if err := c.do(ctx, http.MethodPatch, "/auth/profile", body, &out); err != nil {
		return nil, err
	}
	user, err := out.toDomain()
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTasks returns the session user's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out []wireTask
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(out))
	for _, wt := range out {
		t, err := wt.toDomain()
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", wt.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask creates a task and returns it with its server-assigned id.
func (c *Client) CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	body := map[string]string{"title": input.Title, "description": input.Description}
	return c.taskRequest(ctx, http.MethodPost, "/tasks", body)
}

// UpdateTask applies a partial update and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return c.taskRequest(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), toWirePatch(patch))
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) taskRequest(ctx context.Context, method, path string, body any) (*domain.Task, error) {
	var out wireTask
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	task, err := out.toDomain()
	if err != nil {
		return nil, err
	}
	return &task, nil
}
