package store_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

// fakeTaskRemote answers from an in-memory list. A non-nil gate makes each
// call block until a value is sent on it. A non-nil beforeReply runs just
// before each call returns.
type fakeTaskRemote struct {
	mu          sync.Mutex
	tasks       []domain.Task
	nextID      int
	err         error
	gate        chan struct{}
	calls       []string
	beforeReply func()
}

func (f *fakeTaskRemote) wait(ctx context.Context, call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	hook, err := f.beforeReply, f.err
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeTaskRemote) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if err := f.wait(ctx, "list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeTaskRemote) CreateTask(ctx context.Context, in domain.NewTask) (*domain.Task, error) {
	if err := f.wait(ctx, "create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Date(2026, 1, 1, 12, 0, f.nextID, 0, time.UTC)
	t := domain.Task{
		ID:          fmt.Sprintf("srv-%s", in.Title),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeTaskRemote) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := f.wait(ctx, "update "+id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			patch.Apply(&f.tasks[i])
			f.tasks[i].UpdatedAt = f.tasks[i].UpdatedAt.Add(time.Minute)
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, &domain.RemoteError{Status: 404, Message: "Task not found."}
}

func (f *fakeTaskRemote) DeleteTask(ctx context.Context, id string) error {
	return f.wait(ctx, "delete "+id)
}

func (f *fakeTaskRemote) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTaskRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAuthRemote struct {
	mu    sync.Mutex
	err   error
	user  domain.User
	token string
	calls int
}

func newFakeAuthRemote() *fakeAuthRemote {
	return &fakeAuthRemote{
		user: domain.User{
			ID:        "u-1",
			Name:      "Ada Lovelace",
			Email:     "ada@example.com",
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		token: "token-1",
	}
}

func (f *fakeAuthRemote) result() (*domain.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AuthResult{AccessToken: f.token, User: f.user}, nil
}

func (f *fakeAuthRemote) Login(context.Context, string, string) (*domain.AuthResult, error) {
	return f.result()
}

func (f *fakeAuthRemote) Register(_ context.Context, name, email, _ string) (*domain.AuthResult, error) {
	f.mu.Lock()
	f.user.Name, f.user.Email = name, email
	f.mu.Unlock()
	return f.result()
}

func (f *fakeAuthRemote) GetProfile(context.Context) (*domain.User, error) {
	res, err := f.result()
	if err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (f *fakeAuthRemote) UpdateProfile(_ context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	res, err := f.result()
	if err != nil {
		return nil, err
	}
	update.Apply(&res.User)
	return &res.User, nil
}

func (f *fakeAuthRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
