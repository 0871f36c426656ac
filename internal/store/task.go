package store

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

const (
	msgFetchFailed  = "Failed to load tasks"
	msgCreateFailed = "Failed to create task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
)

// TaskRemote is the part of the remote service the task store depends on.
type TaskRemote interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TaskState is a snapshot of the task store. Tasks is never shared with
// the store and may be modified by the caller.
type TaskState struct {
	Tasks        []domain.Task
	IsLoading    bool
	Error        string
	SearchQuery  string
	FilterStatus domain.FilterStatus
}

// TaskStats summarizes the collection for the dashboard.
type TaskStats struct {
	Total          int
	Pending        int
	Completed      int
	CompletionRate int // percent, rounded
}

// TaskStore owns the task collection and applies every mutation
// optimistically, rolling back to the pre-mutation collection on failure.
//
// The collection slice is never modified in place; every change installs a
// new slice, so a snapshot taken under the lock stays valid after release.
// Concurrent mutations are not serialized. A failing mutation restores its
// own snapshot and may discard a change that landed in between.
//
// Reset starts a new epoch. A remote call that completes after a Reset
// leaves the reset state alone instead of reconciling or rolling back.
type TaskStore struct {
	remote TaskRemote
	now    func() time.Time

	mu    sync.Mutex
	state TaskState
	epoch uint64
	hub   hub[TaskState]
}

type TaskStoreOption func(*TaskStore)

// WithClock overrides the time source used for optimistic timestamps.
func WithClock(now func() time.Time) TaskStoreOption {
	return func(s *TaskStore) { s.now = now }
}

func NewTaskStore(remote TaskRemote, opts ...TaskStoreOption) *TaskStore {
	s := &TaskStore{
		remote: remote,
		now:    time.Now,
		state:  TaskState{Tasks: []domain.Task{}, FilterStatus: domain.FilterAll},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskStore) State() TaskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *TaskStore) snapshotLocked() TaskState {
	snap := s.state
	snap.Tasks = slices.Clone(s.state.Tasks)
	return snap
}

// Tasks returns a copy of the full collection.
func (s *TaskStore) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Tasks)
}

// Subscribe registers fn to receive every new snapshot, in mutation
// order. fn may run on the goroutine of a later mutation.
func (s *TaskStore) Subscribe(fn func(TaskState)) (unsubscribe func()) {
	return s.hub.subscribe(fn)
}

// update applies fn under the lock and notifies subscribers. fn must
// install a new Tasks slice rather than write into the current one.
func (s *TaskStore) update(fn func(st *TaskState)) {
	s.mu.Lock()
	fn(&s.state)
	queued := s.hub.publish(s.snapshotLocked)
	s.mu.Unlock()
	if queued {
		s.hub.drain()
	}
}

// begin applies fn like update and returns the epoch it was applied in.
func (s *TaskStore) begin(fn func(st *TaskState)) (epoch uint64) {
	s.update(func(st *TaskState) {
		epoch = s.epoch
		fn(st)
	})
	return epoch
}

// settle applies fn unless the store was reset after epoch.
func (s *TaskStore) settle(epoch uint64, fn func(st *TaskState)) {
	s.update(func(st *TaskState) {
		if s.epoch == epoch {
			fn(st)
		}
	})
}

// FetchTasks replaces the collection with the server's, newest first. On
// failure the collection is left as it was. The error is recorded, not
// returned.
func (s *TaskStore) FetchTasks(ctx context.Context) {
	epoch := s.begin(func(st *TaskState) {
		st.IsLoading = true
		st.Error = ""
	})

	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		slog.Error("fetch tasks", "error", err)
		s.settle(epoch, func(st *TaskState) {
			st.IsLoading = false
			st.Error = msgFetchFailed
		})
		return
	}

	tasks = slices.Clone(tasks)
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	s.settle(epoch, func(st *TaskState) {
		st.Tasks = tasks
		st.IsLoading = false
	})
}

// CreateTask validates the input, prepends a provisional task under a
// temporary id, and replaces it in place with the server's task once the
// creation is confirmed. On failure the provisional task is removed and
// the error is recorded and returned.
func (s *TaskStore) CreateTask(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		s.update(func(st *TaskState) { st.Error = taskMessage(err, msgCreateFailed) })
		return domain.Task{}, err
	}

	now := s.now()
	tempID := newTempID(now)
	provisional := domain.Task{
		ID:          tempID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	epoch := s.begin(func(st *TaskState) {
		st.Tasks = slices.Insert(slices.Clone(st.Tasks), 0, provisional)
		st.Error = ""
	})

	created, err := s.remote.CreateTask(ctx, in)
	if err != nil {
		s.settle(epoch, func(st *TaskState) {
			st.Tasks = slices.DeleteFunc(slices.Clone(st.Tasks), func(t domain.Task) bool { return t.ID == tempID })
			st.Error = taskMessage(err, msgCreateFailed)
		})
		return domain.Task{}, err
	}

	confirmed := *created
	s.settle(epoch, func(st *TaskState) {
		st.Tasks = replaceTemp(st.Tasks, tempID, confirmed)
	})
	slog.Debug("task created", "temp_id", tempID, "id", confirmed.ID)
	return confirmed, nil
}

// replaceTemp returns a new collection with the entry tempID replaced by
// task at the same position. Any other entry already holding task's id is
// dropped. If tempID is gone (rolled back by a concurrent failure) the
// collection is returned unchanged.
func replaceTemp(tasks []domain.Task, tempID string, task domain.Task) []domain.Task {
	i := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == tempID })
	if i < 0 {
		return tasks
	}
	out := make([]domain.Task, 0, len(tasks))
	for j, t := range tasks {
		switch {
		case j == i:
			out = append(out, task)
		case t.ID == task.ID:
		default:
			out = append(out, t)
		}
	}
	return out
}

// UpdateTask applies patch to the matching task immediately and submits
// it. On failure the whole collection is restored to its state before the
// call and the error is recorded and returned. An unknown id changes
// nothing locally but is still submitted.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		s.update(func(st *TaskState) { st.Error = taskMessage(err, msgUpdateFailed) })
		return err
	}

	now := s.now()
	var snapshot []domain.Task
	epoch := s.begin(func(st *TaskState) {
		snapshot = st.Tasks
		next := slices.Clone(st.Tasks)
		for i := range next {
			if next[i].ID == id {
				patch.Apply(&next[i])
				next[i].UpdatedAt = now
			}
		}
		st.Tasks = next
		st.Error = ""
	})

	updated, err := s.remote.UpdateTask(ctx, id, patch)
	if err != nil {
		slog.Debug("rolling back task update", "id", id, "error", err)
		s.settle(epoch, func(st *TaskState) {
			st.Tasks = snapshot
			st.Error = taskMessage(err, msgUpdateFailed)
		})
		return err
	}

	confirmed := *updated
	s.settle(epoch, func(st *TaskState) {
		i := slices.IndexFunc(st.Tasks, func(t domain.Task) bool { return t.ID == id })
		if i < 0 {
			return
		}
		next := slices.Clone(st.Tasks)
		next[i] = confirmed
		st.Tasks = next
	})
	return nil
}

// ToggleStatus flips a task between pending and completed. Failures are
// recorded in the state only.
func (s *TaskStore) ToggleStatus(ctx context.Context, id string) {
	s.mu.Lock()
	i := slices.IndexFunc(s.state.Tasks, func(t domain.Task) bool { return t.ID == id })
	var next domain.TaskStatus
	if i >= 0 {
		next = s.state.Tasks[i].Status.Toggle()
	}
	s.mu.Unlock()
	if i < 0 {
		return
	}

	if err := s.UpdateTask(ctx, id, domain.TaskPatch{Status: &next}); err != nil {
		slog.Error("toggle task status", "id", id, "error", err)
	}
}

// DeleteTask removes the task immediately and submits the deletion. On
// failure the whole collection is restored. The error is recorded, not
// returned.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) {
	var snapshot []domain.Task
	epoch := s.begin(func(st *TaskState) {
		snapshot = st.Tasks
		st.Tasks = slices.DeleteFunc(slices.Clone(st.Tasks), func(t domain.Task) bool { return t.ID == id })
		st.Error = ""
	})

	if err := s.remote.DeleteTask(ctx, id); err != nil {
		slog.Error("delete task", "id", id, "error", err)
		s.settle(epoch, func(st *TaskState) {
			st.Tasks = snapshot
			st.Error = msgDeleteFailed
		})
	}
}

func (s *TaskStore) SetSearchQuery(q string) {
	s.update(func(st *TaskState) { st.SearchQuery = q })
}

func (s *TaskStore) SetFilterStatus(f domain.FilterStatus) {
	s.update(func(st *TaskState) { st.FilterStatus = f })
}

func (s *TaskStore) ClearError() {
	s.update(func(st *TaskState) { st.Error = "" })
}

// Reset drops the collection and query state, as on logout. Remote calls
// still in flight no longer touch the store when they complete.
func (s *TaskStore) Reset() {
	s.update(func(st *TaskState) {
		s.epoch++
		*st = TaskState{Tasks: []domain.Task{}, FilterStatus: domain.FilterAll}
	})
}

// FilteredTasks returns the tasks matching the current search text and
// status filter. The search is a case-insensitive substring match on title
// and description.
func (s *TaskStore) FilteredTasks() []domain.Task {
	s.mu.Lock()
	tasks, q, f := s.state.Tasks, s.state.SearchQuery, s.state.FilterStatus
	s.mu.Unlock()

	q = strings.ToLower(q)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		if !f.Matches(t.Status) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *TaskStore) Stats() TaskStats {
	s.mu.Lock()
	tasks := s.state.Tasks
	s.mu.Unlock()

	var st TaskStats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.Status == domain.TaskStatusCompleted {
			st.Completed++
		} else {
			st.Pending++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) * 100 / float64(st.Total)))
	}
	return st
}
