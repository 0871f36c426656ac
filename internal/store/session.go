package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

const (
	msgLoginFailed    = "Login failed. Please try again."
	msgRegisterFailed = "Registration failed. Please try again."
	msgProfileFailed  = "Failed to update profile"
	msgProfileLoad    = "Failed to load profile"
)

// AuthRemote is the part of the remote service the session depends on.
type AuthRemote interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error)
	GetProfile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

// SessionState is a snapshot of the session. Empty Token and Error mean none.
type SessionState struct {
	User            *domain.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// SessionStore owns the authenticated session and its persisted copy.
type SessionStore struct {
	remote  AuthRemote
	storage domain.KeyValueStore

	mu    sync.Mutex
	state SessionState
	hub   hub[SessionState]
}

// NewSessionStore creates a logged-out session. Call LoadUser to restore
// a persisted one.
func NewSessionStore(remote AuthRemote, storage domain.KeyValueStore) *SessionStore {
	return &SessionStore{remote: remote, storage: storage}
}

// State returns a copy of the current session.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() SessionState {
	snap := s.state
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

// Subscribe registers fn to receive every new session snapshot, in
// mutation order. fn may run on the goroutine of a later mutation.
func (s *SessionStore) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	return s.hub.subscribe(fn)
}

func (s *SessionStore) update(fn func(st *SessionState)) {
	s.mu.Lock()
	fn(&s.state)
	queued := s.hub.publish(s.snapshotLocked)
	s.mu.Unlock()
	if queued {
		s.hub.drain()
	}
}

// IsAuthenticated is the route-gating predicate.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

// RequireAuth returns domain.ErrUnauthorized unless a session is held.
func (s *SessionStore) RequireAuth() error {
	if !s.IsAuthenticated() {
		return domain.ErrUnauthorized
	}
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Login authenticates with the remote service and persists the session.
// The failure is recorded in Error and returned.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.rejectInput(fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput), msgLoginFailed)
	}

	s.begin()
	res, err := s.remote.Login(ctx, email, password)
	return s.finishAuth(ctx, res, err, msgLoginFailed)
}

// Register creates an account and signs it in.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := validateRegistration(name, email, password); err != nil {
		return s.rejectInput(err, msgRegisterFailed)
	}

	s.begin()
	res, err := s.remote.Register(ctx, name, email, password)
	return s.finishAuth(ctx, res, err, msgRegisterFailed)
}

func validateRegistration(name, email, password string) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	return domain.ValidatePassword(password)
}

func (s *SessionStore) begin() {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})
}

// rejectInput records a failure caught before any remote call.
func (s *SessionStore) rejectInput(err error, fallback string) error {
	s.update(func(st *SessionState) {
		st.Error = remoteMessage(err, fallback)
	})
	return err
}

func (s *SessionStore) finishAuth(ctx context.Context, res *domain.AuthResult, err error, fallback string) error {
	if err == nil {
		err = s.persist(ctx, res.AccessToken, &res.User)
	}
	if err != nil {
		s.update(func(st *SessionState) {
			st.IsLoading = false
			st.Error = remoteMessage(err, fallback)
		})
		return err
	}

	user := res.User
	s.update(func(st *SessionState) {
		*st = SessionState{
			User:            &user,
			Token:           res.AccessToken,
			IsAuthenticated: true,
		}
	})
	slog.Debug("session established", "user", user.ID)
	return nil
}

// persist writes token and user together; on failure neither is left behind.
func (s *SessionStore) persist(ctx context.Context, token string, user *domain.User) error {
	data, err := encodeUser(user)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, domain.StorageKeyToken, []byte(token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Put(ctx, domain.StorageKeyUser, data); err != nil {
		s.clearStorage(ctx)
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *SessionStore) clearStorage(ctx context.Context) {
	for _, key := range []string{domain.StorageKeyToken, domain.StorageKeyUser} {
		if err := s.storage.Delete(ctx, key); err != nil {
			slog.Error("clear session storage", "key", key, "error", err)
		}
	}
}

// Logout drops the session locally. It never calls the remote service and
// is safe to call when already logged out.
func (s *SessionStore) Logout() {
	s.clearStorage(context.Background())
	s.update(func(st *SessionState) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		st.IsLoading = false
	})
}

// HandleUnauthenticated is the transport's rejected-session subscriber.
func (s *SessionStore) HandleUnauthenticated() {
	slog.Info("session rejected by server, logging out")
	s.Logout()
}

// LoadUser restores a persisted session. Only a complete pair of token and
// parseable user restores it; anything else leaves the session logged out.
// A corrupt user entry is discarded. Nothing is reported to the caller.
func (s *SessionStore) LoadUser(ctx context.Context) {
	user, userErr := s.readUser(ctx)
	token, tokenErr := s.read(ctx, domain.StorageKeyToken)

	if userErr != nil || tokenErr != nil || user == nil || token == "" {
		s.update(func(st *SessionState) {
			st.User = nil
			st.Token = ""
			st.IsAuthenticated = false
		})
		return
	}

	s.update(func(st *SessionState) {
		st.User = user
		st.Token = token
		st.IsAuthenticated = true
	})
}

var errCorruptUser = errors.New("corrupt stored user")

func (s *SessionStore) readUser(ctx context.Context) (*domain.User, error) {
	raw, err := s.read(ctx, domain.StorageKeyUser)
	if err != nil || raw == "" || raw == "undefined" {
		return nil, err
	}
	user, err := decodeUser([]byte(raw))
	if err != nil {
		slog.Warn("discarding corrupt stored user", "error", err)
		if err := s.storage.Delete(ctx, domain.StorageKeyUser); err != nil {
			slog.Error("delete corrupt stored user", "error", err)
		}
		return nil, errCorruptUser
	}
	return user, nil
}

func (s *SessionStore) read(ctx context.Context, key string) (string, error) {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		slog.Error("read session storage", "key", key, "error", err)
		return "", err
	}
	return string(data), nil
}

// SetUser persists and replaces the current user. Token and
// authentication state are left alone.
func (s *SessionStore) SetUser(ctx context.Context, user domain.User) error {
	data, err := encodeUser(&user)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, domain.StorageKeyUser, data); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.update(func(st *SessionState) {
		st.User = &user
	})
	return nil
}

// UpdateProfile validates and submits a profile change, then replaces the
// user with the server's copy. The failure is recorded and returned.
func (s *SessionStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	if err := update.Validate(); err != nil {
		return domain.User{}, s.rejectInput(err, msgProfileFailed)
	}

	s.begin()
	user, err := s.remote.UpdateProfile(ctx, update)
	if err == nil {
		err = s.SetUser(ctx, *user)
	}
	if err != nil {
		s.update(func(st *SessionState) {
			st.IsLoading = false
			st.Error = remoteMessage(err, msgProfileFailed)
		})
		return domain.User{}, err
	}

	s.update(func(st *SessionState) { st.IsLoading = false })
	return *user, nil
}

// RefreshProfile replaces the user with the server's current copy. It does
// nothing when logged out. A rejected session is handled by the transport.
func (s *SessionStore) RefreshProfile(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	user, err := s.remote.GetProfile(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			s.update(func(st *SessionState) { st.Error = msgProfileLoad })
		}
		return
	}
	if err := s.SetUser(ctx, *user); err != nil {
		slog.Error("persist refreshed profile", "error", err)
	}
}

// ClearError clears the Error field only.
func (s *SessionStore) ClearError() {
	s.update(func(st *SessionState) { st.Error = "" })
}

type storedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func encodeUser(u *domain.User) ([]byte, error) {
	data, err := json.Marshal(storedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return data, nil
}

func decodeUser(data []byte) (*domain.User, error) {
	var su storedUser
	if err := json.Unmarshal(data, &su); err != nil {
		return nil, err
	}
	if su.ID == "" {
		return nil, errors.New("stored user has no id")
	}
	return &domain.User{
		ID:        su.ID,
		Name:      su.Name,
		Email:     su.Email,
		Avatar:    su.Avatar,
		CreatedAt: su.CreatedAt,
	}, nil
}
