package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/store"
)

func newTestSession(t *testing.T) (*store.SessionStore, *fakeAuthRemote, *store.MemoryStorage) {
	t.Helper()
	remote := newFakeAuthRemote()
	storage := store.NewMemoryStorage()
	return store.NewSessionStore(remote, storage), remote, storage
}

func stored(t *testing.T, storage domain.KeyValueStore, key string) (string, bool) {
	t.Helper()
	data, err := storage.Get(context.Background(), key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false
	}
	if err != nil {
		t.Fatalf("Get %s: %v", key, err)
	}
	return string(data), true
}

func put(t *testing.T, storage domain.KeyValueStore, key, value string) {
	t.Helper()
	if err := storage.Put(context.Background(), key, []byte(value)); err != nil {
		t.Fatalf("Put %s: %v", key, err)
	}
}

func assertLoggedOut(t *testing.T, st store.SessionState) {
	t.Helper()
	if st.User != nil || st.Token != "" || st.IsAuthenticated {
		t.Fatalf("expected logged-out session, got %+v", st)
	}
}

func TestLogin_Success(t *testing.T) {
	s, _, storage := newTestSession(t)

	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	st := s.State()
	if !st.IsAuthenticated || st.Token != "token-1" || st.IsLoading || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.User == nil || st.User.ID != "u-1" {
		t.Fatalf("expected user u-1, got %+v", st.User)
	}
	if tok, _ := stored(t, storage, domain.StorageKeyToken); tok != "token-1" {
		t.Fatalf("expected stored token, got %q", tok)
	}
	if u, _ := stored(t, storage, domain.StorageKeyUser); !strings.Contains(u, `"id":"u-1"`) {
		t.Fatalf("expected stored user, got %q", u)
	}
	if err := s.RequireAuth(); err != nil {
		t.Fatalf("RequireAuth: %v", err)
	}
}

func TestLogin_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &domain.RemoteError{Status: 401, Message: "Invalid email or password."}, "Invalid email or password."},
		{"no message", &domain.RemoteError{Status: 500}, "Login failed. Please try again."},
		{"network", errors.New("dial tcp: connection refused"), "Login failed. Please try again."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, remote, storage := newTestSession(t)
			remote.err = tc.err

			err := s.Login(context.Background(), "ada@example.com", "password123")
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v to be re-raised, got %v", tc.err, err)
			}

			st := s.State()
			assertLoggedOut(t, st)
			if st.IsLoading {
				t.Fatal("expected IsLoading false")
			}
			if st.Error != tc.want {
				t.Fatalf("expected error %q, got %q", tc.want, st.Error)
			}
			if _, ok := stored(t, storage, domain.StorageKeyToken); ok {
				t.Fatal("expected no stored token")
			}
		})
	}
}

func TestLogin_ValidationSkipsRemote(t *testing.T) {
	s, remote, _ := newTestSession(t)

	err := s.Login(context.Background(), "  ", "password123")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if remote.callCount() != 0 {
		t.Fatalf("expected no remote call, got %d", remote.callCount())
	}
	if got := s.State().Error; got != "email and password are required" {
		t.Fatalf("expected validation message, got %q", got)
	}
}

func TestLogin_LoadingObserved(t *testing.T) {
	s, _, _ := newTestSession(t)

	var loading []bool
	s.Subscribe(func(st store.SessionState) { loading = append(loading, st.IsLoading) })

	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(loading) != 2 || !loading[0] || loading[1] {
		t.Fatalf("expected [true false], got %v", loading)
	}
}

func TestRegister(t *testing.T) {
	s, _, storage := newTestSession(t)

	if err := s.Register(context.Background(), "Grace Hopper", "grace@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	st := s.State()
	if !st.IsAuthenticated || st.User.Name != "Grace Hopper" {
		t.Fatalf("expected registered session, got %+v", st)
	}
	if _, ok := stored(t, storage, domain.StorageKeyUser); !ok {
		t.Fatal("expected stored user")
	}
}

func TestRegister_Failure(t *testing.T) {
	s, remote, _ := newTestSession(t)

	if err := s.Register(context.Background(), "Grace Hopper", "grace@example.com", "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if remote.callCount() != 0 {
		t.Fatal("expected validation to skip the remote")
	}

	remote.err = errors.New("timeout")
	if err := s.Register(context.Background(), "Grace Hopper", "grace@example.com", "password123"); err == nil {
		t.Fatal("expected error")
	}
	if got := s.State().Error; got != "Registration failed. Please try again." {
		t.Fatalf("expected register fallback, got %q", got)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	s, _, storage := newTestSession(t)
	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	s.Logout()
	first := s.State()
	s.Logout()
	second := s.State()

	assertLoggedOut(t, first)
	assertLoggedOut(t, second)
	if first != second {
		t.Fatalf("expected identical terminal states, got %+v and %+v", first, second)
	}
	for _, key := range []string{domain.StorageKeyToken, domain.StorageKeyUser} {
		if _, ok := stored(t, storage, key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
	if !errors.Is(s.RequireAuth(), domain.ErrUnauthorized) {
		t.Fatal("expected RequireAuth to reject")
	}
}

func TestLogout_NeverCallsRemote(t *testing.T) {
	s, remote, _ := newTestSession(t)
	s.Logout()
	if remote.callCount() != 0 {
		t.Fatalf("expected no remote calls, got %d", remote.callCount())
	}
}

func TestHandleUnauthenticated(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	s.HandleUnauthenticated()

	assertLoggedOut(t, s.State())
}

const storedGrace = `{"id":"u-9","name":"Grace","email":"grace@example.com","createdAt":"2026-01-02T00:00:00Z"}`

func TestLoadUser_Restores(t *testing.T) {
	storage := store.NewMemoryStorage()
	put(t, storage, domain.StorageKeyToken, "token-9")
	put(t, storage, domain.StorageKeyUser, storedGrace)

	s := store.NewSessionStore(newFakeAuthRemote(), storage)
	assertLoggedOut(t, s.State())
	s.LoadUser(context.Background())

	st := s.State()
	if !st.IsAuthenticated || st.Token != "token-9" {
		t.Fatalf("expected restored session, got %+v", st)
	}
	u := st.User
	if u == nil || u.ID != "u-9" || u.Name != "Grace" || u.Email != "grace@example.com" {
		t.Fatalf("expected stored user, got %+v", u)
	}
	if !u.CreatedAt.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected createdAt restored, got %v", u.CreatedAt)
	}
}

func TestLoadUser_PartialStateStaysLoggedOut(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"token only", "token-9", ""},
		{"user only", "", storedGrace},
		{"undefined user", "token-9", "undefined"},
		{"neither", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			storage := store.NewMemoryStorage()
			if tc.token != "" {
				put(t, storage, domain.StorageKeyToken, tc.token)
			}
			if tc.user != "" {
				put(t, storage, domain.StorageKeyUser, tc.user)
			}

			s := store.NewSessionStore(newFakeAuthRemote(), storage)
			s.LoadUser(context.Background())

			assertLoggedOut(t, s.State())
		})
	}
}

func TestLoadUser_CorruptUserDiscarded(t *testing.T) {
	storage := store.NewMemoryStorage()
	put(t, storage, domain.StorageKeyToken, "token-9")
	put(t, storage, domain.StorageKeyUser, `{"id":`)

	s := store.NewSessionStore(newFakeAuthRemote(), storage)
	s.LoadUser(context.Background())

	st := s.State()
	assertLoggedOut(t, st)
	if st.Error != "" {
		t.Fatalf("expected no surfaced error, got %q", st.Error)
	}
	if _, ok := stored(t, storage, domain.StorageKeyUser); ok {
		t.Fatal("expected corrupt user entry cleared")
	}
}

func TestSetUser_KeepsToken(t *testing.T) {
	s, _, storage := newTestSession(t)
	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := s.SetUser(context.Background(), domain.User{ID: "u-1", Name: "Ada King", Email: "ada@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	st := s.State()
	if st.User.Name != "Ada King" || st.Token != "token-1" || !st.IsAuthenticated {
		t.Fatalf("unexpected state %+v", st)
	}
	if u, _ := stored(t, storage, domain.StorageKeyUser); !strings.Contains(u, "Ada King") {
		t.Fatalf("expected stored user updated, got %q", u)
	}
}

func TestUpdateProfile(t *testing.T) {
	s, remote, _ := newTestSession(t)
	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: ptr("Ada King")})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Ada King" || s.State().User.Name != "Ada King" {
		t.Fatalf("expected updated name, got %+v", got)
	}

	calls := remote.callCount()
	if _, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: ptr("A")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if remote.callCount() != calls {
		t.Fatal("expected validation to skip the remote")
	}

	remote.err = &domain.RemoteError{Status: 409, Message: "Email already in use."}
	if _, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Email: ptr("grace@example.com")}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	st := s.State()
	if st.Error != "Email already in use." || st.User.Name != "Ada King" || st.IsLoading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRefreshProfile(t *testing.T) {
	s, remote, _ := newTestSession(t)

	s.RefreshProfile(context.Background())
	if remote.callCount() != 0 {
		t.Fatal("expected no refresh while logged out")
	}

	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	remote.mu.Lock()
	remote.user.Name = "Countess"
	remote.mu.Unlock()

	s.RefreshProfile(context.Background())
	if got := s.State().User.Name; got != "Countess" {
		t.Fatalf("expected refreshed name, got %q", got)
	}
}

func TestClearError(t *testing.T) {
	s, remote, _ := newTestSession(t)
	remote.err = errors.New("boom")
	_ = s.Login(context.Background(), "ada@example.com", "password123")

	s.ClearError()

	if got := s.State().Error; got != "" {
		t.Fatalf("expected error cleared, got %q", got)
	}
}

func TestSessionState_IsACopy(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.Login(context.Background(), "ada@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	s.State().User.Name = "mutated"

	if s.State().User.Name == "mutated" {
		t.Fatal("expected State to copy the user")
	}
}

func TestRejectInput_UsesCallerFallback(t *testing.T) {
	tests := []struct {
		fallback string
	}{
		{"Login failed. Please try again."},
		{"Registration failed. Please try again."},
		{"Failed to update profile"},
	}

	for _, tc := range tests {
		t.Run(tc.fallback, func(t *testing.T) {
			s, _, _ := newTestSession(t)
			cause := errors.New("storage offline")

			if err := store.RejectInput(s, cause, tc.fallback); err != cause {
				t.Fatalf("expected the cause to be returned, got %v", err)
			}
			if got := s.State().Error; got != tc.fallback {
				t.Fatalf("expected %q, got %q", tc.fallback, got)
			}
		})
	}
}

func TestRegister_ValidationMessage(t *testing.T) {
	s, _, _ := newTestSession(t)

	_ = s.Register(context.Background(), "A", "grace@example.com", "password123")

	if got := s.State().Error; got != "name must be at least 2 characters" {
		t.Fatalf("expected name validation message, got %q", got)
	}
}

func TestSessionStore_SubscriberReadsUnderConcurrency(t *testing.T) {
	s, _, _ := newTestSession(t)

	var mu sync.Mutex
	delivered := 0
	s.Subscribe(func(store.SessionState) {
		_ = s.State()
		_ = s.IsAuthenticated()
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	const workers, rounds = 8, 20
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range rounds {
					s.ClearError()
				}
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent mutations with a reading subscriber did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if delivered != workers*rounds {
		t.Fatalf("expected %d notifications, got %d", workers*rounds, delivered)
	}
}
