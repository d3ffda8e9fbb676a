package store

import (
	"context"
	"sync"
	"testing"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSetsIdentity(t *testing.T) {
	fb := newFakeBackend()
	fb.users["a@x.com"] = "pw"
	s := NewSessionStore(fb, nil)

	res := s.Login(context.Background(), "a@x.com", "pw")

	require.True(t, res.Success)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "a@x.com", s.User().Email)
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())
}

func TestLoginFailureKeepsIdentity(t *testing.T) {
	fb := newFakeBackend()
	fb.users["a@x.com"] = "pw"
	s := NewSessionStore(fb, nil)
	require.True(t, s.Login(context.Background(), "a@x.com", "pw").Success)

	res := s.Login(context.Background(), "a@x.com", "wrong")

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid login credentials", res.Error)
	assert.Equal(t, "Invalid login credentials", s.Err())
	require.NotNil(t, s.User())
	assert.Equal(t, "a@x.com", s.User().Email)
}

func TestRegisterDoesNotEstablishSession(t *testing.T) {
	fb := newFakeBackend()
	s := NewSessionStore(fb, nil)

	res := s.Register(context.Background(), "b@x.com", "secret")

	require.True(t, res.Success)
	require.NotNil(t, res.User)
	assert.Equal(t, "b@x.com", res.User.Email)
	assert.False(t, s.IsAuthenticated())

	dup := s.Register(context.Background(), "b@x.com", "secret")
	assert.False(t, dup.Success)
	assert.Equal(t, "User already registered", s.Err())
}

func TestLogout(t *testing.T) {
	fb := newFakeBackend()
	fb.users["a@x.com"] = "pw"
	s := NewSessionStore(fb, nil)
	require.True(t, s.Login(context.Background(), "a@x.com", "pw").Success)

	fb.failWith("SignOut", errors.New("network down"))
	res := s.Logout(context.Background())
	assert.False(t, res.Success)
	assert.True(t, s.IsAuthenticated(), "identity must survive a failed sign-out")

	fb.failWith("SignOut", nil)
	res = s.Logout(context.Background())
	assert.True(t, res.Success)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Err())
}

func TestCheckAuthRegistersOneListener(t *testing.T) {
	fb := newFakeBackend()
	s := NewSessionStore(fb, nil)

	require.True(t, s.CheckAuth(context.Background()).Success)
	require.True(t, s.CheckAuth(context.Background()).Success)

	assert.Equal(t, 1, fb.count("OnAuthStateChange"))
	assert.Equal(t, 2, fb.count("GetSession"))
	assert.True(t, s.Initialized())
	assert.False(t, s.IsAuthenticated())

	sub, ok := s.Subscription()
	assert.True(t, ok)
	assert.NotEmpty(t, sub.ID)
}

func TestCheckAuthConcurrentRegistersOneListener(t *testing.T) {
	fb := newFakeBackend()
	s := NewSessionStore(fb, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.CheckAuth(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fb.count("OnAuthStateChange"))
}

func TestCheckAuthFailureStillInitializes(t *testing.T) {
	fb := newFakeBackend()
	fb.failWith("GetSession", errors.New("backend unreachable"))
	s := NewSessionStore(fb, nil)

	res := s.CheckAuth(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "backend unreachable", s.Err())
	assert.True(t, s.Initialized())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, fb.count("OnAuthStateChange"))
}

func TestCheckAuthFailureIgnoresStoredSessionReplay(t *testing.T) {
	fb := newFakeBackend()
	fb.replayInitial = true
	fb.session = &domain.Session{AccessToken: "stale", User: &domain.Identity{ID: "u1", Email: "c@x.com"}}
	fb.failWith("GetSession", errors.New("unexpected response: 502 Bad Gateway"))
	s := NewSessionStore(fb, nil)

	res := s.CheckAuth(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "unexpected response: 502 Bad Gateway", s.Err())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())

	// later transitions still flow through the listener
	fb.emit(domain.AuthEventSignedIn, fb.session)
	assert.True(t, s.IsAuthenticated())
}

func TestCheckAuthRestoresExistingSession(t *testing.T) {
	fb := newFakeBackend()
	fb.session = &domain.Session{AccessToken: "t", User: &domain.Identity{ID: "u1", Email: "c@x.com"}}
	s := NewSessionStore(fb, nil)

	require.True(t, s.CheckAuth(context.Background()).Success)
	assert.Equal(t, "u1", s.User().ID)
}

func TestAuthStateChangeMirrorsIdentity(t *testing.T) {
	fb := newFakeBackend()
	s := NewSessionStore(fb, nil)
	s.CheckAuth(context.Background())

	fb.emit(domain.AuthEventSignedIn, &domain.Session{User: &domain.Identity{ID: "u2", Email: "d@x.com"}})
	require.True(t, s.IsAuthenticated())
	assert.Equal(t, "d@x.com", s.User().Email)

	fb.emit(domain.AuthEventSignedOut, nil)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionClearError(t *testing.T) {
	fb := newFakeBackend()
	s := NewSessionStore(fb, nil)
	s.Login(context.Background(), "nobody@x.com", "pw")
	require.NotEmpty(t, s.Err())

	s.ClearError()
	assert.Empty(t, s.Err())
}

func TestUserReturnsCopy(t *testing.T) {
	fb := newFakeBackend()
	fb.users["a@x.com"] = "pw"
	s := NewSessionStore(fb, nil)
	s.Login(context.Background(), "a@x.com", "pw")

	u := s.User()
	u.Email = "mutated"
	assert.Equal(t, "a@x.com", s.User().Email)
}
