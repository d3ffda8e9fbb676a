package backend_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/backend"
	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/store"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg, err := app.NewDefaultConfig()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "embedded.sqlite3")
	cfg.User.AdminEmails = []string{"admin@x.com"}

	a, err := app.OpenApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

type recorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recorder) listen(ev domain.AuthEvent, _ *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) seen() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func TestEmbeddedSessionLifecycle(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	b := backend.NewEmbedded(a.Services(), nil, nil)

	rec := &recorder{}
	b.OnAuthStateChange(rec.listen)
	assert.Equal(t, []domain.AuthEvent{domain.AuthEventInitialSession}, rec.seen())

	_, err := b.ListNotes(ctx, domain.NoteQuery{})
	assert.True(t, errors.Is(err, code.ErrorNotUserAuthToken))

	identity, err := b.SignUp(ctx, "user@x.com", "secret1")
	require.NoError(t, err)

	session, err := b.SignIn(ctx, "user@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, session.User.ID)

	current, err := b.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.AccessToken, current.AccessToken)

	// revoked elsewhere: the next lookup drops the stored token
	require.NoError(t, a.AuthService.SignOut(ctx, session.AccessToken))
	current, err = b.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	// signing out without a session is still a clean sign-out
	require.NoError(t, b.SignOut(ctx))

	assert.Equal(t, []domain.AuthEvent{
		domain.AuthEventInitialSession,
		domain.AuthEventSignedIn,
		domain.AuthEventSignedOut,
		domain.AuthEventSignedOut,
	}, rec.seen())
}

func TestEmbeddedInitialSessionCarriesStoredToken(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	tokens := backend.NewFileTokenStorage(filepath.Join(t.TempDir(), "session.json"))

	first := backend.NewEmbedded(a.Services(), tokens, nil)
	_, err := first.SignUp(ctx, "user@x.com", "secret1")
	require.NoError(t, err)
	_, err = first.SignIn(ctx, "user@x.com", "secret1")
	require.NoError(t, err)

	// a fresh process over the same session file
	second := backend.NewEmbedded(a.Services(), tokens, nil)
	var initial *domain.Session
	second.OnAuthStateChange(func(ev domain.AuthEvent, s *domain.Session) {
		if ev == domain.AuthEventInitialSession {
			initial = s
		}
	})
	require.NotNil(t, initial)
	assert.Equal(t, "user@x.com", initial.User.Email)

	session := store.NewSessionStore(second, nil)
	require.True(t, session.CheckAuth(ctx).Success)
	assert.Equal(t, "user@x.com", session.User().Email)
}

func TestEmbeddedStoresEndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	userBackend := backend.NewEmbedded(a.Services(), nil, nil)
	userSession := store.NewSessionStore(userBackend, nil)
	userNotes := store.NewNotesStore(userBackend, userSession, nil)

	require.True(t, userSession.Register(ctx, "user@x.com", "secret1").Success)
	require.True(t, userSession.Login(ctx, "user@x.com", "secret1").Success)

	empty := userNotes.CreateFolder(ctx, "   ", "", "")
	assert.False(t, empty.Success)

	created := userNotes.CreateNote(ctx, &domain.NoteInput{Title: "draft", ContentText: "hello world"})
	require.True(t, created.Success, created.Error)
	archived := userNotes.CreateNote(ctx, &domain.NoteInput{Title: "old", IsArchived: true})
	require.True(t, archived.Success, archived.Error)

	fetched := userNotes.FetchNotes(ctx)
	require.True(t, fetched.Success, fetched.Error)
	require.Len(t, fetched.Notes, 1)
	assert.Equal(t, "draft", fetched.Notes[0].Title)

	userNotes.SetSearchQuery("WORLD")
	assert.Len(t, userNotes.FilteredNotes(), 1)

	adminBackend := backend.NewEmbedded(a.Services(), nil, nil)
	adminSession := store.NewSessionStore(adminBackend, nil)
	admin := store.NewAdminStore(adminBackend, nil)
	require.True(t, adminSession.Register(ctx, "admin@x.com", "secret2").Success)
	require.True(t, adminSession.Login(ctx, "admin@x.com", "secret2").Success)

	require.True(t, admin.InitializeAdminData(ctx))
	assert.Len(t, admin.AllNotes(), 2)
	assert.Len(t, admin.NotesByUser("user@x.com"), 2)
	assert.Len(t, admin.RegularUsers(), 1)

	require.True(t, admin.AdminDeleteNote(ctx, created.Note.ID).Success)

	again := userNotes.FetchNotes(ctx)
	require.True(t, again.Success)
	assert.Empty(t, again.Notes)

	// user cannot reach the privileged surface even by calling the backend directly
	err := userBackend.AdminDeleteNote(ctx, archived.Note.ID)
	assert.True(t, errors.Is(err, code.ErrorAdminRequired))
}
