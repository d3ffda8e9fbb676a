package store

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminRPCs = []string{
	domain.RPCGetAllNotesAdmin,
	domain.RPCGetAllUsersAdmin,
	domain.RPCAdminUpdateNote,
	domain.RPCAdminDeleteNote,
	"SetUserAdmin",
}

func seededAdminBackend() *fakeBackend {
	fb := newFakeBackend()
	fb.isAdmin = true
	folder := "f1"
	fb.adminNotes = []*domain.AdminNote{
		{NoteID: "n1", NoteTitle: "one", NoteFolderID: &folder, NoteTags: []string{"t"}, NoteIsFavorite: true, UserID: "u1", UserEmail: "a@x.com"},
		{NoteID: "n2", NoteTitle: "two", UserID: "u2", UserEmail: "b@x.com"},
		{NoteID: "n3", NoteTitle: "three", UserID: "u1", UserEmail: "a@x.com"},
	}
	fb.adminUsers = []*domain.AdminUser{
		{UserID: "u1", Email: "a@x.com", IsAdmin: true, NoteCount: 2},
		{UserID: "u2", Email: "b@x.com", NoteCount: 1},
	}
	return fb
}

func TestPrivilegedActionsRequireGrant(t *testing.T) {
	for _, state := range []string{"unknown", "denied"} {
		t.Run(state, func(t *testing.T) {
			fb := seededAdminBackend()
			s := NewAdminStore(fb, nil)
			if state == "denied" {
				fb.isAdmin = false
				require.False(t, s.CheckAdminStatus(context.Background()))
				require.Equal(t, PrivilegeDenied, s.Privilege())
			}
			ctx := context.Background()

			results := []Result{
				s.FetchAllNotes(ctx).Result,
				s.FetchAllUsers(ctx).Result,
				s.AdminUpdateNote(ctx, "n1", domain.NotePatch{Title: domain.Ptr("x")}).Result,
				s.AdminDeleteNote(ctx, "n1"),
				s.MakeUserAdmin(ctx, "u2"),
				s.RemoveAdminPrivileges(ctx, "u1"),
			}

			for _, r := range results {
				assert.Equal(t, Result{Success: false, Error: "Admin privileges required"}, r)
			}
			assert.Zero(t, fb.totalCalls(adminRPCs...))
			assert.False(t, s.Loading())
		})
	}
}

func TestCheckAdminStatusFailsClosed(t *testing.T) {
	fb := seededAdminBackend()
	fb.failWith(domain.RPCIsCurrentUserAdmin, errors.New("rpc failed"))
	s := NewAdminStore(fb, nil)

	assert.False(t, s.CheckAdminStatus(context.Background()))
	assert.Equal(t, PrivilegeDenied, s.Privilege())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, "rpc failed", s.Err())
}

func TestCheckAdminStatusGranted(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	assert.Equal(t, PrivilegeUnknown, s.Privilege())

	assert.True(t, s.CheckAdminStatus(context.Background()))
	assert.Equal(t, PrivilegeGranted, s.Privilege())
	assert.True(t, s.IsAdmin())
}

func TestCheckAdminStatusPassesThroughChecking(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)

	var during PrivilegeState
	fb.hooks[domain.RPCIsCurrentUserAdmin] = func(int) { during = s.Privilege() }

	s.CheckAdminStatus(context.Background())
	assert.Equal(t, PrivilegeChecking, during)
}

func TestInitializeAdminDataDenied(t *testing.T) {
	fb := seededAdminBackend()
	fb.isAdmin = false
	s := NewAdminStore(fb, nil)

	assert.False(t, s.InitializeAdminData(context.Background()))
	assert.Empty(t, s.AllNotes())
	assert.Empty(t, s.AllUsers())
	assert.Zero(t, fb.count(domain.RPCGetAllNotesAdmin))
	assert.Zero(t, fb.count(domain.RPCGetAllUsersAdmin))
}

func TestInitializeAdminDataFetchesConcurrently(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)

	// Each fetch waits for the other to start; a sequential implementation
	// would time out.
	notesStarted := make(chan struct{})
	usersStarted := make(chan struct{})
	fb.hooks[domain.RPCGetAllNotesAdmin] = func(int) {
		close(notesStarted)
		select {
		case <-usersStarted:
		case <-time.After(2 * time.Second):
		}
	}
	fb.hooks[domain.RPCGetAllUsersAdmin] = func(int) {
		close(usersStarted)
		select {
		case <-notesStarted:
		case <-time.After(2 * time.Second):
		}
	}

	start := time.Now()
	assert.True(t, s.InitializeAdminData(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 3, s.TotalNotesCount())
	assert.Equal(t, 2, s.TotalUsersCount())
}

func TestInitializeAdminDataIndependentFailures(t *testing.T) {
	fb := seededAdminBackend()
	fb.failWith(domain.RPCGetAllNotesAdmin, errors.New("notes unavailable"))
	s := NewAdminStore(fb, nil)

	assert.True(t, s.InitializeAdminData(context.Background()))
	assert.Empty(t, s.AllNotes())
	assert.Len(t, s.AllUsers(), 2)
}

func TestAdminUpdateNoteMapsOnlyPresentFields(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	require.True(t, s.InitializeAdminData(context.Background()))
	before := s.AllNotes()[0]

	res := s.AdminUpdateNote(context.Background(), "n1", domain.NotePatch{IsFavorite: domain.Ptr(false)})

	require.True(t, res.Success)
	after := s.AllNotes()[0]
	assert.False(t, after.NoteIsFavorite)
	assert.Equal(t, fixed, after.NoteUpdatedAt)

	after.NoteIsFavorite = before.NoteIsFavorite
	after.NoteUpdatedAt = before.NoteUpdatedAt
	assert.Equal(t, before, after, "only note_is_favorite and the timestamp may change")
}

func TestAdminUpdateNoteDetachFolder(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))

	res := s.AdminUpdateNote(context.Background(), "n1", domain.NotePatch{FolderID: domain.Ptr(""), Title: domain.Ptr("renamed")})

	require.True(t, res.Success)
	assert.Nil(t, res.Note.NoteFolderID)
	assert.Equal(t, "renamed", res.Note.NoteTitle)
	assert.Equal(t, []string{"t"}, res.Note.NoteTags)
}

func TestAdminUpdateNoteFailureLeavesCache(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))
	fb.failWith(domain.RPCAdminUpdateNote, errors.New("denied by backend"))

	res := s.AdminUpdateNote(context.Background(), "n1", domain.NotePatch{Title: domain.Ptr("x")})

	assert.False(t, res.Success)
	assert.Equal(t, "one", s.AllNotes()[0].NoteTitle)
	assert.Equal(t, "denied by backend", s.Err())
}

func TestAdminDeleteNote(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))

	fb.failWith(domain.RPCAdminDeleteNote, errors.New("boom"))
	assert.False(t, s.AdminDeleteNote(context.Background(), "n2").Success)
	assert.Equal(t, 3, s.TotalNotesCount())

	fb.failWith(domain.RPCAdminDeleteNote, nil)
	assert.True(t, s.AdminDeleteNote(context.Background(), "n2").Success)
	assert.Equal(t, 2, s.TotalNotesCount())
	for _, n := range s.AllNotes() {
		assert.NotEqual(t, "n2", n.NoteID)
	}
}

func TestUserPrivilegeChanges(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))

	require.True(t, s.MakeUserAdmin(context.Background(), "u2").Success)
	assert.Len(t, s.AdminUsers(), 2)
	assert.Empty(t, s.RegularUsers())

	require.True(t, s.RemoveAdminPrivileges(context.Background(), "u1").Success)
	admins := s.AdminUsers()
	require.Len(t, admins, 1)
	assert.Equal(t, "u2", admins[0].UserID)
	assert.Equal(t, 2, fb.count("SetUserAdmin"))

	fb.failWith("SetUserAdmin", errors.New("constraint"))
	assert.False(t, s.MakeUserAdmin(context.Background(), "u1").Success)
	assert.Len(t, s.AdminUsers(), 1)
}

func TestNotesByUser(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))

	got := s.NotesByUser("a@x.com")
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].NoteID)
	assert.Equal(t, "n3", got[1].NoteID)
	assert.Empty(t, s.NotesByUser("nobody@x.com"))
}

func TestClearAdminData(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.InitializeAdminData(context.Background()))
	calls := fb.totalCalls(adminRPCs...)

	s.ClearAdminData()

	assert.Equal(t, PrivilegeUnknown, s.Privilege())
	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.AllNotes())
	assert.Empty(t, s.AllUsers())
	assert.Empty(t, s.Err())
	assert.Equal(t, calls, fb.totalCalls(adminRPCs...))

	assert.False(t, s.FetchAllNotes(context.Background()).Success)
}

func TestClearAdminDataDropsInFlightFetch(t *testing.T) {
	fb := seededAdminBackend()
	s := NewAdminStore(fb, nil)
	require.True(t, s.CheckAdminStatus(context.Background()))

	fb.hooks[domain.RPCGetAllNotesAdmin] = func(int) { s.ClearAdminData() }

	res := s.FetchAllNotes(context.Background())
	assert.True(t, res.Success)
	assert.Empty(t, s.AllNotes())
}
