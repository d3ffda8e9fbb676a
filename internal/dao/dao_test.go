package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngine(DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "db", "test.sqlite3"),
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db, context.Background())
}

func TestNoteRepositoryOwnerScoping(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	mine, err := repo.Create(ctx, &domain.Note{UserID: "u1", Title: "mine", Content: domain.EmptyDocument(), Tags: []string{"a"}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Note{UserID: "u2", Title: "theirs"})
	require.NoError(t, err)

	list, err := repo.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Title)
	assert.Equal(t, []string{"a"}, list[0].Tags)
	assert.Equal(t, "doc", list[0].Content["type"])

	_, err = repo.GetByID(ctx, mine.ID, "u2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Update(ctx, mine.ID, "u2", domain.NotePatch{Title: domain.Ptr("hijack")})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, mine.ID, "u2"), gorm.ErrRecordNotFound)
}

func TestNoteRepositoryListOrderAndArchive(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	first, err := repo.Create(ctx, &domain.Note{UserID: "u1", Title: "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := repo.Create(ctx, &domain.Note{UserID: "u1", Title: "second"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = repo.Create(ctx, &domain.Note{UserID: "u1", Title: "archived", IsArchived: true})
	require.NoError(t, err)

	list, err := repo.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	all, err := repo.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNoteRepositoryPartialUpdate(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()
	folder := "f1"

	n, err := repo.Create(ctx, &domain.Note{UserID: "u1", Title: "t", ContentText: "body", FolderID: &folder, IsFavorite: true})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, n.ID, "u1", domain.NotePatch{Title: domain.Ptr("new"), Tags: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "body", updated.ContentText)
	assert.Equal(t, []string{"x", "y"}, updated.Tags)
	assert.True(t, updated.IsFavorite)
	require.NotNil(t, updated.FolderID)

	detached, err := repo.Update(ctx, n.ID, "u1", domain.NotePatch{FolderID: domain.Ptr(""), IsFavorite: domain.Ptr(false)})
	require.NoError(t, err)
	assert.Nil(t, detached.FolderID)
	assert.False(t, detached.IsFavorite)
	assert.Equal(t, "new", detached.Title)
}

func TestNoteRepositoryAdmin(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	a, err := repo.Create(ctx, &domain.Note{UserID: "u1", Title: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Note{UserID: "u1", Title: "b"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Note{UserID: "u2", Title: "c"})
	require.NoError(t, err)

	all, err := repo.AdminList(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	counts, err := repo.CountByUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"u1": 2, "u2": 1}, counts)

	updated, err := repo.AdminUpdate(ctx, a.ID, domain.NotePatch{IsArchived: domain.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsArchived)
	assert.Equal(t, "u1", updated.UserID)

	require.NoError(t, repo.AdminDelete(ctx, a.ID))
	assert.ErrorIs(t, repo.AdminDelete(ctx, a.ID), gorm.ErrRecordNotFound)
}

func TestFolderRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewFolderRepository(d)
	ctx := context.Background()

	for _, name := range []string{"Work", "Archive", "Home"} {
		_, err := repo.Create(ctx, &domain.Folder{UserID: "u1", Name: name, Color: domain.DefaultFolderColor})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Folder{UserID: "u2", Name: "Other"})
	require.NoError(t, err)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Archive", list[0].Name)
	assert.Equal(t, "Home", list[1].Name)
	assert.Equal(t, "Work", list[2].Name)
	assert.Equal(t, domain.DefaultFolderColor, list[0].Color)
	assert.NotEmpty(t, list[0].ID)

	_, err = repo.GetByID(ctx, list[0].ID, "u2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryProfile(t *testing.T) {
	d := newTestDao(t)
	repo := NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)

	require.NoError(t, repo.UpdateIsAdmin(ctx, u.ID, true))
	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "hash", got.Password)

	require.NoError(t, repo.UpdateIsAdmin(ctx, u.ID, false))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)

	assert.ErrorIs(t, repo.UpdateIsAdmin(ctx, "missing", true), gorm.ErrRecordNotFound)

	at := time.Now()
	require.NoError(t, repo.UpdateLastSignIn(ctx, u.ID, at))
	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].LastSignInAt)

	_, err = repo.Create(ctx, &domain.User{Email: "a@x.com", Password: "hash"})
	assert.Error(t, err)
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	d := newTestDao(t)
	repo := NewSessionRepository(d)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.AuthSession{ID: "s1", UserID: "u1", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.AuthSession{ID: "s2", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	s, err := repo.GetByID(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	require.NoError(t, repo.Delete(ctx, "s2"))
	_, err = repo.GetByID(ctx, "s2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
