package store

import (
	"context"
	"slices"
	"strings"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/pkg/code"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
)

// NotesBackend is the part of the backend the personal store talks to.
type NotesBackend interface {
	domain.NoteTable
	domain.FolderTable
}

// IdentitySource supplies the locally known identity. *SessionStore
// satisfies it.
type IdentitySource interface {
	User() *domain.Identity
}

// NotesStore caches the current user's notes and folders.
//
// Overlapping fetches are resolved by generation: every FetchNotes (and
// FetchFolders) takes a new generation number and only the response of the
// latest issued fetch is applied to the cache. Older responses are
// returned to their caller with Stale set.
// NotesStore 个人笔记与文件夹缓存
type NotesStore struct {
	status

	backend  NotesBackend
	identity IdentitySource
	logger   *zap.Logger

	notes       []*domain.Note
	folders     []*domain.Folder
	currentNote *domain.Note
	searchQuery string

	notesGen   uint64
	foldersGen uint64
}

// NewNotesStore creates a NotesStore. A nil logger disables logging.
// NewNotesStore 创建个人笔记 store
func NewNotesStore(backend NotesBackend, identity IdentitySource, l *zap.Logger) *NotesStore {
	if l == nil {
		l = zap.NewNop()
	}
	return &NotesStore{
		backend:  backend,
		identity: identity,
		logger:   l.With(zap.String(logger.FieldStore, "notes")),
	}
}

// FetchNotes loads the non-archived notes, most recently updated first,
// and replaces the note cache.
// FetchNotes 拉取未归档笔记并替换缓存
func (s *NotesStore) FetchNotes(ctx context.Context) NotesResult {
	s.mu.Lock()
	s.beginLocked()
	s.notesGen++
	gen := s.notesGen
	s.mu.Unlock()

	rows, err := s.backend.ListNotes(ctx, domain.NoteQuery{})

	s.mu.Lock()
	defer s.mu.Unlock()
	stale := gen != s.notesGen
	if stale {
		s.endLocked(nil)
		s.logger.Debug("discarding stale notes response", zap.Uint64("generation", gen))
		if err != nil {
			return NotesResult{Result: failed(err), Stale: true}
		}
		return NotesResult{Result: succeeded(), Notes: cloneNotes(rows), Stale: true}
	}
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error fetching notes", zap.Error(err))
		return NotesResult{Result: failed(err)}
	}
	s.notes = cloneNotes(rows)
	return NotesResult{Result: succeeded(), Notes: cloneNotes(rows)}
}

// FetchFolders loads the folders ordered by name and replaces the folder cache.
// FetchFolders 拉取文件夹并替换缓存
func (s *NotesStore) FetchFolders(ctx context.Context) FoldersResult {
	s.mu.Lock()
	s.beginLocked()
	s.foldersGen++
	gen := s.foldersGen
	s.mu.Unlock()

	rows, err := s.backend.ListFolders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.foldersGen {
		s.endLocked(nil)
		if err != nil {
			return FoldersResult{Result: failed(err), Stale: true}
		}
		return FoldersResult{Result: succeeded(), Folders: cloneFolders(rows), Stale: true}
	}
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error fetching folders", zap.Error(err))
		return FoldersResult{Result: failed(err)}
	}
	s.folders = cloneFolders(rows)
	return FoldersResult{Result: succeeded(), Folders: cloneFolders(rows)}
}

// CreateNote inserts a note with defaults applied and puts the confirmed row
// at the front of the cache. It fails before any request when no identity
// is known.
// CreateNote 创建笔记，插入缓存头部
func (s *NotesStore) CreateNote(ctx context.Context, in *domain.NoteInput) NoteResult {
	s.begin()

	user := s.identity.User()
	if user == nil {
		s.mu.Lock()
		s.endLocked(ErrNotAuthenticated)
		s.mu.Unlock()
		return NoteResult{Result: failed(ErrNotAuthenticated)}
	}

	note, err := s.backend.InsertNote(ctx, newNoteInsert(user.ID, in))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error creating note", zap.String(logger.FieldUID, user.ID), zap.Error(err))
		return NoteResult{Result: failed(err)}
	}
	s.notes = slices.Insert(s.notes, 0, note.Clone())
	return NoteResult{Result: succeeded(), Note: note.Clone()}
}

func newNoteInsert(uid string, in *domain.NoteInput) *domain.NoteInsert {
	if in == nil {
		in = &domain.NoteInput{}
	}
	insert := &domain.NoteInsert{
		UserID:      uid,
		Title:       in.Title,
		Content:     in.Content,
		ContentText: in.ContentText,
		FolderID:    in.FolderID,
		Tags:        slices.Clone(in.Tags),
		IsFavorite:  in.IsFavorite,
		IsArchived:  in.IsArchived,
	}
	if insert.Title == "" {
		insert.Title = domain.DefaultNoteTitle
	}
	if insert.Content == nil {
		insert.Content = domain.EmptyDocument()
	}
	if insert.Tags == nil {
		insert.Tags = []string{}
	}
	if insert.FolderID != nil && *insert.FolderID == "" {
		insert.FolderID = nil
	}
	return insert
}

// UpdateNote sends a partial update and merges the fields the backend
// returns into the cached note. Fields absent from the response keep their
// cached values. A note that is not cached is left alone.
// UpdateNote 部分更新笔记，合并服务端返回的字段
func (s *NotesStore) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) NoteResult {
	s.begin()

	returned, err := s.backend.UpdateNote(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error updating note", zap.String(logger.FieldNoteID, id), zap.Error(err))
		return NoteResult{Result: failed(err)}
	}

	i := s.indexLocked(id)
	if i < 0 || returned == nil {
		return NoteResult{Result: succeeded()}
	}
	merged := s.notes[i].Clone()
	returned.ApplyTo(merged)
	s.notes[i] = merged
	return NoteResult{Result: succeeded(), Note: merged.Clone()}
}

// DeleteNote deletes a note and drops it from the cache once the backend
// has confirmed.
// DeleteNote 删除笔记，服务端确认后移出缓存
func (s *NotesStore) DeleteNote(ctx context.Context, id string) Result {
	s.begin()

	err := s.backend.DeleteNote(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error deleting note", zap.String(logger.FieldNoteID, id), zap.Error(err))
		return failed(err)
	}
	s.notes = slices.DeleteFunc(s.notes, func(n *domain.Note) bool { return n.ID == id })
	if s.currentNote != nil && s.currentNote.ID == id {
		s.currentNote = nil
	}
	return succeeded()
}

// ToggleFavorite inverts the favorite flag the cache holds at call time.
// It returns a Skipped result when the note is not cached.
// ToggleFavorite 切换收藏状态
func (s *NotesStore) ToggleFavorite(ctx context.Context, id string) NoteResult {
	s.mu.RLock()
	i := s.indexLocked(id)
	var current bool
	if i >= 0 {
		current = s.notes[i].IsFavorite
	}
	s.mu.RUnlock()

	if i < 0 {
		return NoteResult{Skipped: true}
	}
	return s.UpdateNote(ctx, id, domain.NotePatch{IsFavorite: domain.Ptr(!current)})
}

// CreateFolder inserts a folder and appends the confirmed row to the cache.
// Empty description and color fall back to "" and the default color.
// CreateFolder 创建文件夹，追加到缓存末尾
func (s *NotesStore) CreateFolder(ctx context.Context, name, description, color string) FolderResult {
	s.begin()

	user := s.identity.User()
	var precondition error
	switch {
	case user == nil:
		precondition = ErrNotAuthenticated
	case strings.TrimSpace(name) == "":
		precondition = code.ErrorFolderNameEmpty
	}
	if precondition != nil {
		s.mu.Lock()
		s.endLocked(precondition)
		s.mu.Unlock()
		return FolderResult{Result: failed(precondition)}
	}

	if color == "" {
		color = domain.DefaultFolderColor
	}
	folder, err := s.backend.InsertFolder(ctx, &domain.FolderInsert{
		UserID:      user.ID,
		Name:        name,
		Description: description,
		Color:       color,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(err)
	if err != nil {
		s.logger.Error("Error creating folder", zap.String(logger.FieldUID, user.ID), zap.Error(err))
		return FolderResult{Result: failed(err)}
	}
	s.folders = append(s.folders, folder.Clone())
	return FolderResult{Result: succeeded(), Folder: folder.Clone()}
}

// SetSearchQuery sets the query FilteredNotes matches against.
func (s *NotesStore) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
}

func (s *NotesStore) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetCurrentNote records the note being edited; nil clears it.
func (s *NotesStore) SetCurrentNote(n *domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentNote = n.Clone()
}

func (s *NotesStore) CurrentNote() *domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentNote.Clone()
}

// Notes returns a copy of the note cache in cache order.
// Notes 返回笔记缓存副本
func (s *NotesStore) Notes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// Folders returns a copy of the folder cache.
// Folders 返回文件夹缓存副本
func (s *NotesStore) Folders() []*domain.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFolders(s.folders)
}

// FilteredNotes returns the notes matching the search query.
func (s *NotesStore) FilteredNotes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterNotes(cloneNotes(s.notes), s.searchQuery)
}

// FavoriteNotes returns the favorite notes in cache order.
func (s *NotesStore) FavoriteNotes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FavoriteNotes(cloneNotes(s.notes))
}

// RecentNotes returns the RecentLimit most recently updated notes.
func (s *NotesStore) RecentNotes() []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RecentNotes(cloneNotes(s.notes), RecentLimit)
}

// Reset drops every cached value. Used on sign-out.
// Reset 清空所有缓存
func (s *NotesStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = nil
	s.folders = nil
	s.currentNote = nil
	s.searchQuery = ""
	s.err = ""
	s.notesGen++
	s.foldersGen++
}

func (s *NotesStore) indexLocked(id string) int {
	return slices.IndexFunc(s.notes, func(n *domain.Note) bool { return n.ID == id })
}

func cloneNotes(in []*domain.Note) []*domain.Note {
	if in == nil {
		return nil
	}
	out := make([]*domain.Note, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}

func cloneFolders(in []*domain.Folder) []*domain.Folder {
	if in == nil {
		return nil
	}
	out := make([]*domain.Folder, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}
