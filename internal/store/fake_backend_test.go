package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/pkg/errors"
)

// fakeBackend is an in-memory domain.Backend that counts every call.
type fakeBackend struct {
	mu sync.Mutex

	calls map[string]int
	errs  map[string]error

	// hooks run before the named call returns, outside the lock.
	hooks map[string]func(call int)

	users     map[string]string // email -> password
	session   *domain.Session
	listeners []domain.AuthListener

	notes      []*domain.Note
	folders    []*domain.Folder
	adminNotes []*domain.AdminNote
	adminUsers []*domain.AdminUser
	isAdmin    bool

	// partialUpdates makes UpdateNote report only the fields it was sent.
	partialUpdates bool

	// replayInitial makes OnAuthStateChange hand the stored session to a new
	// listener, the way the real backends do.
	replayInitial bool

	seq int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]int{},
		errs:  map[string]error{},
		hooks: map[string]func(int){},
		users: map[string]string{},
	}
}

func (f *fakeBackend) enter(name string) (int, error) {
	f.mu.Lock()
	f.calls[name]++
	n := f.calls[name]
	err := f.errs[name]
	hook := f.hooks[name]
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return n, err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) failWith(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if _, err := f.enter("SignIn"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	if pw, ok := f.users[email]; !ok || pw != password {
		f.mu.Unlock()
		return nil, errors.New("Invalid login credentials")
	}
	f.session = &domain.Session{
		AccessToken: "token-" + email,
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &domain.Identity{ID: "uid-" + email, Email: email},
	}
	session := *f.session
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l(domain.AuthEventSignedIn, &session)
	}
	return &session, nil
}

func (f *fakeBackend) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	if _, err := f.enter("SignUp"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return nil, errors.New("User already registered")
	}
	f.users[email] = password
	return &domain.Identity{ID: "uid-" + email, Email: email}, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	if _, err := f.enter("SignOut"); err != nil {
		return err
	}
	f.mu.Lock()
	f.session = nil
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l(domain.AuthEventSignedOut, nil)
	}
	return nil
}

func (f *fakeBackend) GetSession(ctx context.Context) (*domain.Session, error) {
	if _, err := f.enter("GetSession"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

func (f *fakeBackend) OnAuthStateChange(listener domain.AuthListener) domain.Subscription {
	f.enter("OnAuthStateChange")
	f.mu.Lock()
	f.listeners = append(f.listeners, listener)
	sub := domain.Subscription{ID: f.nextID("sub")}
	var stored *domain.Session
	if f.replayInitial && f.session != nil {
		s := *f.session
		stored = &s
	}
	replay := f.replayInitial
	f.mu.Unlock()

	if replay {
		listener(domain.AuthEventInitialSession, stored)
	}
	return sub
}

func (f *fakeBackend) emit(event domain.AuthEvent, session *domain.Session) {
	f.mu.Lock()
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()
	for _, l := range listeners {
		l(event, session)
	}
}

func (f *fakeBackend) ListNotes(ctx context.Context, q domain.NoteQuery) ([]*domain.Note, error) {
	if _, err := f.enter("ListNotes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Note, 0, len(f.notes))
	for _, n := range f.notes {
		if n.IsArchived && !q.IncludeArchived {
			continue
		}
		out = append(out, n.Clone())
	}
	slices.SortStableFunc(out, func(a, b *domain.Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (f *fakeBackend) InsertNote(ctx context.Context, in *domain.NoteInsert) (*domain.Note, error) {
	if _, err := f.enter("InsertNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	n := &domain.Note{
		ID:          f.nextID("note"),
		UserID:      in.UserID,
		Title:       in.Title,
		Content:     in.Content,
		ContentText: in.ContentText,
		FolderID:    in.FolderID,
		Tags:        in.Tags,
		IsFavorite:  in.IsFavorite,
		IsArchived:  in.IsArchived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.notes = append(f.notes, n.Clone())
	return n, nil
}

func (f *fakeBackend) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) (*domain.NotePatch, error) {
	if _, err := f.enter("UpdateNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.notes, func(n *domain.Note) bool { return n.ID == id })
	if i < 0 {
		return nil, errors.New("Note not found")
	}
	patch.ApplyTo(f.notes[i])
	f.notes[i].UpdatedAt = time.Now()
	if f.partialUpdates {
		p := patch
		updated := f.notes[i].UpdatedAt
		p.UpdatedAt = &updated
		return &p, nil
	}
	return domain.PatchFromNote(f.notes[i]), nil
}

func (f *fakeBackend) DeleteNote(ctx context.Context, id string) error {
	if _, err := f.enter("DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = slices.DeleteFunc(f.notes, func(n *domain.Note) bool { return n.ID == id })
	return nil
}

func (f *fakeBackend) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	if _, err := f.enter("ListFolders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Folder, 0, len(f.folders))
	for _, fo := range f.folders {
		out = append(out, fo.Clone())
	}
	slices.SortStableFunc(out, func(a, b *domain.Folder) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *fakeBackend) InsertFolder(ctx context.Context, in *domain.FolderInsert) (*domain.Folder, error) {
	if _, err := f.enter("InsertFolder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	fo := &domain.Folder{
		ID:          f.nextID("folder"),
		UserID:      in.UserID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.folders = append(f.folders, fo.Clone())
	return fo, nil
}

func (f *fakeBackend) IsCurrentUserAdmin(ctx context.Context) (bool, error) {
	if _, err := f.enter(domain.RPCIsCurrentUserAdmin); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isAdmin, nil
}

func (f *fakeBackend) GetAllNotesAdmin(ctx context.Context) ([]*domain.AdminNote, error) {
	if _, err := f.enter(domain.RPCGetAllNotesAdmin); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneAdminNotes(f.adminNotes), nil
}

func (f *fakeBackend) GetAllUsersAdmin(ctx context.Context) ([]*domain.AdminUser, error) {
	if _, err := f.enter(domain.RPCGetAllUsersAdmin); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneAdminUsers(f.adminUsers), nil
}

func (f *fakeBackend) AdminUpdateNote(ctx context.Context, id string, patch domain.NotePatch) error {
	_, err := f.enter(domain.RPCAdminUpdateNote)
	return err
}

func (f *fakeBackend) AdminDeleteNote(ctx context.Context, id string) error {
	_, err := f.enter(domain.RPCAdminDeleteNote)
	return err
}

func (f *fakeBackend) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	_, err := f.enter("SetUserAdmin")
	return err
}

// totalCalls sums the calls recorded for names.
func (f *fakeBackend) totalCalls(names ...string) int {
	total := 0
	for _, n := range names {
		total += f.count(n)
	}
	return total
}

var _ domain.Backend = (*fakeBackend)(nil)
