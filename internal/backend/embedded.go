package backend

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/service"
	"github.com/haierkeys/fast-note-client/pkg/code"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"go.uber.org/zap"
)

// Services is the set of reference-backend services Embedded drives.
type Services struct {
	Auth    service.AuthService
	Notes   service.NoteService
	Folders service.FolderService
	Admin   service.AdminService
}

// Embedded is an in-process domain.Backend over the reference services.
// The access token lives in a TokenStorage exactly as it would for a
// remote client, so sessions are revocable and expire the same way.
type Embedded struct {
	svc    Services
	tokens TokenStorage
	events *authEvents
	logger *zap.Logger
	now    func() time.Time
}

// NewEmbedded creates an Embedded backend. A nil storage keeps the session
// in memory.
func NewEmbedded(svc Services, tokens TokenStorage, l *zap.Logger) *Embedded {
	if tokens == nil {
		tokens = NewMemoryTokenStorage()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Embedded{
		svc:    svc,
		tokens: tokens,
		events: newAuthEvents(),
		logger: l.With(zap.String(logger.FieldStore, "embedded")),
		now:    time.Now,
	}
}

func (b *Embedded) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := b.svc.Auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := b.tokens.Save(session); err != nil {
		return nil, err
	}
	b.events.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

func (b *Embedded) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	return b.svc.Auth.SignUp(ctx, email, password)
}

func (b *Embedded) SignOut(ctx context.Context) error {
	stored, err := b.tokens.Load()
	if err != nil {
		return err
	}
	if stored != nil {
		err := b.svc.Auth.SignOut(ctx, stored.AccessToken)
		// 已失效的 token 视为已登出
		if err != nil && !errors.Is(err, code.ErrorInvalidUserAuthToken) {
			return err
		}
	}
	if err := b.tokens.Clear(); err != nil {
		return err
	}
	b.events.emit(domain.AuthEventSignedOut, nil)
	return nil
}

// GetSession validates the stored token against the session table. A
// revoked or expired token is dropped and reported as no session.
func (b *Embedded) GetSession(ctx context.Context) (*domain.Session, error) {
	stored, err := b.tokens.Load()
	if err != nil || stored == nil {
		return nil, err
	}
	_, session, err := b.svc.Auth.Authenticate(ctx, stored.AccessToken)
	if err != nil {
		if errors.Is(err, code.ErrorInvalidUserAuthToken) || errors.Is(err, code.ErrorNotUserAuthToken) {
			b.logger.Debug("stored session is no longer valid", zap.Error(err))
			if err := b.tokens.Clear(); err != nil {
				return nil, err
			}
			b.events.emit(domain.AuthEventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// OnAuthStateChange registers listener and immediately delivers
// INITIAL_SESSION with the stored session (nil when signed out or expired).
func (b *Embedded) OnAuthStateChange(listener domain.AuthListener) domain.Subscription {
	sub := b.events.subscribe(listener)
	stored, _ := b.tokens.Load()
	if stored != nil && stored.Expired(b.now()) {
		stored = nil
	}
	listener(domain.AuthEventInitialSession, stored)
	return sub
}

// uid resolves the caller from the stored token.
func (b *Embedded) uid(ctx context.Context) (string, error) {
	stored, err := b.tokens.Load()
	if err != nil {
		return "", err
	}
	if stored == nil {
		return "", code.ErrorNotUserAuthToken
	}
	user, _, err := b.svc.Auth.Authenticate(ctx, stored.AccessToken)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (b *Embedded) ListNotes(ctx context.Context, q domain.NoteQuery) ([]*domain.Note, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Notes.List(ctx, uid, q)
}

func (b *Embedded) InsertNote(ctx context.Context, note *domain.NoteInsert) (*domain.Note, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Notes.Create(ctx, uid, note)
}

func (b *Embedded) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) (*domain.NotePatch, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Notes.Update(ctx, uid, id, patch)
}

func (b *Embedded) DeleteNote(ctx context.Context, id string) error {
	uid, err := b.uid(ctx)
	if err != nil {
		return err
	}
	return b.svc.Notes.Delete(ctx, uid, id)
}

func (b *Embedded) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Folders.List(ctx, uid)
}

func (b *Embedded) InsertFolder(ctx context.Context, folder *domain.FolderInsert) (*domain.Folder, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Folders.Create(ctx, uid, folder)
}

func (b *Embedded) IsCurrentUserAdmin(ctx context.Context) (bool, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return false, err
	}
	return b.svc.Admin.IsAdmin(ctx, uid)
}

func (b *Embedded) GetAllNotesAdmin(ctx context.Context) ([]*domain.AdminNote, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Admin.AllNotes(ctx, uid)
}

func (b *Embedded) GetAllUsersAdmin(ctx context.Context) ([]*domain.AdminUser, error) {
	uid, err := b.uid(ctx)
	if err != nil {
		return nil, err
	}
	return b.svc.Admin.AllUsers(ctx, uid)
}

func (b *Embedded) AdminUpdateNote(ctx context.Context, noteID string, patch domain.NotePatch) error {
	uid, err := b.uid(ctx)
	if err != nil {
		return err
	}
	return b.svc.Admin.UpdateNote(ctx, uid, noteID, patch)
}

func (b *Embedded) AdminDeleteNote(ctx context.Context, noteID string) error {
	uid, err := b.uid(ctx)
	if err != nil {
		return err
	}
	return b.svc.Admin.DeleteNote(ctx, uid, noteID)
}

func (b *Embedded) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	uid, err := b.uid(ctx)
	if err != nil {
		return err
	}
	return b.svc.Admin.SetUserAdmin(ctx, uid, userID, isAdmin)
}

var _ domain.Backend = (*Embedded)(nil)
