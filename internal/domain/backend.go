package domain

import "context"

// Subscription is the handle returned by OnAuthStateChange. No explicit
// unsubscribe is modeled; the handle only identifies the listener.
type Subscription struct {
	ID string
}

// AuthBackend is the session half of the hosted backend.
type AuthBackend interface {
	// SignIn authenticates and makes the returned session current.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp creates an account without establishing a session.
	SignUp(ctx context.Context, email, password string) (*Identity, error)

	// SignOut revokes the current session.
	SignOut(ctx context.Context) error

	// GetSession returns the current session, or nil when there is none.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers a listener for session transitions.
	OnAuthStateChange(listener AuthListener) Subscription
}

// NoteTable is row-level access to the notes collection. Ownership is
// enforced by the backend; callers never filter by owner.
type NoteTable interface {
	ListNotes(ctx context.Context, q NoteQuery) ([]*Note, error)
	InsertNote(ctx context.Context, note *NoteInsert) (*Note, error)

	// UpdateNote applies patch and returns the fields the backend reports
	// back. Absent fields in the returned patch were not reported.
	UpdateNote(ctx context.Context, id string, patch NotePatch) (*NotePatch, error)

	DeleteNote(ctx context.Context, id string) error
}

// FolderTable is row-level access to the folders collection.
type FolderTable interface {
	// ListFolders returns the caller's folders ordered by name.
	ListFolders(ctx context.Context) ([]*Folder, error)
	InsertFolder(ctx context.Context, folder *FolderInsert) (*Folder, error)
}

// AdminRPC is the privileged surface. Every call is re-authorized by the
// backend regardless of any client-side check.
type AdminRPC interface {
	// IsCurrentUserAdmin is the is_current_user_admin procedure.
	IsCurrentUserAdmin(ctx context.Context) (bool, error)

	// GetAllNotesAdmin is the get_all_notes_admin procedure.
	GetAllNotesAdmin(ctx context.Context) ([]*AdminNote, error)

	// GetAllUsersAdmin is the get_all_users_admin procedure.
	GetAllUsersAdmin(ctx context.Context) ([]*AdminUser, error)

	// AdminUpdateNote is the admin_update_note procedure.
	AdminUpdateNote(ctx context.Context, noteID string, patch NotePatch) error

	// AdminDeleteNote is the admin_delete_note procedure.
	AdminDeleteNote(ctx context.Context, noteID string) error

	// SetUserAdmin writes the user_profiles.is_admin column directly.
	SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error
}

// Backend is the full hosted-backend contract consumed by the stores.
type Backend interface {
	AuthBackend
	NoteTable
	FolderTable
	AdminRPC
}

// RPC procedure names exposed by the gateway.
const (
	RPCIsCurrentUserAdmin = "is_current_user_admin"
	RPCGetAllNotesAdmin   = "get_all_notes_admin"
	RPCGetAllUsersAdmin   = "get_all_users_admin"
	RPCAdminUpdateNote    = "admin_update_note"
	RPCAdminDeleteNote    = "admin_delete_note"
)
