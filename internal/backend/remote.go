package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/dto"
	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"
	"github.com/haierkeys/fast-note-client/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RemoteConfig points a Remote backend at a gateway.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RemoteError is a non-success envelope returned by the gateway.
type RemoteError struct {
	Code       int
	Message    string
	Details    []string
	HTTPStatus int
}

func (e *RemoteError) Error() string {
	if len(e.Details) > 0 && e.Details[0] != "" {
		return e.Message + ": " + e.Details[0]
	}
	return e.Message
}

// Is matches a *code.Code with the same numeric code, so callers can keep
// using errors.Is against the shared catalogue.
func (e *RemoteError) Is(target error) bool {
	if c, ok := target.(*code.Code); ok {
		return c.Code() == e.Code
	}
	return false
}

// envelope is the gateway's unified response body. Success responses carry
// details as a joined string, error responses as a list.
type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details any             `json:"details"`
}

func (e *envelope) details() []string {
	switch d := e.Details.(type) {
	case string:
		if d == "" {
			return nil
		}
		return strings.Split(d, ",")
	case []any:
		out := make([]string, 0, len(d))
		for _, v := range d {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}
	return nil
}

// Remote is a domain.Backend that talks to the HTTP gateway.
type Remote struct {
	baseURL string
	client  *http.Client
	tokens  TokenStorage
	events  *authEvents
	logger  *zap.Logger
	now     func() time.Time
}

// NewRemote creates a Remote backend. BaseURL is required.
func NewRemote(cfg RemoteConfig, tokens TokenStorage, l *zap.Logger) (*Remote, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote backend requires a base url")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, errors.Wrap(err, "invalid base url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = NewMemoryTokenStorage()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Remote{
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		events:  newAuthEvents(),
		logger:  l.With(zap.String(logger.FieldStore, "remote")),
		now:     time.Now,
	}, nil
}

func (r *Remote) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session := &domain.Session{}
	if err := r.do(ctx, http.MethodPost, "/auth/v1/token", nil, dto.CredentialsRequest{Email: email, Password: password}, false, session); err != nil {
		return nil, err
	}
	if err := r.tokens.Save(session); err != nil {
		return nil, err
	}
	r.events.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

func (r *Remote) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity := &domain.Identity{}
	if err := r.do(ctx, http.MethodPost, "/auth/v1/signup", nil, dto.CredentialsRequest{Email: email, Password: password}, false, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *Remote) SignOut(ctx context.Context) error {
	stored, err := r.tokens.Load()
	if err != nil {
		return err
	}
	if stored != nil {
		err := r.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, true, nil)
		if err != nil && !isTokenError(err) {
			return err
		}
	}
	if err := r.tokens.Clear(); err != nil {
		return err
	}
	r.events.emit(domain.AuthEventSignedOut, nil)
	return nil
}

// GetSession asks the gateway whether the stored token is still live. A
// locally expired, revoked or rejected token is dropped and reported as no
// session.
func (r *Remote) GetSession(ctx context.Context) (*domain.Session, error) {
	stored, err := r.tokens.Load()
	if err != nil || stored == nil {
		return nil, err
	}
	session := &domain.Session{}
	if err := r.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, true, session); err != nil {
		if isTokenError(err) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

func (r *Remote) OnAuthStateChange(listener domain.AuthListener) domain.Subscription {
	sub := r.events.subscribe(listener)
	stored, _ := r.tokens.Load()
	if stored != nil && r.expired(stored) {
		stored = nil
	}
	listener(domain.AuthEventInitialSession, stored)
	return sub
}

func (r *Remote) ListNotes(ctx context.Context, q domain.NoteQuery) ([]*domain.Note, error) {
	var query url.Values
	if q.IncludeArchived {
		query = url.Values{"include_archived": {"true"}}
	}
	var notes []*domain.Note
	if err := r.do(ctx, http.MethodGet, "/rest/v1/notes", query, nil, true, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *Remote) InsertNote(ctx context.Context, note *domain.NoteInsert) (*domain.Note, error) {
	out := &domain.Note{}
	if err := r.do(ctx, http.MethodPost, "/rest/v1/notes", nil, note, true, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Remote) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) (*domain.NotePatch, error) {
	out := &domain.NotePatch{}
	if err := r.do(ctx, http.MethodPatch, "/rest/v1/notes/"+url.PathEscape(id), nil, patch, true, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Remote) DeleteNote(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/rest/v1/notes/"+url.PathEscape(id), nil, nil, true, nil)
}

func (r *Remote) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	var folders []*domain.Folder
	if err := r.do(ctx, http.MethodGet, "/rest/v1/folders", nil, nil, true, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *Remote) InsertFolder(ctx context.Context, folder *domain.FolderInsert) (*domain.Folder, error) {
	out := &domain.Folder{}
	if err := r.do(ctx, http.MethodPost, "/rest/v1/folders", nil, folder, true, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Remote) rpc(ctx context.Context, name string, body any, out any) error {
	if body == nil {
		body = struct{}{}
	}
	return r.do(ctx, http.MethodPost, "/rest/v1/rpc/"+name, nil, body, true, out)
}

func (r *Remote) IsCurrentUserAdmin(ctx context.Context) (bool, error) {
	var ok bool
	if err := r.rpc(ctx, domain.RPCIsCurrentUserAdmin, nil, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Remote) GetAllNotesAdmin(ctx context.Context) ([]*domain.AdminNote, error) {
	var notes []*domain.AdminNote
	if err := r.rpc(ctx, domain.RPCGetAllNotesAdmin, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *Remote) GetAllUsersAdmin(ctx context.Context) ([]*domain.AdminUser, error) {
	var users []*domain.AdminUser
	if err := r.rpc(ctx, domain.RPCGetAllUsersAdmin, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Remote) AdminUpdateNote(ctx context.Context, noteID string, patch domain.NotePatch) error {
	return r.rpc(ctx, domain.RPCAdminUpdateNote, dto.AdminUpdateNoteRequest{NoteID: noteID, Updates: patch}, nil)
}

func (r *Remote) AdminDeleteNote(ctx context.Context, noteID string) error {
	return r.rpc(ctx, domain.RPCAdminDeleteNote, dto.AdminDeleteNoteRequest{NoteID: noteID}, nil)
}

func (r *Remote) SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error {
	body := dto.UserProfilePatch{IsAdmin: &isAdmin}
	return r.do(ctx, http.MethodPatch, "/rest/v1/user_profiles/"+url.PathEscape(userID), nil, body, true, nil)
}

// expired reports whether the stored session is past its expiry, using the
// token's own claim when the stored expiry is missing.
func (r *Remote) expired(s *domain.Session) bool {
	if !s.ExpiresAt.IsZero() {
		return s.Expired(r.now())
	}
	exp, err := app.PeekTokenExpiry(s.AccessToken)
	if err != nil {
		return true
	}
	return !r.now().Before(exp)
}

// dropSession forgets the stored token and tells listeners.
func (r *Remote) dropSession(reason string) {
	if err := r.tokens.Clear(); err != nil {
		r.logger.Warn("clear session", zap.Error(err))
	}
	r.logger.Info("session dropped", zap.String("reason", reason))
	r.events.emit(domain.AuthEventSignedOut, nil)
}

func (r *Remote) do(ctx context.Context, method, path string, query url.Values, body any, auth bool, out any) error {
	var token string
	if auth {
		stored, err := r.tokens.Load()
		if err != nil {
			return err
		}
		if stored == nil {
			return code.ErrorNotUserAuthToken
		}
		if r.expired(stored) {
			r.dropSession("expired")
			return code.ErrorInvalidUserAuthToken
		}
		token = stored.AccessToken
	}

	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("request failed", zap.String(logger.FieldMethod, method+" "+path), zap.Error(err))
		return errors.Wrap(err, method+" "+path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	r.logger.Debug("request",
		zap.String(logger.FieldMethod, method+" "+path),
		zap.Int("status", resp.StatusCode),
		zap.Duration(logger.FieldDuration, time.Since(start)))

	env := &envelope{}
	if err := sonic.Unmarshal(raw, env); err != nil || env.Code == 0 {
		return &RemoteError{
			Code:       code.ErrorServerInternal.Code(),
			Message:    fmt.Sprintf("unexpected response: %s", resp.Status),
			HTTPStatus: resp.StatusCode,
		}
	}
	if !env.Status {
		rerr := &RemoteError{
			Code:       env.Code,
			Message:    env.Message,
			Details:    env.details(),
			HTTPStatus: resp.StatusCode,
		}
		if auth && isTokenError(rerr) {
			r.dropSession("rejected")
		}
		return rerr
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := sonic.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}

func isTokenError(err error) bool {
	return errors.Is(err, code.ErrorInvalidUserAuthToken) || errors.Is(err, code.ErrorNotUserAuthToken)
}

var _ domain.Backend = (*Remote)(nil)
