package routers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/backend"
	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/middleware"
	"github.com/haierkeys/fast-note-client/internal/store"
	pkgapp "github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gateway struct {
	app      *app.App
	server   *httptest.Server
	registry *prometheus.Registry
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := app.NewDefaultConfig()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "gateway.sqlite3")
	cfg.User.AdminEmails = []string{"admin@x.com"}
	cfg.Server.AuthRateLimit = 1000

	a, err := app.OpenApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	uni, err := pkgapp.InitValidator()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	ts := httptest.NewServer(NewRouter(a, uni, middleware.NewMetrics(reg)))
	t.Cleanup(ts.Close)

	return &gateway{app: a, server: ts, registry: reg}
}

type client struct {
	backend *backend.Remote
	session *store.SessionStore
	notes   *store.NotesStore
	admin   *store.AdminStore
}

func (g *gateway) newClient(t *testing.T) *client {
	t.Helper()
	remote, err := backend.NewRemote(backend.RemoteConfig{BaseURL: g.server.URL, Timeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)
	session := store.NewSessionStore(remote, nil)
	return &client{
		backend: remote,
		session: session,
		notes:   store.NewNotesStore(remote, session, nil),
		admin:   store.NewAdminStore(remote, nil),
	}
}

func (g *gateway) get(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(g.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestGatewayPersonalNotesRoundTrip(t *testing.T) {
	g := newGateway(t)
	c := g.newClient(t)
	ctx := context.Background()

	reg := c.session.Register(ctx, "user@x.com", "secret1")
	require.True(t, reg.Success, reg.Error)
	assert.Equal(t, "user@x.com", reg.User.Email)
	assert.False(t, c.session.IsAuthenticated())

	require.True(t, c.session.Login(ctx, "user@x.com", "secret1").Success)
	require.True(t, c.session.IsAuthenticated())

	folder := c.notes.CreateFolder(ctx, "Work", "", "")
	require.True(t, folder.Success, folder.Error)
	assert.Equal(t, domain.DefaultFolderColor, folder.Folder.Color)

	created := c.notes.CreateNote(ctx, &domain.NoteInput{Title: "plan", FolderID: &folder.Folder.ID, Tags: []string{"q3"}})
	require.True(t, created.Success, created.Error)
	assert.Equal(t, reg.User.ID, created.Note.UserID)
	assert.Equal(t, []string{"q3"}, created.Note.Tags)

	fav := c.notes.ToggleFavorite(ctx, created.Note.ID)
	require.True(t, fav.Success, fav.Error)
	assert.True(t, fav.Note.IsFavorite)

	// folder_id: null detaches the note
	upd := c.notes.UpdateNote(ctx, created.Note.ID, domain.NotePatch{Title: domain.Ptr("plan v2"), FolderID: domain.Ptr("")})
	require.True(t, upd.Success, upd.Error)
	assert.Equal(t, "plan v2", upd.Note.Title)
	assert.Nil(t, upd.Note.FolderID)

	fetched := c.notes.FetchNotes(ctx)
	require.True(t, fetched.Success, fetched.Error)
	require.Len(t, fetched.Notes, 1)
	assert.Equal(t, "plan v2", fetched.Notes[0].Title)
	assert.True(t, fetched.Notes[0].IsFavorite)

	folders := c.notes.FetchFolders(ctx)
	require.True(t, folders.Success)
	assert.Len(t, folders.Folders, 1)

	require.True(t, c.notes.DeleteNote(ctx, created.Note.ID).Success)
	assert.Empty(t, c.notes.Notes())

	missing := c.notes.DeleteNote(ctx, created.Note.ID)
	assert.False(t, missing.Success)
	assert.Equal(t, code.ErrorNoteNotFound.Msg(), missing.Error)

	require.True(t, c.session.Logout(ctx).Success)
	assert.False(t, c.session.IsAuthenticated())

	after := c.notes.FetchNotes(ctx)
	assert.False(t, after.Success)
}

func TestGatewayAdminOverrides(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	user := g.newClient(t)
	reg := user.session.Register(ctx, "user@x.com", "secret1")
	require.True(t, reg.Success, reg.Error)
	require.True(t, user.session.Login(ctx, "user@x.com", "secret1").Success)
	note := user.notes.CreateNote(ctx, &domain.NoteInput{Title: "private"})
	require.True(t, note.Success, note.Error)

	assert.False(t, user.admin.InitializeAdminData(ctx))
	assert.Equal(t, store.PrivilegeDenied, user.admin.Privilege())

	admin := g.newClient(t)
	require.True(t, admin.session.Register(ctx, "admin@x.com", "secret2").Success)
	require.True(t, admin.session.Login(ctx, "admin@x.com", "secret2").Success)

	require.True(t, admin.admin.InitializeAdminData(ctx))
	require.Len(t, admin.admin.AllNotes(), 1)
	assert.Equal(t, "user@x.com", admin.admin.AllNotes()[0].UserEmail)
	assert.Equal(t, 2, admin.admin.TotalUsersCount())
	assert.Len(t, admin.admin.AdminUsers(), 1)

	updated := admin.admin.AdminUpdateNote(ctx, note.Note.ID, domain.NotePatch{Title: domain.Ptr("moderated")})
	require.True(t, updated.Success, updated.Error)
	assert.Equal(t, "moderated", updated.Note.NoteTitle)

	mine := user.notes.FetchNotes(ctx)
	require.True(t, mine.Success)
	assert.Equal(t, "moderated", mine.Notes[0].Title)

	require.True(t, admin.admin.MakeUserAdmin(ctx, reg.User.ID).Success)
	assert.Len(t, admin.admin.AdminUsers(), 2)
	assert.True(t, user.admin.CheckAdminStatus(ctx))

	require.True(t, admin.admin.AdminDeleteNote(ctx, note.Note.ID).Success)
	assert.Empty(t, admin.admin.AllNotes())
}

func TestGatewayRevokedTokenDropsSession(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	c := g.newClient(t)
	require.True(t, c.session.Register(ctx, "user@x.com", "secret1").Success)
	require.True(t, c.session.Login(ctx, "user@x.com", "secret1").Success)
	require.True(t, c.session.CheckAuth(ctx).Success)
	require.True(t, c.session.IsAuthenticated())

	// another device signs the same session out
	session, err := c.backend.GetSession(ctx)
	require.NoError(t, err)
	require.NoError(t, g.app.AuthService.SignOut(ctx, session.AccessToken))

	_, err = c.backend.ListFolders(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, code.ErrorInvalidUserAuthToken))
	var remoteErr *backend.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusUnauthorized, remoteErr.HTTPStatus)

	// the listener registered by CheckAuth saw SIGNED_OUT
	assert.False(t, c.session.IsAuthenticated())

	_, err = c.backend.ListFolders(ctx)
	assert.True(t, errors.Is(err, code.ErrorNotUserAuthToken))
}

func TestGatewayEnvelopes(t *testing.T) {
	g := newGateway(t)

	status, body := g.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["status"])
	assert.Equal(t, "healthy", body["data"].(map[string]any)["status"])

	status, body = g.get(t, "/version")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, app.Version, body["data"].(map[string]any)["version"])

	status, body = g.get(t, "/rest/v1/notes")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.EqualValues(t, code.ErrorNotUserAuthToken.Code(), body["code"])

	status, body = g.get(t, "/nowhere")
	assert.Equal(t, http.StatusNotFound, status)
	assert.EqualValues(t, code.ErrorNotFound.Code(), body["code"])
	assert.Equal(t, "GET /nowhere", body["details"])
}

func TestGatewayUnknownRPC(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	_, err := g.app.AuthService.SignUp(ctx, "user@x.com", "secret1")
	require.NoError(t, err)
	session, err := g.app.AuthService.SignIn(ctx, "user@x.com", "secret1")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, g.server.URL+"/rest/v1/rpc/drop_everything", strings.NewReader("{}"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, code.ErrorRPCNotFound.Code(), out["code"])
	assert.Equal(t, "drop_everything", out["details"])
}

func TestGatewayValidationIsTranslated(t *testing.T) {
	g := newGateway(t)
	t.Cleanup(func() { _ = code.SetGlobalDefaultLang("en") })

	resp, err := http.Post(g.server.URL+"/auth/v1/token?lang=zh-CN", "application/json", strings.NewReader(`{"email":"a@x.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.EqualValues(t, code.ErrorInvalidParams.Code(), out["code"])
	assert.Contains(t, out["data"], "password")
}

func TestPrivateRouterServesMetrics(t *testing.T) {
	g := newGateway(t)
	g.get(t, "/health")

	r := NewPrivateRouter(gin.TestMode, "s3cret", g.registry, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fast_note_gateway_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestGatewayClearsTagsAndContent(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	c := g.newClient(t)
	reg := c.session.Register(ctx, "user@x.com", "secret1")
	require.True(t, reg.Success, reg.Error)
	require.True(t, c.session.Login(ctx, "user@x.com", "secret1").Success)

	folder := c.notes.CreateFolder(ctx, "Work", "", "")
	require.True(t, folder.Success, folder.Error)
	created := c.notes.CreateNote(ctx, &domain.NoteInput{
		Title:    "plan",
		Content:  domain.Document{"type": "doc", "x": 1},
		FolderID: &folder.Folder.ID,
		Tags:     []string{"a", "b"},
	})
	require.True(t, created.Success, created.Error)

	upd := c.notes.UpdateNote(ctx, created.Note.ID, domain.NotePatch{
		Tags:     []string{},
		Content:  domain.Document{},
		FolderID: domain.Ptr(""),
	})
	require.True(t, upd.Success, upd.Error)
	assert.Empty(t, upd.Note.Tags)
	assert.Empty(t, upd.Note.Content)
	assert.Nil(t, upd.Note.FolderID)

	row, err := g.app.NoteRepo.GetByID(ctx, created.Note.ID, reg.User.ID)
	require.NoError(t, err)
	assert.Empty(t, row.Tags)
	assert.Empty(t, row.Content)
	assert.Nil(t, row.FolderID)
	assert.Equal(t, "plan", row.Title)

	// 管理员覆盖同样要把空值写到服务端
	require.True(t, c.notes.UpdateNote(ctx, created.Note.ID, domain.NotePatch{Tags: []string{"c"}}).Success)

	admin := g.newClient(t)
	require.True(t, admin.session.Register(ctx, "admin@x.com", "secret2").Success)
	require.True(t, admin.session.Login(ctx, "admin@x.com", "secret2").Success)
	require.True(t, admin.admin.InitializeAdminData(ctx))

	cleared := admin.admin.AdminUpdateNote(ctx, created.Note.ID, domain.NotePatch{Tags: []string{}})
	require.True(t, cleared.Success, cleared.Error)
	assert.Empty(t, cleared.Note.NoteTags)

	row, err = g.app.NoteRepo.GetByID(ctx, created.Note.ID, reg.User.ID)
	require.NoError(t, err)
	assert.Empty(t, row.Tags)
}

func TestCheckAuthFailureLeavesUserSignedOut(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()

	tokens := backend.NewMemoryTokenStorage()
	remote, err := backend.NewRemote(backend.RemoteConfig{BaseURL: g.server.URL, Timeout: 5 * time.Second}, tokens, nil)
	require.NoError(t, err)
	session := store.NewSessionStore(remote, nil)
	require.True(t, session.Register(ctx, "user@x.com", "secret1").Success)
	require.True(t, session.Login(ctx, "user@x.com", "secret1").Success)

	// 同一份本地 token，但网关此时不可用
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	offline, err := backend.NewRemote(backend.RemoteConfig{BaseURL: down.URL, Timeout: 5 * time.Second}, tokens, nil)
	require.NoError(t, err)
	fresh := store.NewSessionStore(offline, nil)

	res := fresh.CheckAuth(ctx)
	assert.False(t, res.Success)
	assert.NotEmpty(t, fresh.Err())
	assert.True(t, fresh.Initialized())
	assert.False(t, fresh.IsAuthenticated())

	_, registered := fresh.Subscription()
	assert.True(t, registered)
}
