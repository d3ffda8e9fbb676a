package task

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/domain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	spec    string
	startup bool
	runs    atomic.Int32
	ran     chan struct{}
	err     error
}

func (t *countingTask) Name() string       { return "counting" }
func (t *countingTask) Spec() string       { return t.spec }
func (t *countingTask) IsStartupRun() bool { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	select {
	case t.ran <- struct{}{}:
	default:
	}
	return t.err
}

func TestSchedulerStartupRun(t *testing.T) {
	s := NewScheduler(zap.NewNop(), time.Second)
	task := &countingTask{startup: true, ran: make(chan struct{}, 1), err: errors.New("logged, not fatal")}
	require.NoError(t, s.AddTask(task))
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-task.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("startup run did not happen")
	}
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), time.Second)
	err := s.AddTask(&countingTask{spec: "every now and then"})
	assert.Error(t, err)
}

func TestSchedulerRecoversPanic(t *testing.T) {
	s := NewScheduler(zap.NewNop(), time.Second)
	assert.NotPanics(t, func() { s.run(panicTask{}, "startupRun") })
}

type panicTask struct{}

func (panicTask) Name() string                  { return "panic" }
func (panicTask) Spec() string                  { return "" }
func (panicTask) IsStartupRun() bool            { return true }
func (panicTask) Run(ctx context.Context) error { panic("boom") }

type fakeAuth struct {
	cleaned atomic.Int32
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	return nil, nil
}
func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return nil, nil
}
func (f *fakeAuth) SignOut(ctx context.Context, token string) error { return nil }
func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	return nil, nil, nil
}
func (f *fakeAuth) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	f.cleaned.Add(1)
	return 3, nil
}

func TestSessionCleanupTaskRun(t *testing.T) {
	auth := &fakeAuth{}
	task := &SessionCleanupTask{auth: auth, spec: "@every 1h", logger: zap.NewNop()}
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, int32(1), auth.cleaned.Load())
	assert.Equal(t, "@every 1h", task.Spec())
}

func newTestApp(t *testing.T, spec string) *app.App {
	t.Helper()
	cfg, err := app.NewDefaultConfig()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "task.sqlite3")
	cfg.Security.SessionCleanSpec = spec
	a, err := app.OpenApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewSessionCleanupTaskFollowsConfig(t *testing.T) {
	disabled, err := NewSessionCleanupTask(newTestApp(t, ""))
	require.NoError(t, err)
	assert.Nil(t, disabled)

	a := newTestApp(t, "@every 30m")
	enabled, err := NewSessionCleanupTask(a)
	require.NoError(t, err)
	require.NotNil(t, enabled)

	m := NewManager(zap.NewNop(), a)
	require.NoError(t, m.RegisterTasks())
	require.NoError(t, enabled.Run(context.Background()))
}

func TestSessionCleanupTaskSkipsDuringShutdown(t *testing.T) {
	a := newTestApp(t, "@every 30m")
	auth := &fakeAuth{}
	task := &SessionCleanupTask{auth: auth, spec: "@every 30m", logger: zap.NewNop(), app: a}

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, int32(1), auth.cleaned.Load())

	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, int32(1), auth.cleaned.Load())
}
