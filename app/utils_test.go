package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/nrednav/cuid2"

	actx "go.hackfix.me/changelock/app/context"
	"go.hackfix.me/changelock/db"
	"go.hackfix.me/changelock/dialect"
	"go.hackfix.me/changelock/host"
)

var (
	timeNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	worker1 = host.Identity{Hostname: "worker-1", Address: "10.0.0.5"}
	worker2 = host.Identity{Hostname: "worker-2", Address: "10.0.0.6"}
)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	stdout, stderr *safeBuffer
	env            *mockEnv
}

// newTestDB returns a new in-memory SQLite database. Apps created with the same
// database contend for the same lock, like processes on different hosts.
func newTestDB(ctx context.Context) (*db.DB, error) {
	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	return db.Open(ctx, dialect.SQLite{},
		fmt.Sprintf("file:changelock-%s?mode=memory&cache=shared", cuid2.Generate()), timeNowFn)
}

func newTestApp(ctx context.Context, d *db.DB, id host.Identity) (*testApp, error) {
	return newTestAppWithResolver(ctx, d, staticResolver{id: id})
}

func newTestAppWithResolver(ctx context.Context, d *db.DB, r host.Resolver) (*testApp, error) {
	stdout, stderr := newSafeBuffer(), newSafeBuffer()
	env := &mockEnv{env: map[string]string{}}
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithEnv(env),
		WithContext(ctx),
		WithFDs(strings.NewReader(""), stdout, stderr),
		WithFS(memoryfs.New()),
		WithHostResolver(r),
		WithLogger(false, false),
	}
	if d != nil {
		opts = append(opts, WithDB(d))
	}

	app, err := New("changelock", "/config.json", opts...)
	if err != nil {
		return nil, err
	}

	return &testApp{App: app, stdout: stdout, stderr: stderr, env: env}, nil
}

// Run executes the app with args. The outputs only contain what was written
// during this run.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()

	return ta.App.Run(args)
}

type staticResolver struct {
	id host.Identity
}

func (r staticResolver) Resolve(context.Context) (host.Identity, error) {
	return r.id, nil
}

type failingResolver struct {
	err error
}

func (r failingResolver) Resolve(context.Context) (host.Identity, error) {
	return host.Identity{}, r.err
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}

// newTestContext returns a context that times out after timeout, and an
// assertion handling function that cancels the context prematurely and fails
// the test if the assertion fails. This is done to avoid waiting for the
// context timeout to be reached.
func newTestContext(t *testing.T, timeout time.Duration) (
	ctx context.Context, cancelCtx func(), assertHandler func(bool),
) {
	ctx, cancelCtx = context.WithTimeout(t.Context(), timeout)
	assertHandler = func(success bool) {
		if !success {
			cancelCtx()
			t.FailNow()
		}
	}

	return
}

// safeBuffer is a thread-safe buffer.
type safeBuffer struct {
	mx  sync.RWMutex
	buf *bytes.Buffer
}

func newSafeBuffer() *safeBuffer {
	return &safeBuffer{buf: &bytes.Buffer{}}
}

func (b *safeBuffer) Write(p []byte) (n int, err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Reset() {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.buf.Reset()
}

func (b *safeBuffer) String() string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.buf.String()
}
