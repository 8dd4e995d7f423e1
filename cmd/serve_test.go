package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecx/workspace-menu/internal/store"
)

// mockServeRunner is a test double for ServeRunner.
type mockServeRunner struct {
	opts ServeOptions
	err  error
}

func (m *mockServeRunner) Serve(ctx context.Context, opts ServeOptions, out io.Writer) error {
	m.opts = opts
	return m.err
}

func TestServeCmd_PassesOptions(t *testing.T) {
	runner := &mockServeRunner{}

	_, err := executeWithRoot(t, NewServeCmd(runner), "serve", "--port", "9090", "--redis", "localhost:6379")

	require.NoError(t, err)
	assert.Equal(t, ServeOptions{Port: 9090, RedisAddr: "localhost:6379"}, runner.opts)
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	_, err := executeWithRoot(t, NewServeCmd(&mockServeRunner{}), "serve", "extra")

	assert.Error(t, err)
}

func TestServeCmd_RunnerError(t *testing.T) {
	runner := &mockServeRunner{err: errors.New("address in use")}

	_, err := executeWithRoot(t, NewServeCmd(runner), "serve")

	assert.EqualError(t, err, "address in use")
}

// newServeApp initializes a yaml project in a temp dir and wires it with a
// random listen port.
func newServeApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	_, err := executeWithRoot(t, NewInitCmd(fixedDir(dir)), "init")
	require.NoError(t, err)

	app, err := NewApp(dir, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	app.Config.Server.Port = 0
	return app
}

func TestServeAdapter_ShutsDownOnCancel(t *testing.T) {
	app := newServeApp(t)
	a := &serveAdapter{svc: app.Service(), app: app}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var out bytes.Buffer

	err := a.Serve(ctx, ServeOptions{}, &out)

	require.NoError(t, err)
	assert.Equal(t, "Serving workspace menus on :0\n", out.String())
}

func TestServeAdapter_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	app := newServeApp(t)
	a := &serveAdapter{svc: app.Service(), app: app}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := a.Serve(ctx, ServeOptions{RedisAddr: mr.Addr()}, io.Discard)

	require.NoError(t, err)
}

func TestServeAdapter_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	app := newServeApp(t)
	a := &serveAdapter{svc: app.Service(), app: app}

	err := a.Serve(context.Background(), ServeOptions{RedisAddr: addr}, io.Discard)

	assert.ErrorContains(t, err, "connecting menu cache")
}

func TestServeAdapter_FlushesStaleRedisEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("wsm:ADMIN:MAIN:en", `{"stale":true}`))
	require.NoError(t, mr.Set("other-app:key", "kept"))
	app := newServeApp(t)
	a := &serveAdapter{svc: app.Service(), app: app}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := a.Serve(ctx, ServeOptions{RedisAddr: mr.Addr()}, io.Discard)

	require.NoError(t, err)
	assert.False(t, mr.Exists("wsm:ADMIN:MAIN:en"), "stale menu entry survived startup")
	assert.True(t, mr.Exists("other-app:key"), "keys outside the cache prefix must be kept")
}

func TestStoreReadiness(t *testing.T) {
	app := newServeApp(t)
	ready := storeReadiness(app)

	require.NoError(t, ready.Ready(context.Background()))

	require.NoError(t, os.RemoveAll(store.NewYAMLStore(app.Root).Dir()))
	assert.Error(t, ready.Ready(context.Background()))
}
