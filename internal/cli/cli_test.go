package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/markstate/internal/engine/cursor/markup"
)

// syncBuffer is a bytes.Buffer safe for use from the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return executeContext(t, context.Background(), stdin, args...)
}

func executeContext(t *testing.T, ctx context.Context, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewCmdRoot(VersionInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	full := append([]string{"--no-color", "--config", filepath.Join(t.TempDir(), "none.toml")}, args...)
	cmd.SetArgs(full)

	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "--version")
	require.NoError(t, res.err)
	assert.Equal(t, "markstate version 1.2.3 (commit: abc, built: today)\n", res.stdout)
}

func TestParseText(t *testing.T) {
	res := execute(t, "", "parse", "foo<$0>bar</$0>")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, `content: "foobar"`)
	assert.Contains(t, res.stdout, "regions: 1")
	assert.Contains(t, res.stdout, `#0 range 3..6 (1:4-1:7) "bar"`)
	assert.Contains(t, res.stdout, "rendered: foo<$0>bar</$0>")
}

func TestParseJSON(t *testing.T) {
	res := execute(t, "", "parse", "-o", "json", "a<$0>b<$1>c")
	require.NoError(t, res.err)

	assert.True(t, gjson.Valid(res.stdout))
	assert.Equal(t, "abc", gjson.Get(res.stdout, "content").String())
	assert.Equal(t, "a<$0>b<$1>c", gjson.Get(res.stdout, "rendered").String())
	assert.Equal(t, int64(2), gjson.Get(res.stdout, "regions.#").Int())
	assert.Equal(t, int64(1), gjson.Get(res.stdout, "regions.0.anchor").Int())
	assert.True(t, gjson.Get(res.stdout, "regions.0.caret").Bool())
	assert.Equal(t, int64(1), gjson.Get(res.stdout, "regions.1.id").Int())
	assert.Equal(t, int64(3), gjson.Get(res.stdout, "regions.1.start.column").Int())
}

func TestParseJSONNoRegions(t *testing.T) {
	res := execute(t, "", "parse", "-o", "json", "plain")
	require.NoError(t, res.err)
	assert.Equal(t, "[]", gjson.Get(res.stdout, "regions").Raw)
}

func TestParseStdin(t *testing.T) {
	res := execute(t, "x<$0>", "parse", "-o", "json", "-")
	require.NoError(t, res.err)
	assert.Equal(t, "x", gjson.Get(res.stdout, "content").String())
}

func TestParseErrors(t *testing.T) {
	res := execute(t, "", "parse", "<$0>a<$0>b")
	assert.ErrorIs(t, res.err, markup.ErrDuplicateMarker)

	res = execute(t, "", "parse", "-o", "yaml", "a")
	assert.ErrorContains(t, res.err, "unknown output format")

	res = execute(t, "", "parse")
	assert.Error(t, res.err)
}

func TestParseStrict(t *testing.T) {
	res := execute(t, "", "parse", "a</$0>b")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "regions: 0")

	res = execute(t, "", "--strict", "parse", "a</$0>b")
	assert.ErrorIs(t, res.err, markup.ErrOrphanEndMarker)
}

func TestStateJSONBackward(t *testing.T) {
	doc, err := stateJSON(markup.MustParse(t, "foo</$0>bar<$0>"))
	require.NoError(t, err)

	assert.Equal(t, int64(6), gjson.Get(doc, "regions.0.anchor").Int())
	assert.Equal(t, int64(3), gjson.Get(doc, "regions.0.head").Int())
	assert.True(t, gjson.Get(doc, "regions.0.backward").Bool())
	assert.Equal(t, "bar", gjson.Get(doc, "regions.0.text").String())
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"range", []string{"--content", "foobar", "--region", "3:6"}, "foo<$0>bar</$0>\n"},
		{"backward", []string{"--content", "foobar", "-r", "6:3"}, "foo</$0>bar<$0>\n"},
		{"carets out of order", []string{"--content", "abc", "-r", "2", "-r", "1"}, "a<$0>b<$1>c\n"},
		{"no regions", []string{"--content", "abc"}, "abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", append([]string{"render"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestRenderInvalidRegion(t *testing.T) {
	for _, value := range []string{"x", "1:y", "-1", "9", "1:9"} {
		res := execute(t, "", "render", "--content", "abc", "--region", value)
		assert.ErrorIs(t, res.err, errInvalidRegion, value)
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	parsed := execute(t, "", "parse", "-o", "json", "fo<$0>o<$1>bar</$1>")
	require.NoError(t, parsed.err)

	res := execute(t, parsed.stdout, "render", "--json", "-")
	require.NoError(t, res.err)
	assert.Equal(t, "fo<$0>o<$1>bar</$1>\n", res.stdout)
}

func TestRenderJSONFile(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "state.json", `{"content":"foobar","regions":[{"anchor":3}]}`)

	res := execute(t, "", "render", "--json", path)
	require.NoError(t, res.err)
	assert.Equal(t, "foo<$0>bar\n", res.stdout)
}

func TestRenderJSONInvalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"content": 1}`,
		`{"content": "a", "regions": [{"head": 1}]}`,
		`{"content": "a", "regions": [{"anchor": 0, "head": "x"}]}`,
		`{"content": "a", "regions": [{"anchor": 5}]}`,
	}
	for _, doc := range tests {
		res := execute(t, doc, "render", "--json", "-")
		assert.Error(t, res.err, doc)
	}
}

const passingFixture = `cases:
  - name: caret
    input: "foo<$0>bar"
  - name: range
    input: "foo<$0>bar</$0>"
    content: foobar
  - name: typed
    input: "foo<$0>bar"
    expect: "foo!<$0>bar"
    script: state = markup.type(state, "!")
`

const failingFixture = `[[cases]]
name = "renumbered"
input = "a<$1>b<$0>c"
`

func TestCheckPasses(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)

	res := execute(t, "", "check", "-v", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "PASS ")
	assert.Contains(t, res.stdout, "3 cases, 3 passed, 0 failed")
}

func TestCheckFails(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)
	writeFixture(t, dir, "renumber.toml", failingFixture)

	res := execute(t, "", "check", dir)
	require.Error(t, res.err)
	assert.Equal(t, "1 of 4 cases failed", res.err.Error())
	assert.Contains(t, res.stdout, "FAIL ")
	assert.Contains(t, res.stdout, "renumbered")
	assert.Contains(t, res.stdout, "rendering mismatch")
	assert.NotContains(t, res.stdout, "PASS ")
}

func TestCheckUsesConfigDirs(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)
	cfgPath := writeFixture(t, t.TempDir(), ".markstate.toml", "fixture_dirs = ['"+filepath.ToSlash(dir)+"']\n")

	var stdout bytes.Buffer
	cmd := NewCmdRoot(VersionInfo{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--no-color", "--config", cfgPath, "check"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "3 cases, 3 passed, 0 failed")
}

func TestCheckMissingPath(t *testing.T) {
	res := execute(t, "", "check", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, res.err, os.ErrNotExist)
}

func TestInvalidLogLevel(t *testing.T) {
	res := execute(t, "", "--log-level", "loud", "parse", "a")
	assert.ErrorContains(t, res.err, "invalid config")
}

type watchRun struct {
	stdout *syncBuffer
	cancel context.CancelFunc
	done   chan error
}

func startWatch(t *testing.T, paths ...string) *watchRun {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	w := &watchRun{stdout: &syncBuffer{}, cancel: cancel, done: make(chan error, 1)}
	cmd := NewCmdRoot(VersionInfo{})
	cmd.SetOut(w.stdout)
	cmd.SetErr(&bytes.Buffer{})
	args := []string{"--no-color", "--config", filepath.Join(t.TempDir(), "none.toml"), "watch"}
	cmd.SetArgs(append(args, paths...))

	go func() { w.done <- cmd.ExecuteContext(ctx) }()
	t.Cleanup(cancel)
	return w
}

func (w *watchRun) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(w.stdout.String(), substr) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q in output:\n%s", substr, w.stdout.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (w *watchRun) stop(t *testing.T) {
	t.Helper()
	w.cancel()
	select {
	case err := <-w.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)

	w := startWatch(t, dir)
	w.waitFor(t, "3 cases, 3 passed, 0 failed")

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFixture(t, dir, "renumber.toml", failingFixture)

	w.waitFor(t, "renumber.toml changed")
	w.waitFor(t, "4 cases, 3 passed, 1 failed")

	w.stop(t)
}

func TestWatchRerunsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)

	w := startWatch(t, dir)
	w.waitFor(t, "3 cases, 3 passed, 0 failed")

	time.Sleep(100 * time.Millisecond)
	writeFixture(t, dir, "renumber.toml", failingFixture)
	writeFixture(t, dir, "more.toml", failingFixture)

	w.waitFor(t, "5 cases, 3 passed, 2 failed")
	time.Sleep(300 * time.Millisecond)

	out := w.stdout.String()
	assert.Contains(t, out, "more.toml changed")
	assert.Contains(t, out, "renumber.toml changed")
	assert.Equal(t, 2, strings.Count(out, " cases, "), "output:\n%s", out)

	w.stop(t)
}

func TestWatchDuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)

	w := startWatch(t, dir, dir, dir+string(filepath.Separator))
	w.waitFor(t, "3 cases, 3 passed, 0 failed")

	time.Sleep(100 * time.Millisecond)
	writeFixture(t, dir, "renumber.toml", failingFixture)
	w.waitFor(t, "4 cases, 3 passed, 1 failed")

	w.stop(t)
}

func TestCheckDuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cursor.yaml", passingFixture)

	res := execute(t, "", "check", dir, filepath.Join(dir, "."))
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "3 cases, 3 passed, 0 failed")
}
