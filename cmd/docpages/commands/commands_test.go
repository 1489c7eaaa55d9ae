package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpages/internal/config"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func contentFixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "projects")
	writeFile(t, root, "00_alpha/index.md", "---\ntitle: Alpha\n---\n# Alpha\n")
	writeFile(t, root, "00_alpha/usage.md", "# Usage\n")
	writeFile(t, root, "00_alpha/shot.png", "png")
	writeFile(t, root, "01_beta/index.md", "# Beta\n")
	return root
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Content.Root = root
	cfg.Server.Address = "127.0.0.1:0"
	return cfg
}

// parse runs kong over args with a config file pointing at root.
func parse(t *testing.T, root string, stdout io.Writer, args ...string) (*kong.Context, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "docpages.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("content:\n  root: "+root+"\nlogging:\n  level: error\n"), 0o600))

	cli := &CLI{}
	parser, err := kong.New(cli, kong.Writers(stdout, io.Discard), kong.Exit(func(int) {}))
	require.NoError(t, err)
	return parser.Parse(append([]string{"--config", cfgPath}, args...))
}

func TestPathsCommand(t *testing.T) {
	var out bytes.Buffer
	kctx, err := parse(t, contentFixture(t), &out, "paths")
	require.NoError(t, err)
	require.NoError(t, kctx.Run())

	assert.Equal(t, "/projects/00_alpha\n/projects/00_alpha/usage\n/projects/01_beta\n", out.String())
}

func TestPathsCommand_JSON(t *testing.T) {
	var out bytes.Buffer
	kctx, err := parse(t, contentFixture(t), &out, "paths", "--json")
	require.NoError(t, err)
	require.NoError(t, kctx.Run())

	var entries []pathEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, pathEntry{Project: "00_alpha", Page: "usage", URL: "/projects/00_alpha/usage"}, entries[1])
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	kctx, err := parse(t, contentFixture(t), &out, "version")
	require.NoError(t, err)
	require.NoError(t, kctx.Run())
	assert.Contains(t, out.String(), "docpages dev")
}

func TestInvalidConfigFailsParse(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "docpages.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: [unclosed\n"), 0o600))

	parser, err := kong.New(&CLI{}, kong.Writers(io.Discard, io.Discard), kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--config", cfgPath, "paths"})
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public")
	var stdout bytes.Buffer
	kctx, err := parse(t, contentFixture(t), &stdout, "build", "--output", out)
	require.NoError(t, err)
	require.NoError(t, kctx.Run())

	assert.Contains(t, stdout.String(), "Exported 3 pages and 1 assets")
	assert.FileExists(t, filepath.Join(out, "projects", "00_alpha", "index.html"))
	assert.FileExists(t, filepath.Join(out, "projects", "00_alpha", "usage", "index.html"))
	assert.FileExists(t, filepath.Join(out, "api", "projects", "00_alpha", "shot.png"))
	assert.FileExists(t, filepath.Join(out, "404.html"))
}

func TestBuildCommand_StrictFailsOnBrokenPage(t *testing.T) {
	root := contentFixture(t)
	writeFile(t, root, "01_beta/broken.md", "---\ntitle: never closed\n")

	kctx, err := parse(t, root, io.Discard, "build", "--strict", "--output", filepath.Join(t.TempDir(), "public"))
	require.NoError(t, err)
	assert.Error(t, kctx.Run())
}

func TestRunBuild_Report(t *testing.T) {
	report, err := RunBuild(context.Background(), testConfig(contentFixture(t)), filepath.Join(t.TempDir(), "out"), quiet())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Pages)
	assert.Zero(t, report.Failed())
}

func TestRunServe_ServesUntilCanceled(t *testing.T) {
	cfg := testConfig(contentFixture(t))
	cfg.Metrics.Enabled = true
	cfg.Watch.Enabled = true

	// Reserve a free port so the test knows where to connect.
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.Server.Address = ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunServe(ctx, cfg, quiet()) }()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + cfg.Server.Address + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	resp, err := client.Get("http://" + cfg.Server.Address + "/projects/00_alpha")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h1>Alpha</h1>")
	assert.Contains(t, string(body), "/livereload")

	resp, err = client.Get("http://" + cfg.Server.Address + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
