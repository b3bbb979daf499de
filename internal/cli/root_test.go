package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/store"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// harness runs the command line against one in-memory backend, so state
// carries over between invocations like it would on disk.
type harness struct {
	t       *testing.T
	backend *storage.MemoryBackend
	ids     *store.SequenceGenerator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	isolateEnv(t)
	return &harness{
		t:       t,
		backend: storage.NewMemoryBackend(),
		ids:     store.NewSequenceGenerator("id-"),
	}
}

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir+"/config")
	t.Setenv("XDG_DATA_HOME", dir+"/data")
	t.Setenv("XDG_CACHE_HOME", dir+"/cache")
	t.Setenv("STUDYD_CONFIG", "")
	t.Setenv("STUDYD_BACKEND", "")
	t.Setenv("STUDYD_DATA_PATH", "")
	t.Setenv("STUDYD_LOG_FILE", "")
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()
	opts := &RootOptions{
		backend: h.backend,
		ids:     h.ids,
		now:     func() time.Time { return testNow },
		logger:  slog.New(slog.DiscardHandler),
	}
	var stdout, stderr bytes.Buffer
	code := execute(opts, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// mustRun fails the test on a non-zero exit.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	stdout, stderr, code := h.run(args...)
	require.Equal(h.t, ExitSuccess, code, "args %v\nstdout: %s\nstderr: %s", args, stdout, stderr)
	return stdout
}

// runJSON runs with --format json and decodes the data field into out.
func (h *harness) runJSON(out any, args ...string) CLIResponse {
	h.t.Helper()
	stdout, _, _ := h.run(append(args, "--format", "json")...)
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(stdout), &raw), "stdout: %s", stdout)
	if out != nil && len(raw.Data) > 0 {
		require.NoError(h.t, json.Unmarshal(raw.Data, out))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "studyd", cmd.Use)
	assert.Contains(t, cmd.Long, "interactive UI")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"subject", "add"}, {"subject", "list"}, {"subject", "edit"}, {"subject", "delete"}, {"subject", "stats"},
		{"task", "add"}, {"task", "list"}, {"task", "edit"}, {"task", "status"}, {"task", "delete"},
		{"note", "add"}, {"note", "list"}, {"note", "show"}, {"note", "edit"}, {"note", "delete"}, {"note", "search"},
		{"dashboard"}, {"doctor"}, {"export"}, {"import"}, {"tui"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "backend", "data"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestTaskCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"task", "add"})
	require.NoError(t, err)

	subjectFlag := addCmd.Flags().Lookup("subject")
	require.NotNil(t, subjectFlag)
	assert.Equal(t, "s", subjectFlag.Shorthand)
	require.NotNil(t, addCmd.Flags().Lookup("due"))

	listCmd, _, err := cmd.Find([]string{"task", "list"})
	require.NoError(t, err)
	statusFlag := listCmd.Flags().Lookup("status")
	require.NotNil(t, statusFlag)
	assert.Equal(t, "all", statusFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)
	_, stderr, code := h.run("subject", "list", "--format", "yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E003]")
	assert.Contains(t, stderr, `invalid format "yaml"`)
}

func TestUnknownFlagIsCommandError(t *testing.T) {
	h := newHarness(t)
	_, stderr, code := h.run("subject", "list", "--bogus")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")
}

func TestMissingArgumentIsCommandError(t *testing.T) {
	h := newHarness(t)
	_, _, code := h.run("task", "status")
	assert.Equal(t, ExitCommandError, code)
}

func TestUnknownBackendIsConfigError(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	code := execute(&RootOptions{logger: slog.New(slog.DiscardHandler)},
		[]string{"subject", "list", "--backend", "postgres"}, &stdout, &stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "E005")
}
