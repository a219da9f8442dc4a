package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/api"
	"github.com/ssargent/rowdb/pkg/di"
)

// testEnv points every command at a private data dir and config path
type testEnv struct {
	dir        string
	dataDir    string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	SetContainer(di.NewContainer())
	t.Cleanup(func() { SetContainer(nil) })
	return &testEnv{
		dir:        dir,
		dataDir:    filepath.Join(dir, "db"),
		configPath: filepath.Join(dir, "config.yaml"),
	}
}

// run executes the root command with the env's data dir and config path
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--data-dir", e.dataDir)
	return e.runRaw(t, args...)
}

// runRaw executes the root command with only the config path added
func (e *testEnv) runRaw(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", e.configPath, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default; cobra keeps flag state
// between executions of the same command tree
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type recordingStarter struct {
	config    api.ServerConfig
	telemetry *api.Telemetry
	store     api.IRecordStore
	// during runs while the store is still open
	during func(api.IRecordStore)
}

func (r *recordingStarter) StartServer(_ context.Context, store api.IRecordStore, config api.ServerConfig, telemetry *api.Telemetry, _ *slog.Logger) error {
	r.store = store
	r.config = config
	r.telemetry = telemetry
	if r.during != nil {
		r.during(store)
	}
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

// useRecordingServer swaps in a server starter that returns immediately
func useRecordingServer(t *testing.T) *recordingStarter {
	t.Helper()
	require.NotNil(t, container)
	starter := &recordingStarter{}
	container.SetServerFactory(&recordingFactory{starter: starter})
	return starter
}
