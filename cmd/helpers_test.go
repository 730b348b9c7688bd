package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"coa/internal/app"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout. Flag values from earlier runs are reset first.
func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testEnv is a configuration directory for one test.
type testEnv struct {
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{dir: t.TempDir()}
}

// run executes coa against the test's configuration directory.
func (e *testEnv) run(args ...string) (string, error) {
	return executeCommand(append([]string{"--config-path", e.dir, "--log-level", "error"}, args...)...)
}

func (e *testEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "config.yaml"), []byte(content), 0o600))
}

func (e *testEnv) addClient(t *testing.T, name, id string) {
	t.Helper()
	_, err := e.run("client", "add", name, "--client-id", id, "--secret-key", "secret-"+id)
	require.NoError(t, err)
}

// saveTokens stores tokens for a client as a completed login would.
func (e *testEnv) saveTokens(t *testing.T, client, refresh, access string) {
	t.Helper()
	application, err := app.NewApplication(app.NewConfig(e.dir, "error", &bytes.Buffer{}))
	require.NoError(t, err)
	defer application.Close()

	_, err = application.Services().Tokens.Save(context.Background(), client, refresh, access)
	require.NoError(t, err)
}
