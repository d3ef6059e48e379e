package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/runger/ssm-commander/internal/aws"
	"github.com/runger/ssm-commander/internal/config"
	sclog "github.com/runger/ssm-commander/internal/log"
	"github.com/runger/ssm-commander/internal/prompt"
	"github.com/runger/ssm-commander/internal/ssm"
	"github.com/runger/ssm-commander/internal/storage"
	"github.com/runger/ssm-commander/internal/store"
)

func init() {
	disableColors()
}

// fakeAWS answers AWS CLI invocations keyed by "name arg arg...".
// Unknown invocations succeed with no output.
type fakeAWS struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeAWS) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

type fakeSessions struct {
	mu    sync.Mutex
	lines []string
	code  int
	err   error
}

func (f *fakeSessions) Run(ctx context.Context, line string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	return f.code, f.err
}

func (f *fakeSessions) GOOS() string { return "linux" }

type testEnv struct {
	app      *app
	paths    *config.Paths
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	aws      *fakeAWS
	sessions *fakeSessions
}

// newTestEnv points SSMC_HOME at a temp dir and makes newApp return an app
// wired to fakes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(config.HomeEnv, t.TempDir())
	paths := config.DefaultPaths()
	require.NoError(t, paths.EnsureDirectories())

	env := &testEnv{
		paths:    paths,
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		aws:      &fakeAWS{outputs: map[string]string{}, errs: map[string]error{}},
		sessions: &fakeSessions{},
	}
	logger := sclog.Discard()
	env.app = &app{
		paths:  paths,
		cfg:    config.DefaultConfig(),
		logger: logger,
		aws: aws.NewClient(aws.Config{
			Runner: env.aws,
			Logger: logger,
		}),
		commands: store.Open(paths.CommandsFile()),
		sessions: env.sessions,
		history: func() (storage.Store, error) {
			return storage.NewSQLiteStore(paths.DatabaseFile())
		},
		theme:  prompt.DefaultTheme(),
		out:    env.out,
		errOut: env.errOut,
	}

	old := newApp
	newApp = func(*cobra.Command) (*app, error) { return env.app, nil }
	t.Cleanup(func() { newApp = old })
	return env
}

func (e *testEnv) save(t *testing.T, cmds ...ssm.Command) {
	t.Helper()
	for _, c := range cmds {
		require.NoError(t, e.app.commands.Add(c))
	}
}

func (e *testEnv) runs(t *testing.T, name string) []storage.Run {
	t.Helper()
	st, err := storage.NewSQLiteStore(e.paths.DatabaseFile())
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.QueryRuns(t.Context(), storage.RunQuery{CommandName: name})
	require.NoError(t, err)
	return runs
}

// testCommand returns a cobra command carrying the test context and writing
// to out.
func testCommand(t *testing.T, out *bytes.Buffer) *cobra.Command {
	t.Helper()
	c := &cobra.Command{}
	c.SetContext(t.Context())
	c.SetOut(out)
	c.SetErr(out)
	return c
}

func connectCommand(name string) ssm.Command {
	return ssm.Command{
		Name:         name,
		ProfileName:  "dev",
		Region:       "eu-west-1",
		InstanceName: "web",
		InstanceID:   "i-0abc",
		Type:         ssm.TypeConnect,
	}
}

func portForwardCommand(name string) ssm.Command {
	return ssm.Command{
		Name:         name,
		ProfileName:  "prod",
		Region:       "us-east-1",
		InstanceName: "bastion",
		InstanceID:   "i-0def",
		Type:         ssm.TypePortForward,
		Options:      &ssm.PortForward{RemoteHost: "db.internal", RemotePort: "5432", LocalPort: "15432"},
	}
}
