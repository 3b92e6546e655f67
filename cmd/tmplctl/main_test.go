package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// newTestApp builds the same command tree main() wires up, without the
// signal-handling goroutine, so Action funcs can be driven directly in
// a test process without needing a built binary.
func newTestApp() *cli.App {
	return &cli.App{
		Name:           "tmplctl",
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: ".tmplctl.kdl"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: "."},
		},
		Commands: []*cli.Command{
			renderCommand,
			resolveCommand,
			updateCommand,
			cacheCommand,
			lifecycleCommand,
			snapshotCommand,
			benchmarkCommand,
		},
	}
}

func TestRenderCommand_RendersFile(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "greeting.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("hello {{name}}"), 0o644))

	app := newTestApp()
	err := app.Run([]string{"tmplctl", "--root", root, "render", tmplPath, "--var", "name=world"})
	require.NoError(t, err)
}

func TestRenderCommand_MissingArgFails(t *testing.T) {
	app := newTestApp()
	err := app.Run([]string{"tmplctl", "render"})
	require.Error(t, err)
}

func TestCacheLifecycle_PutGetClear(t *testing.T) {
	root := t.TempDir()
	valuePath := filepath.Join(root, "value.txt")
	require.NoError(t, os.WriteFile(valuePath, []byte("payload"), 0o644))

	app := newTestApp()
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "cache", "put", "k1", valuePath}))
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "cache", "get", "k1"}))
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "cache", "stats"}))
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "cache", "clear"}))
}

func TestLifecycleRequestApprove(t *testing.T) {
	root := t.TempDir()
	app := newTestApp()

	err := app.Run([]string{"tmplctl", "--root", root, "lifecycle", "request", "greeter", "1.0.0", "testing", "--approver", "alice"})
	require.NoError(t, err)

	doc, err := loadLifecycleState(lifecycleStatePath(root))
	require.NoError(t, err)
	require.Len(t, doc.Requests, 1)
	reqID := doc.Requests[0].ID

	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "lifecycle", "approve", reqID, "alice"}))
}

func TestSnapshotCreateAndList(t *testing.T) {
	root := t.TempDir()
	app := newTestApp()

	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "lifecycle", "request", "greeter", "1.0.0", "testing", "--approver", "alice"}))
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "snapshot", "create", "initial snapshot"}))
	require.NoError(t, app.Run([]string{"tmplctl", "--root", root, "snapshot", "list"}))
}
