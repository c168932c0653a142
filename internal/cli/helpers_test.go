package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/thaum/internal/journal"
)

const chainScript = `name: chain
description: two entities, one rejected loop
steps:
  - op: create
    as: e1
  - op: create
    as: e2
  - op: attach
    parent: e1
    child: e2
  - op: attach
    parent: e2
    child: e1
    expect: { state: fail, code: 3 }
  - op: owns
    parent: e1
    child: e2
    expect: { holds: true }
assertions:
  - type: final
    state: fail
    code: 3
`

const failingScript = `name: wrong
steps:
  - op: create
    as: a
  - op: retire
    entity: a
    expect: { state: fail }
`

// writeScript writes body to a YAML file in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// recordScript runs body with journaling into dbPath under runID.
func recordScript(t *testing.T, dbPath, runID, body string) {
	t.Helper()
	opts := &RunOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Database:       dbPath,
		RunIDGenerator: journal.NewFixedGenerator(runID),
	}
	cmd := newRunCommand(opts)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, writeScript(t, body)})
	_ = cmd.Execute()
}

// executeRoot runs the full command tree and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
