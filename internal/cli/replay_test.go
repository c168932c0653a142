package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func runReplayCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func tamper(t *testing.T, dbPath, stmt string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(stmt, args...)
	require.NoError(t, err)
}

func TestReplayMatches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thaum.db")
	recordScript(t, dbPath, "run-1", chainScript)

	out, err := runReplayCommand(t, "text", "--db", dbPath, "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay: run-1 (chain, 5 step(s))\n")
	assert.Contains(t, out, "✓ Replay matches journal\n")
}

func TestReplayLatestJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thaum.db")
	recordScript(t, dbPath, "run-1", chainScript)

	out, err := runReplayCommand(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID          string `json:"run_id"`
			Match          bool   `json:"match"`
			Digest         string `json:"digest"`
			RecordedDigest string `json:"recorded_digest"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.True(t, resp.Data.Match)
	assert.Equal(t, resp.Data.RecordedDigest, resp.Data.Digest)
}

func TestReplayDiverged(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thaum.db")
	recordScript(t, dbPath, "run-1", chainScript)
	tamper(t, dbPath, `UPDATE steps SET state = 'ok', code = 0 WHERE run_id = ? AND seq = 4`, "run-1")

	out, err := runReplayCommand(t, "text", "--db", dbPath, "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "  - seq 4 (attach): yield = fail/code=3, recorded ok\n")
	assert.Contains(t, out, "✗ Replay diverged from journal\n")
}

func TestReplayDivergedJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thaum.db")
	recordScript(t, dbPath, "run-1", chainScript)
	tamper(t, dbPath, `UPDATE steps SET handle = '7@7' WHERE run_id = ? AND seq = 2`, "run-1")

	out, err := runReplayCommand(t, "json", "--db", dbPath, "run-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeReplay, resp.Error.Code)
}

func TestReplayErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "thaum.db")
	recordScript(t, dbPath, "run-1", chainScript)

	_, err := runReplayCommand(t, "text", "--db", dbPath, "missing-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")

	_, err = runReplayCommand(t, "text", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
