package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Replay a journaled run and verify determinism",
		Long: `Re-execute the steps of a journaled run against a fresh ledger and
tree, and compare every yield, handle and answer with the journal.

Without a run id the most recent run is replayed.

Exit codes:
  0 - Replay matches the journal
  1 - Replay diverged from the journal
  2 - Command error (journal not found, unknown run, etc.)

Examples:
  thaum replay --db ./thaum.db
  thaum replay --db ./thaum.db 01920c4e-7d3a-7c4b-9a51-3f0c2b1d4e5f --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) == 1 {
				runID = args[0]
			}
			return runReplay(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openJournal(cmd, opts.Database, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := findRun(ctx, st, runID)
	if err != nil {
		return err
	}

	rr, err := st.Replay(ctx, run.ID, opts.logger())
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
	}

	if formatter.JSON() {
		if !rr.Match {
			if err := formatter.Failure(ErrCodeReplay, "replay diverged from journal", rr); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "replay diverged from journal")
		}
		return formatter.Success(rr)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Replay: %s (%s, %d step(s))\n", run.ID, run.Script, run.StepCount)
	if opts.Verbose {
		fmt.Fprintf(w, "  recorded digest: %s\n", rr.RecordedDigest)
		fmt.Fprintf(w, "  replayed digest: %s\n", rr.Digest)
	}

	if rr.Match {
		fmt.Fprintln(w, "✓ Replay matches journal")
		return nil
	}

	for _, m := range rr.Mismatches {
		fmt.Fprintf(w, "  - %s\n", m)
	}
	fmt.Fprintln(w, "✗ Replay diverged from journal")
	return NewExitError(ExitFailure, fmt.Sprintf("replay diverged with %d mismatch(es)", len(rr.Mismatches)))
}
