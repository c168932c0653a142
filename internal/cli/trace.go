package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/thaum/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Op       string // optional - filter steps to one op
	List     bool
	Script   string // optional - with --list, filter runs to one script
}

// TraceResult holds the trace of one journaled run.
type TraceResult struct {
	Run   journal.Run `json:"run"`
	Steps []StepView  `json:"steps"`
	Stats TraceStats  `json:"stats"`
}

// TraceStats counts steps by outcome.
type TraceStats struct {
	Steps    int `json:"steps"`
	OK       int `json:"ok"`
	Partial  int `json:"partial"`
	Failures int `json:"failures"`
	Traps    int `json:"traps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show the journaled trace of a run",
		Long: `Show the steps of a journaled run in sequence order.

Without a run id the most recent run is shown. With --list, the runs in
the journal are listed instead.

Examples:
  thaum trace --db ./thaum.db
  thaum trace --db ./thaum.db 01920c4e-7d3a-7c4b-9a51-3f0c2b1d4e5f --op attach
  thaum trace --db ./thaum.db --list --script ownership_chain`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) == 1 {
				runID = args[0]
			}
			return runTrace(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to a single op")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list journaled runs")
	cmd.Flags().StringVar(&opts.Script, "script", "", "with --list, only runs of this script")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openJournal(cmd, opts.Database, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.List {
		return listRuns(ctx, st, opts.Script, formatter)
	}

	run, err := findRun(ctx, st, runID)
	if err != nil {
		return err
	}

	records, err := st.ReadSteps(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{Run: run, Steps: []StepView{}}
	for _, rec := range records {
		if opts.Op != "" && rec.Step.Op != opts.Op {
			continue
		}
		result.Steps = append(result.Steps, stepViewFromRecord(rec))
		result.Stats.Steps++
		switch {
		case rec.Yield.IsTrap():
			result.Stats.Traps++
		case rec.Yield.IsFailure():
			result.Stats.Failures++
		case rec.Yield.IsOK():
			result.Stats.OK++
		default:
			result.Stats.Partial++
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputTraceText(cmd, result)
}

func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()
	run := result.Run

	fmt.Fprintf(w, "Run: %s\n", run.ID)
	fmt.Fprintf(w, "Script: %s\n", run.Script)
	if run.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", run.Description)
	}
	fmt.Fprintf(w, "%s Final: %s\n", statusMark(run.Pass), run.Final)
	fmt.Fprintln(w)

	if len(result.Steps) == 0 {
		fmt.Fprintln(w, "No matching steps.")
		return nil
	}
	for _, v := range result.Steps {
		writeStep(w, v)
	}
	fmt.Fprintln(w)
	s := result.Stats
	fmt.Fprintf(w, "Steps: %d (ok %d, partial %d, fail %d, trap %d)\n", s.Steps, s.OK, s.Partial, s.Failures, s.Traps)
	return nil
}

func listRuns(ctx context.Context, st *journal.Store, scriptName string, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx, scriptName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if runs == nil {
		runs = []journal.Run{}
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found in journal.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%s %s  %s  %d step(s)  %s\n", statusMark(r.Pass), r.ID, r.Script, r.StepCount, r.Final)
	}
	return nil
}

// openJournal opens the journal named by --db or the config. The journal
// must already exist; trace and replay never create one.
func openJournal(cmd *cobra.Command, flagValue string, root *RootOptions) (*journal.Store, error) {
	path := databasePath(cmd, flagValue, root)
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no journal: pass --db or set db in config")
	}
	if !fileExists(path) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
	}
	st, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}

// findRun returns runID, or the latest run when runID is empty.
func findRun(ctx context.Context, st *journal.Store, runID string) (journal.Run, error) {
	var (
		run journal.Run
		err error
	)
	if runID == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, runID)
	}
	if errors.Is(err, journal.ErrRunNotFound) {
		if runID == "" {
			return journal.Run{}, NewExitError(ExitCommandError, "no runs found in journal")
		}
		return journal.Run{}, NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return journal.Run{}, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	return run, nil
}
