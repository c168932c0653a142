package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/thaum/internal/journal"
	"github.com/roach88/thaum/internal/script"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	NoJournal bool

	// RunIDGenerator allows overriding run ids (for testing).
	// If nil, defaults to journal.UUIDv7Generator.
	RunIDGenerator journal.RunIDGenerator
}

// RunOutput is the result of the run command.
type RunOutput struct {
	RunID  string     `json:"run_id,omitempty"`
	Script string     `json:"script"`
	Pass   bool       `json:"pass"`
	Final  string     `json:"final"`
	Digest string     `json:"digest"`
	Errors []string   `json:"errors,omitempty"`
	Trace  []StepView `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script and journal its trace",
		Long: `Run a YAML script against a fresh entity ledger and ownership tree.

Every step's yield is checked against its expectations, assertions are
evaluated over the whole trace, and the run is recorded in the journal
unless --no-journal is given or no journal path is configured.

Exit codes:
  0 - All expectations and assertions hold
  1 - At least one expectation or assertion failed
  2 - Command error (unreadable script, journal error, etc.)

Examples:
  thaum run ./scripts/ownership.yaml
  thaum run ./scripts/ownership.yaml --db ./thaum.db --verbose
  thaum run ./scripts/ownership.yaml --no-journal --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record the run")

	return cmd
}

func runScript(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	sc, err := script.LoadScript(path)
	if err != nil {
		return scriptLoadFailure(formatter, err, ExitCommandError)
	}
	formatter.VerboseLog("Loaded %s: %d step(s), %d assertion(s)", sc.Name, len(sc.Steps), len(sc.Assertions))

	result, err := script.NewRunner(script.Options{Logger: logger}).Run(sc)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run script", err)
	}

	digest, err := result.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest trace", err)
	}

	out := RunOutput{
		Script: result.Script,
		Pass:   result.Pass,
		Final:  result.Final.String(),
		Digest: digest,
		Errors: result.Errors,
		Trace:  make([]StepView, len(result.Trace)),
	}
	for i, ev := range result.Trace {
		out.Trace[i] = stepViewFromEvent(ev)
	}

	dbPath := databasePath(cmd, opts.Database, opts.RootOptions)
	if dbPath != "" && !opts.NoJournal && !opts.Config.NoJournal {
		runID, err := recordRun(cmd.Context(), opts, dbPath, sc, result)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), dbPath)
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		out.RunID = runID
		logger.Info("run journaled", "run_id", runID, "db", dbPath, "script", sc.Name)
	}

	if formatter.JSON() {
		if !out.Pass {
			if err := formatter.Failure(ErrCodeFailed, "script failed", out); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "script failed")
		}
		return formatter.Success(out)
	}

	return outputRunText(cmd, out, opts.Verbose)
}

func recordRun(ctx context.Context, opts *RunOptions, dbPath string, sc *script.Script, result *script.Result) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := journal.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}
	runID := gen.Generate()
	if err := st.RecordRun(ctx, runID, sc, result); err != nil {
		return "", err
	}
	return runID, nil
}

func outputRunText(cmd *cobra.Command, out RunOutput, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "%s %s: %d step(s), final %s\n", statusMark(out.Pass), out.Script, len(out.Trace), out.Final)
	if verbose {
		for _, v := range out.Trace {
			writeStep(w, v)
		}
		fmt.Fprintf(w, "  digest: %s\n", out.Digest)
	}
	if out.RunID != "" {
		fmt.Fprintf(w, "  run: %s\n", out.RunID)
	}

	if out.Pass {
		return nil
	}
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("script failed with %d error(s)", len(out.Errors)))
}
