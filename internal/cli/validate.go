package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/thaum/internal/script"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Script     string `json:"script,omitempty"`
	Steps      int    `json:"steps,omitempty"`
	Assertions int    `json:"assertions,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Validate a script without running it",
		Long: `Check a YAML script against the script schema without running it.

Exit codes:
  0 - Script is valid
  1 - Script is malformed or violates the schema
  2 - Script could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sc, err := script.LoadScript(path)
	if err != nil {
		return scriptLoadFailure(formatter, err, ExitFailure)
	}

	result := ValidationResult{
		Valid:      true,
		Script:     sc.Name,
		Steps:      len(sc.Steps),
		Assertions: len(sc.Assertions),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d step(s), %d assertion(s))\n",
		result.Script, result.Steps, result.Assertions)
	return nil
}

// scriptLoadFailure reports a script.LoadError. Unreadable files are
// always a command error; malformed scripts exit with invalidCode.
func scriptLoadFailure(formatter *OutputFormatter, err error, invalidCode int) error {
	var le *script.LoadError
	if !errors.As(err, &le) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	var details any
	if le.Err != nil {
		details = le.Err.Error()
	}
	_ = formatter.Error(le.Code, le.Message, details)

	code := invalidCode
	if le.Code == script.ErrCodeRead {
		code = ExitCommandError
	}
	return WrapExitError(code, fmt.Sprintf("%s: %s", le.Code, le.Message), le.Err)
}
