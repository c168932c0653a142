package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/thaum/internal/journal"
	"github.com/roach88/thaum/internal/script"
)

// StepView is one step as printed by run and trace.
type StepView struct {
	Seq    int64             `json:"seq"`
	Op     string            `json:"op"`
	Args   map[string]string `json:"args,omitempty"`
	Entity string            `json:"entity,omitempty"`
	Holds  *bool             `json:"holds,omitempty"`
	Yield  string            `json:"yield"`
}

func stepViewFromEvent(ev script.TraceEvent) StepView {
	v := StepView{
		Seq:   ev.Seq,
		Op:    ev.Step.Op,
		Args:  ev.Args,
		Holds: ev.Holds,
		Yield: ev.Yield.String(),
	}
	if ev.Entity != nil {
		v.Entity = ev.Entity.String()
	}
	return v
}

func stepViewFromRecord(rec journal.StepRecord) StepView {
	args := make(map[string]string)
	for k, val := range map[string]string{
		"as":     rec.Step.As,
		"entity": rec.Step.Entity,
		"parent": rec.Step.Parent,
		"child":  rec.Step.Child,
		"fault":  rec.Step.Fault,
	} {
		if val != "" {
			args[k] = val
		}
	}
	return StepView{
		Seq:    rec.Seq,
		Op:     rec.Step.Op,
		Args:   args,
		Entity: rec.Handle,
		Holds:  rec.Holds,
		Yield:  rec.Yield.String(),
	}
}

// writeStep prints a step as "[  3] attach child=e2=2@1 parent=e1=1@1 -> ok".
func writeStep(w io.Writer, v StepView) {
	keys := make([]string, 0, len(v.Args))
	for k := range v.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "  [%3d] %s", v.Seq, v.Op)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, v.Args[k])
	}
	fmt.Fprintf(&b, " -> %s", v.Yield)
	if v.Entity != "" {
		fmt.Fprintf(&b, " (%s)", v.Entity)
	}
	if v.Holds != nil {
		fmt.Fprintf(&b, " holds=%t", *v.Holds)
	}
	fmt.Fprintln(w, b.String())
}

func statusMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
