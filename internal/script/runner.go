package script

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/thaum/internal/ecs"
	"github.com/roach88/thaum/internal/ward"
	"github.com/roach88/thaum/internal/yield"
)

// Options configures Run.
type Options struct {
	// Clock stamps steps. Defaults to NewClock().
	Clock Sequencer

	// Logger receives per-step debug records and contained panics.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Runner executes scripts against a fresh ledger and tree per run.
type Runner struct {
	clock  Sequencer
	guard  ward.Guard
	logger *slog.Logger
}

// NewRunner returns a runner with opts applied.
func NewRunner(opts Options) *Runner {
	clock := opts.Clock
	if clock == nil {
		clock = NewClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		clock:  clock,
		guard:  ward.Guard{Logger: logger},
		logger: logger,
	}
}

// Run executes s with default options.
func Run(s *Script) (*Result, error) {
	return NewRunner(Options{}).Run(s)
}

// Run executes every step of s in order. Expectation mismatches and failed
// assertions are recorded on the result; the error return is reserved for
// scripts that cannot run at all.
func (r *Runner) Run(s *Script) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	st := &state{
		ledger: ecs.NewLedger(),
		tree:   ecs.NewTree(),
		labels: make(map[string]ecs.Entity),
	}
	result := NewResult(s.Name)

	for i, step := range s.Steps {
		ev := TraceEvent{Seq: r.clock.Next(), Step: step}
		ev.Yield = r.guard.Contain(func() yield.Yield {
			return st.apply(i, step, &ev)
		})
		result.Final.Merge(ev.Yield)
		result.Trace = append(result.Trace, ev)

		r.logger.Debug("step",
			"script", s.Name,
			"seq", ev.Seq,
			"op", step.Op,
			"yield", ev.Yield.String(),
		)

		if step.Expect != nil {
			checkExpect(result, i, ev)
		}
	}

	for i, a := range s.Assertions {
		checkAssertion(result, i, a)
	}

	return result, nil
}

// state is the world a single run mutates.
type state struct {
	ledger *ecs.Ledger
	tree   *ecs.Tree
	labels map[string]ecs.Entity
}

func (s *state) resolve(label string) ecs.Entity {
	return s.labels[norm.NFC.String(label)]
}

func (s *state) arg(label string) string {
	return label + "=" + s.resolve(label).String()
}

func (s *state) apply(i int, step Step, ev *TraceEvent) yield.Yield {
	switch step.Op {
	case OpCreate:
		e := s.ledger.Create()
		s.labels[norm.NFC.String(step.As)] = e
		ev.Args = map[string]string{"as": step.As}
		ev.Entity = &e
		return yield.OK()

	case OpRetire:
		ev.Args = map[string]string{"entity": s.arg(step.Entity)}
		return s.ledger.Retire(s.resolve(step.Entity))

	case OpExists:
		ev.Args = map[string]string{"entity": s.arg(step.Entity)}
		holds := s.ledger.Exists(s.resolve(step.Entity))
		ev.Holds = &holds
		return yield.OK()

	case OpAttach:
		ev.Args = map[string]string{"parent": s.arg(step.Parent), "child": s.arg(step.Child)}
		return s.tree.Attach(s.resolve(step.Parent), s.resolve(step.Child))

	case OpOwns:
		ev.Args = map[string]string{"parent": s.arg(step.Parent), "child": s.arg(step.Child)}
		holds := s.tree.Owns(s.resolve(step.Parent), s.resolve(step.Child))
		ev.Holds = &holds
		return yield.OK()

	case OpDetach:
		ev.Args = map[string]string{"child": s.arg(step.Child)}
		return s.tree.Detach(s.resolve(step.Child))

	case OpFault:
		ev.Args = map[string]string{"fault": step.Fault}
		if step.Fault == FaultError {
			panic(fmt.Errorf("scripted fault at step %d", i))
		}
		panic(fmt.Sprintf("scripted fault at step %d", i))
	}

	// Validate rejects unknown ops before the run starts.
	panic(fmt.Sprintf("unknown op %q", step.Op))
}

func checkExpect(result *Result, i int, ev TraceEvent) {
	exp := ev.Step.Expect
	prefix := fmt.Sprintf("step %d (%s)", i, ev.Step.Op)

	if exp.State != nil && ev.Yield.State != *exp.State {
		result.AddError(fmt.Sprintf("%s: state = %s, want %s", prefix, ev.Yield.State, *exp.State))
	}
	if exp.Code != nil && ev.Yield.Code != *exp.Code {
		result.AddError(fmt.Sprintf("%s: code = %d, want %d", prefix, ev.Yield.Code, *exp.Code))
	}
	if exp.Holds != nil {
		switch {
		case ev.Holds == nil:
			result.AddError(fmt.Sprintf("%s: holds expected but %s has no boolean answer", prefix, ev.Step.Op))
		case *ev.Holds != *exp.Holds:
			result.AddError(fmt.Sprintf("%s: holds = %t, want %t", prefix, *ev.Holds, *exp.Holds))
		}
	}
}

func checkAssertion(result *Result, i int, a Assertion) {
	prefix := fmt.Sprintf("assertion %d (%s)", i, a.Type)

	switch a.Type {
	case AssertFinal:
		if a.State != nil && result.Final.State != *a.State {
			result.AddError(fmt.Sprintf("%s: state = %s, want %s", prefix, result.Final.State, *a.State))
		}
		if a.Code != nil && result.Final.Code != *a.Code {
			result.AddError(fmt.Sprintf("%s: code = %d, want %d", prefix, result.Final.Code, *a.Code))
		}

	case AssertTraceCount:
		n := 0
		for _, ev := range result.Trace {
			if ev.Step.Op != a.Op {
				continue
			}
			if a.State != nil && ev.Yield.State != *a.State {
				continue
			}
			n++
		}
		if n != a.Count {
			result.AddError(fmt.Sprintf("%s: %s appears %d times, want %d", prefix, a.Op, n, a.Count))
		}
	}
}
