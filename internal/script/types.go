package script

import (
	"github.com/roach88/thaum/internal/canon"
	"github.com/roach88/thaum/internal/ecs"
	"github.com/roach88/thaum/internal/yield"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64 `json:"seq"`
	Step Step  `json:"step"`

	// Args maps each label role of the step to "label=handle", e.g.
	// "parent": "e1=1@1". The fault op records its kind instead.
	Args map[string]string `json:"args,omitempty"`

	// Entity is the handle produced by create.
	Entity *ecs.Entity `json:"entity,omitempty"`

	// Holds is the answer of exists and owns.
	Holds *bool `json:"holds,omitempty"`

	Yield yield.Yield `json:"yield"`
}

// Result is the outcome of running a script.
type Result struct {
	Script string       `json:"script"`
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final is every step yield folded with yield.Merge.
	Final yield.Yield `json:"final"`
}

// NewResult returns a passing result for the named script.
func NewResult(name string) *Result {
	return &Result{
		Script: name,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Snapshot returns the trace as a canonical-JSON-ready map. Expectations
// and raw labels are left out; Args already carries the resolved handles.
func (r *Result) Snapshot() map[string]any {
	trace := make([]any, len(r.Trace))
	for i, ev := range r.Trace {
		m := map[string]any{
			"seq":   ev.Seq,
			"op":    ev.Step.Op,
			"yield": yieldMap(ev.Yield),
		}
		if len(ev.Args) > 0 {
			args := make(map[string]any, len(ev.Args))
			for k, v := range ev.Args {
				args[k] = v
			}
			m["args"] = args
		}
		if ev.Entity != nil {
			m["entity"] = ev.Entity.String()
		}
		if ev.Holds != nil {
			m["holds"] = *ev.Holds
		}
		trace[i] = m
	}
	return map[string]any{
		"script": r.Script,
		"final":  yieldMap(r.Final),
		"trace":  trace,
	}
}

// Digest is the content address of the run's snapshot.
func (r *Result) Digest() (string, error) {
	return canon.Digest(canon.DomainTrace, r.Snapshot())
}

func yieldMap(y yield.Yield) map[string]any {
	return map[string]any{
		"state":  y.State.String(),
		"intent": y.Intent.String(),
		"origin": y.Origin.String(),
		"code":   y.Code,
		"info":   y.Info,
	}
}
