package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/thaum/internal/script"
)

// ReplayResult compares a fresh run of journaled steps with what the
// journal recorded.
type ReplayResult struct {
	RunID          string         `json:"run_id"`
	Match          bool           `json:"match"`
	Mismatches     []string       `json:"mismatches,omitempty"`
	Digest         string         `json:"digest"`
	RecordedDigest string         `json:"recorded_digest"`
	Result         *script.Result `json:"-"`
}

// Replay re-executes the steps of runID against a fresh ledger and tree
// and reports every step whose yield, handle or boolean answer differs
// from the journal. Sequence numbers restart where the recorded run
// started so matching runs produce the same digest.
func (s *Store) Replay(ctx context.Context, runID string, logger *slog.Logger) (*ReplayResult, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	records, err := s.ReadSteps(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("replay %s: run has no steps", runID)
	}

	sc := &script.Script{
		Name:        run.Script,
		Description: run.Description,
		Steps:       make([]script.Step, len(records)),
	}
	for i, rec := range records {
		sc.Steps[i] = rec.Step
	}

	runner := script.NewRunner(script.Options{
		Clock:  script.NewClockAt(records[0].Seq - 1),
		Logger: logger,
	})
	result, err := runner.Run(sc)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	digest, err := result.Digest()
	if err != nil {
		return nil, fmt.Errorf("replay %s: digest: %w", runID, err)
	}

	rr := &ReplayResult{
		RunID:          runID,
		Digest:         digest,
		RecordedDigest: run.Digest,
		Result:         result,
	}
	for i, rec := range records {
		compareStep(rr, rec, result.Trace[i])
	}
	if digest != run.Digest {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf("digest = %s, recorded %s", digest, run.Digest))
	}
	rr.Match = len(rr.Mismatches) == 0
	return rr, nil
}

func compareStep(rr *ReplayResult, rec StepRecord, ev script.TraceEvent) {
	prefix := fmt.Sprintf("seq %d (%s)", rec.Seq, rec.Step.Op)

	if ev.Seq != rec.Seq {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf("%s: replayed at seq %d", prefix, ev.Seq))
	}
	if ev.Yield != rec.Yield {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf("%s: yield = %s, recorded %s", prefix, ev.Yield, rec.Yield))
	}

	var handle string
	if ev.Entity != nil {
		handle = ev.Entity.String()
	}
	if handle != rec.Handle {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf("%s: handle = %q, recorded %q", prefix, handle, rec.Handle))
	}

	if formatHolds(ev.Holds) != formatHolds(rec.Holds) {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf("%s: holds = %s, recorded %s", prefix, formatHolds(ev.Holds), formatHolds(rec.Holds)))
	}
}

func formatHolds(b *bool) string {
	if b == nil {
		return "none"
	}
	return fmt.Sprintf("%t", *b)
}
