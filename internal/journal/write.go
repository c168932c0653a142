package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/thaum/internal/script"
	"github.com/roach88/thaum/internal/yield"
)

// RecordRun writes a run and all of its steps in one transaction.
//
// Inserting a run id twice fails with a primary key violation; runs are
// append-only.
func (s *Store) RecordRun(ctx context.Context, runID string, sc *script.Script, result *script.Result) error {
	if runID == "" {
		return fmt.Errorf("record run: empty run id")
	}

	digest, err := result.Digest()
	if err != nil {
		return fmt.Errorf("record run %s: digest: %w", runID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run %s: begin: %w", runID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, script, description, digest, pass,
			final_state, final_intent, final_origin, final_code, final_info,
			step_count, thaum_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, result.Script, sc.Description, digest, boolToInt(result.Pass),
		result.Final.State.String(), result.Final.Intent.String(), result.Final.Origin.String(),
		result.Final.Code, int64(result.Final.Info),
		len(result.Trace), Version,
	)
	if err != nil {
		return fmt.Errorf("record run %s: insert run: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (run_id, seq, op, label_as, entity, parent, child, fault,
			state, intent, origin, code, info, holds, handle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record run %s: prepare steps: %w", runID, err)
	}
	defer stmt.Close()

	for _, ev := range result.Trace {
		var handle string
		if ev.Entity != nil {
			handle = ev.Entity.String()
		}
		_, err := stmt.ExecContext(ctx,
			runID, ev.Seq, ev.Step.Op,
			ev.Step.As, ev.Step.Entity, ev.Step.Parent, ev.Step.Child, ev.Step.Fault,
			ev.Yield.State.String(), ev.Yield.Intent.String(), ev.Yield.Origin.String(),
			ev.Yield.Code, int64(ev.Yield.Info),
			nullBool(ev.Holds), handle,
		)
		if err != nil {
			return fmt.Errorf("record run %s: insert step %d: %w", runID, ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run %s: commit: %w", runID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(boolToInt(*b)), Valid: true}
}

func parseYield(state, intent, origin string, code uint32, info int64) (yield.Yield, error) {
	s, err := yield.ParseState(state)
	if err != nil {
		return yield.Yield{}, err
	}
	i, err := yield.ParseIntent(intent)
	if err != nil {
		return yield.Yield{}, err
	}
	o, err := yield.ParseOrigin(origin)
	if err != nil {
		return yield.Yield{}, err
	}
	return yield.Yield{State: s, Intent: i, Origin: o, Code: code, Info: uint64(info)}, nil
}
