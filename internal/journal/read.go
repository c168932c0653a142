package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/thaum/internal/script"
	"github.com/roach88/thaum/internal/yield"
)

// Run is a journaled script run.
type Run struct {
	ID          string      `json:"id"`
	Script      string      `json:"script"`
	Description string      `json:"description,omitempty"`
	Digest      string      `json:"digest"`
	Pass        bool        `json:"pass"`
	Final       yield.Yield `json:"final"`
	StepCount   int         `json:"step_count"`
	Version     string      `json:"version"`
}

// StepRecord is one journaled step. Step carries the op and labels only;
// expectations are not journaled.
type StepRecord struct {
	Seq   int64       `json:"seq"`
	Step  script.Step `json:"step"`
	Yield yield.Yield `json:"yield"`
	Holds *bool       `json:"holds,omitempty"`

	// Handle is the entity produced by create, as "id@gen".
	Handle string `json:"handle,omitempty"`
}

const runColumns = `id, script, description, digest, pass,
	final_state, final_intent, final_origin, final_code, final_info,
	step_count, thaum_version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r                     Run
		pass                  int
		state, intent, origin string
		code                  uint32
		info                  int64
	)
	err := row.Scan(&r.ID, &r.Script, &r.Description, &r.Digest, &pass,
		&state, &intent, &origin, &code, &info,
		&r.StepCount, &r.Version)
	if err != nil {
		return Run{}, err
	}
	r.Pass = pass != 0
	r.Final, err = parseYield(state, intent, origin, code, info)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return r, nil
}

// ReadRun returns the run with the given id, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	return r, nil
}

// ListRuns returns runs in the order they were recorded. A non-empty
// scriptName restricts the listing to runs of that script.
func (s *Store) ListRuns(ctx context.Context, scriptName string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if scriptName != "" {
		query += ` WHERE script = ?`
		args = append(args, scriptName)
	}
	query += ` ORDER BY rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently recorded run, or ErrRunNotFound
// when the journal is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY rowid DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// ReadSteps returns the steps of a run ordered by seq.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, op, label_as, entity, parent, child, fault,
			state, intent, origin, code, info, holds, handle
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read steps %s: %w", runID, err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var (
			rec                   StepRecord
			state, intent, origin string
			code                  uint32
			info                  int64
			holds                 sql.NullInt64
		)
		err := rows.Scan(&rec.Seq, &rec.Step.Op,
			&rec.Step.As, &rec.Step.Entity, &rec.Step.Parent, &rec.Step.Child, &rec.Step.Fault,
			&state, &intent, &origin, &code, &info, &holds, &rec.Handle)
		if err != nil {
			return nil, fmt.Errorf("read steps %s: %w", runID, err)
		}
		rec.Yield, err = parseYield(state, intent, origin, code, info)
		if err != nil {
			return nil, fmt.Errorf("read steps %s seq %d: %w", runID, rec.Seq, err)
		}
		if holds.Valid {
			h := holds.Int64 != 0
			rec.Holds = &h
		}
		steps = append(steps, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read steps %s: %w", runID, err)
	}
	return steps, nil
}
