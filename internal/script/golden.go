package script

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/thaum/internal/canon"
)

// RunWithGolden runs s and compares its canonical trace with
// testdata/golden/{s.Name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/script -update
func RunWithGolden(t *testing.T, s *Script) (*Result, error) {
	t.Helper()

	result, err := NewRunner(Options{}).Run(s)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := canon.Marshal(result.Snapshot())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
