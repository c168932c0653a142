package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/thaum/internal/yield"
)

// Step ops.
const (
	OpCreate = "create"
	OpRetire = "retire"
	OpExists = "exists"
	OpAttach = "attach"
	OpDetach = "detach"
	OpOwns   = "owns"
	OpFault  = "fault"
)

// Fault kinds for OpFault.
const (
	FaultError = "error"
	FaultValue = "value"
)

// Assertion types.
const (
	AssertFinal      = "final"
	AssertTraceCount = "trace_count"
)

// Script is a named sequence of operations against one ledger and tree.
type Script struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step      `yaml:"steps" json:"steps"`
	Assertions  []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// Step is a single operation. Which label fields apply depends on Op.
type Step struct {
	Op     string  `yaml:"op" json:"op"`
	As     string  `yaml:"as,omitempty" json:"as,omitempty"`
	Entity string  `yaml:"entity,omitempty" json:"entity,omitempty"`
	Parent string  `yaml:"parent,omitempty" json:"parent,omitempty"`
	Child  string  `yaml:"child,omitempty" json:"child,omitempty"`
	Fault  string  `yaml:"fault,omitempty" json:"fault,omitempty"`
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expect is checked against a step's outcome. Unset fields are not checked.
type Expect struct {
	State *yield.State `yaml:"state,omitempty" json:"state,omitempty"`
	Code  *uint32      `yaml:"code,omitempty" json:"code,omitempty"`

	// Holds is the boolean answer of exists and owns.
	Holds *bool `yaml:"holds,omitempty" json:"holds,omitempty"`
}

// Assertion validates the whole run.
//
//   - final: Result.Final has State and, if given, Code
//   - trace_count: Op appears Count times, restricted to State if given
type Assertion struct {
	Type  string       `yaml:"type" json:"type"`
	Op    string       `yaml:"op,omitempty" json:"op,omitempty"`
	State *yield.State `yaml:"state,omitempty" json:"state,omitempty"`
	Code  *uint32      `yaml:"code,omitempty" json:"code,omitempty"`
	Count int          `yaml:"count,omitempty" json:"count,omitempty"`
}

// Load error codes.
const (
	ErrCodeRead   = "S001"
	ErrCodeYAML   = "S002"
	ErrCodeSchema = "S003"
)

// LoadError reports why a script could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is a LoadError for a script that
// parsed but did not satisfy the schema.
func IsSchemaError(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeSchema
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: "failed to read script", Err: err}
	}
	s, err := ParseScript(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return s, nil
}

// ParseScript decodes and validates script YAML.
//
// The document is checked against the CUE schema first so that structural
// problems are reported in one place, then decoded strictly into a Script.
func ParseScript(data []byte) (*Script, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeYAML, Message: "failed to parse YAML", Err: err}
	}
	if err := validateSchema(raw); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: err.Error(), Err: err}
	}

	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, &LoadError{Code: ErrCodeYAML, Message: "failed to decode script", Err: err}
	}
	s.normalize()
	return &s, nil
}

// Validate checks a script built in code. Scripts from ParseScript have
// already passed the schema.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, st := range s.Steps {
		switch st.Op {
		case OpCreate:
			if st.As == "" {
				return fmt.Errorf("steps[%d]: create requires as", i)
			}
		case OpRetire, OpExists, OpAttach, OpDetach, OpOwns:
		case OpFault:
			if st.Fault != FaultError && st.Fault != FaultValue {
				return fmt.Errorf("steps[%d]: unknown fault kind %q", i, st.Fault)
			}
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, st.Op)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertFinal:
		case AssertTraceCount:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: op is required for trace_count", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}

func (s *Script) normalize() {
	for i := range s.Steps {
		st := &s.Steps[i]
		st.As = norm.NFC.String(st.As)
		st.Entity = norm.NFC.String(st.Entity)
		st.Parent = norm.NFC.String(st.Parent)
		st.Child = norm.NFC.String(st.Child)
	}
}
