package yield

import "fmt"

// State is the severity-ordered outcome of an operation.
type State uint8

const (
	// StateOK means nothing to report.
	StateOK State = iota
	// StatePartial means the operation completed with a caller-visible gap.
	StatePartial
	// StateFail means the effect was not performed; state stays well-defined.
	StateFail
	// StateTrap means an uncontrolled fault was captured and converted.
	StateTrap
)

// Intent is advisory guidance for the caller. It has no ordering.
type Intent uint8

const (
	IntentNone Intent = iota
	IntentStop
	IntentRetry
	IntentDefer
)

// Origin records where an outcome was produced.
type Origin uint8

const (
	OriginLocal Origin = iota
	OriginWorker
	OriginProcess
	OriginRemote
)

var (
	stateNames  = [...]string{"ok", "partial", "fail", "trap"}
	intentNames = [...]string{"none", "stop", "retry", "defer"}
	originNames = [...]string{"local", "worker", "process", "remote"}
)

// Severity returns the rank of s. Unknown states rank above trap so that a
// corrupted value is never silently dropped by Merge.
func (s State) Severity() int {
	return int(s)
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (i Intent) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return fmt.Sprintf("intent(%d)", uint8(i))
}

func (o Origin) String() string {
	if int(o) < len(originNames) {
		return originNames[o]
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// ParseState converts a lower-case state name.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

// ParseIntent converts a lower-case intent name. The empty string is none.
func ParseIntent(s string) (Intent, error) {
	if s == "" {
		return IntentNone, nil
	}
	for i, name := range intentNames {
		if name == s {
			return Intent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown intent %q", s)
}

// ParseOrigin converts a lower-case origin name. The empty string is local.
func ParseOrigin(s string) (Origin, error) {
	if s == "" {
		return OriginLocal, nil
	}
	for i, name := range originNames {
		if name == s {
			return Origin(i), nil
		}
	}
	return 0, fmt.Errorf("unknown origin %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Intent) UnmarshalText(text []byte) error {
	v, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Origin) UnmarshalText(text []byte) error {
	v, err := ParseOrigin(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
