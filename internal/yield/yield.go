package yield

import (
	"strconv"
	"strings"
)

// Yield is an outcome descriptor. The zero value is ok/none/local with empty
// payload, the same as OK().
type Yield struct {
	State  State  `json:"state" yaml:"state"`
	Intent Intent `json:"intent" yaml:"intent"`
	Origin Origin `json:"origin" yaml:"origin"`

	// Code and Info are defined per call site.
	Code uint32 `json:"code" yaml:"code"`
	Info uint64 `json:"info" yaml:"info"`
}

// OK returns the default yield.
func OK() Yield {
	return Yield{}
}

// New returns a yield with the given state and default everything else.
func New(s State) Yield {
	return Yield{State: s}
}

// WithState returns a copy of y with State set to s.
func (y Yield) WithState(s State) Yield {
	y.State = s
	return y
}

// WithIntent returns a copy of y with Intent set to i.
func (y Yield) WithIntent(i Intent) Yield {
	y.Intent = i
	return y
}

// WithOrigin returns a copy of y with Origin set to o.
func (y Yield) WithOrigin(o Origin) Yield {
	y.Origin = o
	return y
}

// WithCode returns a copy of y with Code set to c.
func (y Yield) WithCode(c uint32) Yield {
	y.Code = c
	return y
}

// WithInfo returns a copy of y with Info set to i.
func (y Yield) WithInfo(i uint64) Yield {
	y.Info = i
	return y
}

// IsOK reports whether the state is ok.
func (y Yield) IsOK() bool {
	return y.State == StateOK
}

// IsTrap reports whether a fault was captured.
func (y Yield) IsTrap() bool {
	return y.State == StateTrap
}

// IsFailure reports whether the state is fail or trap.
// Partial is not a failure.
func (y Yield) IsFailure() bool {
	return y.State == StateFail || y.State == StateTrap
}

// Not is the logical negation of a yield and equals IsFailure.
func (y Yield) Not() bool {
	return y.IsFailure()
}

// Severity returns the rank of the yield's state.
func (y Yield) Severity() int {
	return y.State.Severity()
}

// Merge returns a with all of its fields replaced by b's when b is strictly
// more severe. Equal severity keeps a unchanged.
func Merge(a, b Yield) Yield {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// MergeAll folds ys left to right starting from OK().
func MergeAll(ys ...Yield) Yield {
	out := OK()
	for _, y := range ys {
		out = Merge(out, y)
	}
	return out
}

// Merge folds b into y in place.
func (y *Yield) Merge(b Yield) {
	*y = Merge(*y, b)
}

// String renders the yield compactly, omitting default fields:
//
//	ok
//	fail/code=3
//	trap@process/code=1
//	partial/retry/code=4/info=7
func (y Yield) String() string {
	var b strings.Builder
	b.WriteString(y.State.String())
	if y.Intent != IntentNone {
		b.WriteByte('/')
		b.WriteString(y.Intent.String())
	}
	if y.Origin != OriginLocal {
		b.WriteByte('@')
		b.WriteString(y.Origin.String())
	}
	if y.Code != 0 {
		b.WriteString("/code=")
		b.WriteString(strconv.FormatUint(uint64(y.Code), 10))
	}
	if y.Info != 0 {
		b.WriteString("/info=")
		b.WriteString(strconv.FormatUint(y.Info, 10))
	}
	return b.String()
}
