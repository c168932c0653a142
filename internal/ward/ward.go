// Package ward contains panics raised by caller-supplied operations and
// converts them into yields.
//
// Contain is the only place thaum runs arbitrary code. Whatever the
// operation does, the call returns a yield and never re-panics:
//
//	y := ward.Contain(func() yield.Yield {
//	    return doWork()
//	})
//	if !ward.Warded(y) {
//	    // fail or trap
//	}
package ward

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/roach88/thaum/internal/yield"
)

// Codes carried by a trap yield produced by Contain.
const (
	// CodeStructuredFault marks a panic whose value is an error,
	// runtime errors included.
	CodeStructuredFault uint32 = 1

	// CodeOpaqueFault marks a panic with any other value.
	CodeOpaqueFault uint32 = 2
)

// Fault describes a recovered panic.
type Fault struct {
	// Value is the argument that was passed to panic.
	Value any

	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Structured reports whether the panic value is an error.
func (f *Fault) Structured() bool {
	_, ok := f.Value.(error)
	return ok
}

// Code returns CodeStructuredFault or CodeOpaqueFault.
func (f *Fault) Code() uint32 {
	if f.Structured() {
		return CodeStructuredFault
	}
	return CodeOpaqueFault
}

// Yield returns the trap yield for this fault.
func (f *Fault) Yield() yield.Yield {
	return yield.New(yield.StateTrap).
		WithOrigin(yield.OriginProcess).
		WithCode(f.Code())
}

// Error implements error so a Fault can be logged or wrapped.
func (f *Fault) Error() string {
	return fmt.Sprintf("contained panic: %v", f.Value)
}

// Unwrap returns the panic value when it is an error.
func (f *Fault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

// Guard contains panics and optionally logs them.
// The zero Guard is silent.
type Guard struct {
	Logger *slog.Logger
}

// Contain runs fn and merges its yield into a default yield. A panic is
// merged in as trap@process with the fault's code.
func (g Guard) Contain(fn func() yield.Yield) (out yield.Yield) {
	defer func() {
		if r := recover(); r != nil {
			f := &Fault{Value: r, Stack: debug.Stack()}
			g.report(f)
			out.Merge(f.Yield())
		}
	}()
	out.Merge(fn())
	return out
}

// ContainFunc runs fn, which reports nothing. The result stays ok unless
// fn panics.
func (g Guard) ContainFunc(fn func()) yield.Yield {
	return g.Contain(func() yield.Yield {
		fn()
		return yield.OK()
	})
}

func (g Guard) report(f *Fault) {
	if g.Logger == nil {
		return
	}
	g.Logger.Warn("panic contained",
		"panic", fmt.Sprint(f.Value),
		"code", f.Code(),
		"stack", string(f.Stack),
	)
}

// Contain is Guard{}.Contain.
func Contain(fn func() yield.Yield) yield.Yield {
	return Guard{}.Contain(fn)
}

// ContainFunc is Guard{}.ContainFunc.
func ContainFunc(fn func()) yield.Yield {
	return Guard{}.ContainFunc(fn)
}

// Warded reports whether y is neither fail nor trap.
func Warded(y yield.Yield) bool {
	return !y.IsFailure()
}
