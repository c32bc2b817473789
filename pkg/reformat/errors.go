package reformat

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/yaklabco/gomdwrap/pkg/mdevent"
)

// Sentinel errors for internal consistency failures. Both halt the reformat
// and leave the caller's text untouched.
var (
	// ErrContractViolation reports an event the emitters have no transition
	// for, i.e. a parser stream that is not nested as expected.
	ErrContractViolation = errors.New("parser contract violated")

	// ErrInvariant reports an unbalanced indentation frame or a position
	// that fell outside the source.
	ErrInvariant = errors.New("reformat invariant violated")
)

// ContractError describes an unexpected event.
type ContractError struct {
	// Event is the offending event.
	Event mdevent.Event
	// Context names the construct being emitted.
	Context string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: unexpected %s in %s", ErrContractViolation, e.Event, e.Context)
}

// Unwrap returns ErrContractViolation.
func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

// InvariantError describes an indentation stack misuse or a runtime fault
// inside an emitter.
type InvariantError struct {
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvariant, e.Detail)
}

// Unwrap returns ErrInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

func violation(ev mdevent.Event, context string) {
	panic(&ContractError{Event: ev, Context: context})
}

func invariant(format string, args ...any) {
	panic(&InvariantError{Detail: fmt.Sprintf(format, args...)})
}

// recoverFailure turns the fail-fast panics of the emitters into an error.
// Runtime faults, such as a slice out of range, become an InvariantError so
// the caller's text is left untouched. Any other panic is re-raised.
func recoverFailure(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	switch err := e.(type) {
	case *ContractError:
		*errp = err
	case *InvariantError:
		*errp = err
	case runtime.Error:
		*errp = &InvariantError{Detail: err.Error()}
	default:
		panic(e)
	}
}
