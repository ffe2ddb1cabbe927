package annidx

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, per the error-handling design: a failure of one
// of these kinds unwraps to it via errors.Is. I/O and driver errors are
// passed through, wrapped in IndexError, without a sentinel.
var (
	// ErrParameter marks a contradictory or unknown ParamBag entry,
	// raised at parameter-setting time and never during search.
	ErrParameter = errors.New("annidx: parameter error")

	// ErrDataMutation marks a loaded index whose object id range or
	// distance function tag disagrees with the in-memory dataset.
	ErrDataMutation = errors.New("annidx: data mutation error")

	// ErrCorruption marks a truncated or malformed persisted index.
	ErrCorruption = errors.New("annidx: corruption error")

	// ErrUnsupported marks an operation a given index family does not
	// implement (range search on HNSW, delete on NAPP).
	ErrUnsupported = errors.New("annidx: unsupported operation")

	// ErrDistanceFailure marks a space that returned NaN; fatal and
	// never retried.
	ErrDistanceFailure = errors.New("annidx: distance function failure")
)

// IndexError wraps one of the sentinel errors above with the operation
// name that produced it, the way every failure path in this module
// should report itself.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("annidx: %v", e.Err)
	}
	return fmt.Sprintf("annidx: %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool { return errors.Is(e.Err, target) }

// WrapError attaches an operation name to err, returning nil unchanged.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IndexError{Op: op, Err: err}
}

// ParameterErrorf builds an ErrParameter-compatible error for op.
func ParameterErrorf(op, format string, args ...any) error {
	return WrapError(op, fmt.Errorf("%w: %s", ErrParameter, fmt.Sprintf(format, args...)))
}
