package host

import (
	"errors"
	"fmt"
	"strings"
)

// LinkError wraps a failure to bind the host API or instantiate the
// "env" host module — a malformed or version-mismatched compiled
// module, not a runtime trap.
type LinkError struct {
	err error
}

func (e *LinkError) Error() string { return fmt.Sprintf("host: link failure: %v", e.err) }
func (e *LinkError) Unwrap() error { return e.err }

// TrapError wraps a WASM trap raised while calling an exported
// function (out-of-bounds index, division by zero, an invalid
// int32.trunc — §6.2 "Trap conditions"). The host is expected to
// isolate a trap per robot rather than letting it propagate further;
// IsTrap lets a caller distinguish this case from a LinkError or an
// ordinary host-side I/O failure.
type TrapError struct {
	err error
}

func (e *TrapError) Error() string { return fmt.Sprintf("host: trap: %v", e.err) }
func (e *TrapError) Unwrap() error { return e.err }

// IsTrap reports whether err (or anything it wraps) is a TrapError.
func IsTrap(err error) bool {
	var t *TrapError
	return errors.As(err, &t)
}

func wrapInstantiateError(err error) error {
	if err == nil {
		return nil
	}
	return &LinkError{err: err}
}

// trapMessages are the wazero runtime-error texts for the trap
// conditions of §6.2: an out-of-bounds index (lowered to unreachable),
// integer division by zero, and a failed i32.trunc_f32_s.
var trapMessages = []string{
	"unreachable",
	"integer divide by zero",
	"integer overflow",
	"invalid conversion to integer",
}

// wrapCallError classifies a wazero function-call error as a trap
// (§6.2) or an ordinary call failure. wazero surfaces WASM traps as a
// runtime error whose message names the fault (e.g. "unreachable");
// there is no exported trap type to type-assert against in this
// wazero release, so the classification is message-based, same as the
// host's other best-effort error reporting.
func wrapCallError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, m := range trapMessages {
		if strings.Contains(msg, m) {
			return &TrapError{err: err}
		}
	}
	return fmt.Errorf("host: call failed: %w", err)
}
