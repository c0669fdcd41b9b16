package kernel

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes kernel assertion failures.
type ErrorCode string

const (
	// CodeUninitializedHandle: a call on a Handle that has no entry at all.
	CodeUninitializedHandle ErrorCode = "UNINITIALIZED_HANDLE"
	// CodeUnsupportedConvention: the handle cannot be called the requested way.
	CodeUnsupportedConvention ErrorCode = "UNSUPPORTED_CONVENTION"
	// CodeSignatureMismatch: the caller's native signature disagrees with the kernel's.
	CodeSignatureMismatch ErrorCode = "SIGNATURE_MISMATCH"
	// CodeBoxedContractViolation: a boxed call left the stack in an unexpected shape.
	CodeBoxedContractViolation ErrorCode = "BOXED_CONTRACT_VIOLATION"
	// CodeInvalidKernel: a constructor was given something that cannot be a kernel.
	CodeInvalidKernel ErrorCode = "INVALID_KERNEL"
)

// Sentinel errors matched by (*Error).Is.
var (
	ErrUninitializedHandle    = errors.New("uninitialized kernel handle")
	ErrUnsupportedConvention  = errors.New("unsupported calling convention")
	ErrSignatureMismatch      = errors.New("kernel signature mismatch")
	ErrBoxedContractViolation = errors.New("boxed kernel contract violation")
	ErrInvalidKernel          = errors.New("invalid kernel")
)

var sentinels = map[ErrorCode]error{
	CodeUninitializedHandle:    ErrUninitializedHandle,
	CodeUnsupportedConvention:  ErrUnsupportedConvention,
	CodeSignatureMismatch:      ErrSignatureMismatch,
	CodeBoxedContractViolation: ErrBoxedContractViolation,
	CodeInvalidKernel:          ErrInvalidKernel,
}

// Error is the value a Handle panics with when an invariant is violated.
// These are programming errors: they end the current call path and are not
// meant to be retried. A registry that wants them as ordinary errors recovers
// the panic and returns the *Error unchanged.
type Error struct {
	Op      string    `json:"op"`                // Operation that failed, e.g. "CallBoxed"
	Code    ErrorCode `json:"code"`              // Error code for categorization
	Message string    `json:"message"`           // Error message
	Details any       `json:"details,omitempty"` // Additional error details
}

func (e *Error) Error() string {
	return fmt.Sprintf("kernel error [%s] in %s: %s", e.Code, e.Op, e.Message)
}

// Is reports whether target is the sentinel for e's code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

// Unwrap exposes Details when it is an error.
func (e *Error) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

func fail(op string, code ErrorCode, format string, args ...any) {
	panic(&Error{Op: op, Code: code, Message: fmt.Sprintf(format, args...)})
}

func failWith(op string, code ErrorCode, details any, format string, args ...any) {
	panic(&Error{Op: op, Code: code, Message: fmt.Sprintf(format, args...), Details: details})
}
