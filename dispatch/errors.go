package dispatch

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/hupe1980/opkernel/kernel"
)

// Registry errors. They are returned wrapped with the operator and dispatch
// key; match them with errors.Is.
var (
	ErrKernelNotFound  = errors.New("kernel not found")
	ErrDuplicateKernel = errors.New("kernel already registered")
	ErrInvalidHandle   = errors.New("invalid kernel handle")
)

// PanicError is returned when a kernel panics with something other than a
// *kernel.Error.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("kernel panicked: %v", p.Value) }

// StackTrace returns the stack of the goroutine that panicked.
func (p *PanicError) StackTrace() []byte { return p.Stack }

// Unwrap exposes the panic value when it is an error.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// recoverKernel runs fn and converts a panic into an error. Kernel assertion
// failures are returned unchanged.
func recoverKernel(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if kErr, ok := r.(*kernel.Error); ok {
			err = kErr
			return
		}
		err = &PanicError{Value: r, Stack: debug.Stack()}
	}()
	fn()
	return nil
}
