package kernel

import (
	"fmt"
	"strings"

	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/signature"
)

// OperatorKernel is a kernel instance: the object a kernel runs against.
// Boxed-only kernels receive nil.
type OperatorKernel = any

// BoxedKernelFunction implements the boxed convention: it consumes its
// arguments from the top of stack and pushes its results.
type BoxedKernelFunction func(k OperatorKernel, stack *ivalue.Stack)

// Void is the Return type for kernels without a result.
type Void = signature.Void

// unboxedBinder returns the native function of a kernel instance as a func
// value whose dynamic type is the kernel's Go signature.
type unboxedBinder func(OperatorKernel) any

const (
	opCallBoxed       = "CallBoxed"
	opCallUnboxed     = "CallUnboxed"
	opCallUnboxedOnly = "CallUnboxedOnly"
	opMaterialize     = "Materialize"
)

// Handle is a type-erased kernel callable through the boxed and the unboxed
// convention. The zero Handle is invalid. Copies of a Handle share the same
// kernel instance.
type Handle struct {
	// instance cell; nil for boxed-only handles
	functor *functorCell

	boxed   BoxedKernelFunction
	unboxed unboxedBinder

	// sig is nil when the native signature is unknown (boxed registration)
	sig         *signature.Signature
	fingerprint signature.Fingerprint
}

// IsValid reports whether h has at least one entry.
func (h Handle) IsValid() bool {
	return h.boxed != nil || h.unboxed != nil
}

// HasBoxed reports whether h can be called through the boxed convention.
func (h Handle) HasBoxed() bool { return h.boxed != nil }

// HasUnboxed reports whether h has a native entry.
func (h Handle) HasUnboxed() bool { return h.unboxed != nil }

// Fingerprint returns the recorded signature fingerprint, if any.
func (h Handle) Fingerprint() (signature.Fingerprint, bool) {
	return h.fingerprint, h.sig != nil
}

// Signature returns the native signature the handle was built from, if known.
func (h Handle) Signature() (signature.Signature, bool) {
	if h.sig == nil {
		return signature.Signature{}, false
	}
	return *h.sig, true
}

// Materialize runs a pending deferred constructor. It is a no-op for handles
// whose instance already exists or that have none.
func (h Handle) Materialize() {
	if !h.IsValid() {
		fail(opMaterialize, CodeUninitializedHandle, "tried to materialize an uninitialized kernel handle")
	}
	if h.functor != nil {
		h.functor.get(opMaterialize)
	}
}

// Materialized reports whether the kernel instance exists. Handles without
// an instance report true.
func (h Handle) Materialized() bool {
	return h.functor == nil || h.functor.state.Load() != nil
}

// CallBoxed invokes the kernel with the arguments on stack and leaves its
// results in their place.
//
// It panics with UNINITIALIZED_HANDLE on an empty handle and with
// UNSUPPORTED_CONVENTION when the handle was built unboxed-only.
func (h Handle) CallBoxed(stack *ivalue.Stack) {
	h.callBoxed(opCallBoxed, stack)
}

// String describes the entries of h, e.g. "Handle(boxed+unboxed (int) -> int)".
func (h Handle) String() string {
	var entries []string
	if h.boxed != nil {
		entries = append(entries, "boxed")
	}
	if h.unboxed != nil {
		entries = append(entries, "unboxed")
	}
	if len(entries) == 0 {
		return "Handle(invalid)"
	}
	s := strings.Join(entries, "+")
	if h.sig != nil {
		s += " " + h.sig.String()
	}
	return fmt.Sprintf("Handle(%s)", s)
}

func (h Handle) callBoxed(op string, stack *ivalue.Stack) {
	if h.boxed == nil {
		if h.unboxed == nil {
			fail(op, CodeUninitializedHandle, "tried to call %s on an uninitialized kernel handle", op)
		}
		fail(op, CodeUnsupportedConvention, "tried to call %s on a kernel that can only be called with CallUnboxedOnly", op)
	}
	if stack == nil {
		fail(op, CodeBoxedContractViolation, "stack must not be nil")
	}
	h.boxed(h.instance(op), stack)
}

func (h Handle) instance(op string) OperatorKernel {
	if h.functor == nil {
		return nil
	}
	return h.functor.get(op).instance
}

func (h Handle) native(op string) any {
	if h.unboxed == nil {
		if h.boxed == nil {
			fail(op, CodeUninitializedHandle, "tried to call %s on an uninitialized kernel handle", op)
		}
		fail(op, CodeUnsupportedConvention, "tried to call %s on a kernel that has no unboxed entry", op)
	}
	return h.functor.get(op).native
}
