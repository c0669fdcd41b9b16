// Package kernel provides Handle, a type-erased operator kernel that can be
// invoked through two calling conventions:
//
//   - boxed: the kernel receives an *ivalue.Stack holding its arguments and
//     replaces them with its result
//   - unboxed: the kernel is called with native Go arguments and returns a
//     native Go result
//
// A Handle can be built from a boxed function, a stateful functor (eagerly or
// through a deferred constructor), a free function or a closure. Whichever way
// it was built, it can be called either way; the package converts between
// the conventions when only one entry is available.
//
// # Construction
//
//	h := kernel.MakeFromUnboxedFunction(func(x int) int { return x + 1 })
//
//	h := kernel.MakeFromUnboxedFunctorFactory(func() *QConv {
//	    return NewQConv(weights) // built on first call
//	})
//
//	h := kernel.MakeFromBoxedFunction(func(_ kernel.OperatorKernel, s *ivalue.Stack) {
//	    s.Drop(1)
//	    s.PushAny(true)
//	})
//
// A functor is any non-nil value whose method set contains a method named
// Call. Kernels are non-variadic and return at most one value; a kernel that
// returns nothing is called with Return type Void.
//
// # Invocation
//
//	h.CallBoxed(stack)
//	y := kernel.CallUnboxed1[int](h, 41)     // boxes if there is no native entry
//	y := kernel.CallUnboxedOnly1[int](h, 41) // native entry required
//
// The CallUnboxedN family covers arities 0 through 4. Kernels with more
// parameters are called boxed, or take a parameter struct.
//
// # Failures
//
// Calling a handle the wrong way is a programming error. Handle methods panic
// with a *Error carrying one of the ErrorCode values; they never log, recover
// or retry. Registries that prefer error values recover the panic (see
// package dispatch).
//
// # Concurrency
//
// A Handle is safe for concurrent use. A deferred constructor runs exactly
// once, even when several goroutines make the first call at the same time;
// if it panics, nothing is recorded and the next call tries again.
//
// Each Handle records a signature fingerprint when its native signature is
// known. The fingerprint is a best-effort check; the typed call path also
// verifies the native function with a Go type assertion, so a colliding
// fingerprint yields SIGNATURE_MISMATCH instead of a bad call.
package kernel
