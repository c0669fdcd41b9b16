package kernel

import (
	"reflect"
)

// MakeFromBoxedFunction creates a Handle from a boxed function. The native
// signature is unknown, so unboxed calls are not verified and always go
// through the stack.
//
// Example:
//
//	h := MakeFromBoxedFunction(func(_ OperatorKernel, s *ivalue.Stack) {
//	    s.Drop(1)
//	    s.PushAny(true)
//	})
func MakeFromBoxedFunction(fn BoxedKernelFunction) Handle {
	if fn == nil {
		fail("MakeFromBoxedFunction", CodeInvalidKernel, "kernel function cannot be nil")
	}
	return Handle{boxed: fn}
}

// MakeFromUnboxedFunctor creates a Handle from an already built functor.
//
// Example:
//
//	type AddOne struct{}
//
//	func (AddOne) Call(x int) int { return x + 1 }
//
//	h := MakeFromUnboxedFunctor(AddOne{})
func MakeFromUnboxedFunctor[K any](k K) Handle {
	const op = "MakeFromUnboxedFunctor"
	return makeFromInstance(op, k, true)
}

// MakeFromUnboxedFunctorFactory creates a Handle whose functor is built by
// creator on the first call, through either convention. K must be a concrete
// type: its Call method fixes the signature before any instance exists.
//
// Example:
//
//	h := MakeFromUnboxedFunctorFactory(func() *QConv { return NewQConv(w) })
func MakeFromUnboxedFunctorFactory[K any](creator func() K) Handle {
	const op = "MakeFromUnboxedFunctorFactory"
	if creator == nil {
		fail(op, CodeInvalidKernel, "kernel functor constructor cannot be nil")
	}

	spec := inspectFunctor(op, reflect.TypeFor[K]())
	cell := newLazyCell(func() OperatorKernel { return creator() }, spec.bind)
	return newHandle(cell, spec, true)
}

// MakeFromUnboxedOnlyFunctor creates a Handle from a functor without a boxed
// entry. The handle can only be called through CallUnboxedOnlyN or
// CallUnboxedN. Use it for native signatures that cannot travel through a
// stack.
func MakeFromUnboxedOnlyFunctor[K any](k K) Handle {
	const op = "MakeFromUnboxedOnlyFunctor"
	return makeFromInstance(op, k, false)
}

// MakeFromUnboxedFunction creates a Handle from a free function whose type F
// is known at compile time. Typed calls on the handle resolve to a direct call
// of fn.
//
// Example:
//
//	func relu(x float64) float64 { return math.Max(0, x) }
//
//	h := MakeFromUnboxedFunction(relu)
func MakeFromUnboxedFunction[F any](fn F) Handle {
	const op = "MakeFromUnboxedFunction"
	return makeFromFunction(op, reflect.TypeFor[F](), fn, true, func(fn any) OperatorKernel {
		return &functionKernel{fn: fn}
	})
}

// MakeFromUnboxedOnlyFunction is MakeFromUnboxedFunction without a boxed entry.
func MakeFromUnboxedOnlyFunction[F any](fn F) Handle {
	const op = "MakeFromUnboxedOnlyFunction"
	return makeFromFunction(op, reflect.TypeFor[F](), fn, false, func(fn any) OperatorKernel {
		return &functionKernel{fn: fn}
	})
}

// MakeFromUnboxedRuntimeFunction creates a Handle from a function value whose
// signature is only known from its dynamic type. Prefer
// MakeFromUnboxedFunction when the type is known statically.
func MakeFromUnboxedRuntimeFunction(fn any) Handle {
	const op = "MakeFromUnboxedRuntimeFunction"
	return makeFromRuntime(op, fn)
}

// MakeFromUnboxedLambda creates a Handle from a closure.
//
// Example:
//
//	scale := 2.0
//	h := MakeFromUnboxedLambda(func(x float64) float64 { return x * scale })
func MakeFromUnboxedLambda(fn any) Handle {
	const op = "MakeFromUnboxedLambda"
	return makeFromRuntime(op, fn)
}

func makeFromRuntime(op string, fn any) Handle {
	if isNil(fn) {
		fail(op, CodeInvalidKernel, "kernel function cannot be nil")
	}
	return makeFromFunction(op, reflect.TypeOf(fn), fn, true, func(fn any) OperatorKernel {
		return &runtimeFunctionKernel{fn: fn}
	})
}

func makeFromInstance(op string, k any, boxed bool) Handle {
	if isNil(k) {
		fail(op, CodeInvalidKernel, "kernel functor cannot be nil")
	}

	spec := inspectFunctor(op, reflect.TypeOf(k))
	return newHandle(newEagerCell(k, spec.bind), spec, boxed)
}

func makeFromFunction(op string, ft reflect.Type, fn any, boxed bool, wrap func(any) OperatorKernel) Handle {
	if isNil(fn) {
		fail(op, CodeInvalidKernel, "kernel function cannot be nil")
	}

	spec := inspectFunction(op, ft)
	return newHandle(newEagerCell(wrap(fn), spec.bind), spec, boxed)
}

func newHandle(cell *functorCell, spec kernelSpec, boxed bool) Handle {
	sig := spec.sig
	h := Handle{
		functor:     cell,
		unboxed:     spec.bind,
		sig:         &sig,
		fingerprint: sig.Fingerprint(),
	}
	if boxed {
		h.boxed = makeBoxedAdapter(spec)
	}
	return h
}
