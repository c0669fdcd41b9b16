package kernel

import (
	"reflect"

	"github.com/hupe1980/opkernel/signature"
)

// The CallUnboxedN and CallUnboxedOnlyN functions call a Handle with a native
// signature fixed by their type parameters: CallUnboxed2[R, A1, A2] calls the
// kernel as func(A1, A2) R. Use Void as R for kernels without a result.
//
// Both families compare the handle's fingerprint with the caller's signature
// and panic with SIGNATURE_MISMATCH when they differ. CallUnboxedOnlyN
// requires a native entry; CallUnboxedN falls back to the boxed entry,
// pushing the arguments in call order and unboxing exactly one result.

// checkSignature verifies the caller's function type F against h.
func checkSignature[F any](h Handle, op string) {
	if h.sig == nil {
		return
	}
	if signature.For[F]() != h.fingerprint {
		panic(mismatch[F](h, op))
	}
}

func mismatch[F any](h Handle, op string) *Error {
	want := "unknown"
	if h.sig != nil {
		want = h.sig.String()
	}
	return &Error{
		Op:      op,
		Code:    CodeSignatureMismatch,
		Message: "called kernel " + want + " with wrong argument types " + signature.FromFunc(reflect.TypeFor[F]()).String(),
	}
}

// CallUnboxedOnly0 calls h as func() R through its native entry.
func CallUnboxedOnly0[R any](h Handle) R {
	checkSignature[func() R](h, opCallUnboxedOnly)
	return unboxed0[R](h, opCallUnboxedOnly)
}

// CallUnboxed0 calls h as func() R, boxing the call if h has no native entry.
func CallUnboxed0[R any](h Handle) R {
	checkSignature[func() R](h, opCallUnboxed)
	if h.unboxed != nil {
		return unboxed0[R](h, opCallUnboxed)
	}
	return boxAndCall[R](h, opCallUnboxed)
}

func unboxed0[R any](h Handle, op string) R {
	switch fn := h.native(op).(type) {
	case func() R:
		return fn()
	case func():
		fn()
		var zero R
		return zero
	}
	panic(mismatch[func() R](h, op))
}

// CallUnboxedOnly1 calls h as func(A1) R through its native entry.
func CallUnboxedOnly1[R, A1 any](h Handle, a1 A1) R {
	checkSignature[func(A1) R](h, opCallUnboxedOnly)
	return unboxed1[R](h, opCallUnboxedOnly, a1)
}

// CallUnboxed1 calls h as func(A1) R, boxing the call if h has no native entry.
func CallUnboxed1[R, A1 any](h Handle, a1 A1) R {
	checkSignature[func(A1) R](h, opCallUnboxed)
	if h.unboxed != nil {
		return unboxed1[R](h, opCallUnboxed, a1)
	}
	return boxAndCall[R](h, opCallUnboxed, a1)
}

func unboxed1[R, A1 any](h Handle, op string, a1 A1) R {
	switch fn := h.native(op).(type) {
	case func(A1) R:
		return fn(a1)
	case func(A1):
		fn(a1)
		var zero R
		return zero
	}
	panic(mismatch[func(A1) R](h, op))
}

// CallUnboxedOnly2 calls h as func(A1, A2) R through its native entry.
func CallUnboxedOnly2[R, A1, A2 any](h Handle, a1 A1, a2 A2) R {
	checkSignature[func(A1, A2) R](h, opCallUnboxedOnly)
	return unboxed2[R](h, opCallUnboxedOnly, a1, a2)
}

// CallUnboxed2 calls h as func(A1, A2) R, boxing the call if h has no native entry.
func CallUnboxed2[R, A1, A2 any](h Handle, a1 A1, a2 A2) R {
	checkSignature[func(A1, A2) R](h, opCallUnboxed)
	if h.unboxed != nil {
		return unboxed2[R](h, opCallUnboxed, a1, a2)
	}
	return boxAndCall[R](h, opCallUnboxed, a1, a2)
}

func unboxed2[R, A1, A2 any](h Handle, op string, a1 A1, a2 A2) R {
	switch fn := h.native(op).(type) {
	case func(A1, A2) R:
		return fn(a1, a2)
	case func(A1, A2):
		fn(a1, a2)
		var zero R
		return zero
	}
	panic(mismatch[func(A1, A2) R](h, op))
}

// CallUnboxedOnly3 calls h as func(A1, A2, A3) R through its native entry.
func CallUnboxedOnly3[R, A1, A2, A3 any](h Handle, a1 A1, a2 A2, a3 A3) R {
	checkSignature[func(A1, A2, A3) R](h, opCallUnboxedOnly)
	return unboxed3[R](h, opCallUnboxedOnly, a1, a2, a3)
}

// CallUnboxed3 calls h as func(A1, A2, A3) R, boxing the call if h has no native entry.
func CallUnboxed3[R, A1, A2, A3 any](h Handle, a1 A1, a2 A2, a3 A3) R {
	checkSignature[func(A1, A2, A3) R](h, opCallUnboxed)
	if h.unboxed != nil {
		return unboxed3[R](h, opCallUnboxed, a1, a2, a3)
	}
	return boxAndCall[R](h, opCallUnboxed, a1, a2, a3)
}

func unboxed3[R, A1, A2, A3 any](h Handle, op string, a1 A1, a2 A2, a3 A3) R {
	switch fn := h.native(op).(type) {
	case func(A1, A2, A3) R:
		return fn(a1, a2, a3)
	case func(A1, A2, A3):
		fn(a1, a2, a3)
		var zero R
		return zero
	}
	panic(mismatch[func(A1, A2, A3) R](h, op))
}

// CallUnboxedOnly4 calls h as func(A1, A2, A3, A4) R through its native entry.
func CallUnboxedOnly4[R, A1, A2, A3, A4 any](h Handle, a1 A1, a2 A2, a3 A3, a4 A4) R {
	checkSignature[func(A1, A2, A3, A4) R](h, opCallUnboxedOnly)
	return unboxed4[R](h, opCallUnboxedOnly, a1, a2, a3, a4)
}

// CallUnboxed4 calls h as func(A1, A2, A3, A4) R, boxing the call if h has no native entry.
func CallUnboxed4[R, A1, A2, A3, A4 any](h Handle, a1 A1, a2 A2, a3 A3, a4 A4) R {
	checkSignature[func(A1, A2, A3, A4) R](h, opCallUnboxed)
	if h.unboxed != nil {
		return unboxed4[R](h, opCallUnboxed, a1, a2, a3, a4)
	}
	return boxAndCall[R](h, opCallUnboxed, a1, a2, a3, a4)
}

func unboxed4[R, A1, A2, A3, A4 any](h Handle, op string, a1 A1, a2 A2, a3 A3, a4 A4) R {
	switch fn := h.native(op).(type) {
	case func(A1, A2, A3, A4) R:
		return fn(a1, a2, a3, a4)
	case func(A1, A2, A3, A4):
		fn(a1, a2, a3, a4)
		var zero R
		return zero
	}
	panic(mismatch[func(A1, A2, A3, A4) R](h, op))
}
