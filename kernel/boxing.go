package kernel

import (
	"reflect"

	"github.com/hupe1980/opkernel/internal/util"
	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/signature"
)

// makeBoxedAdapter builds the boxed entry of a native kernel: it takes the
// kernel's arguments from the top of the stack, converts them to the native
// parameter types, calls the kernel and pushes its result.
func makeBoxedAdapter(spec kernelSpec) BoxedKernelFunction {
	params := spec.shape.Params
	n := len(params)
	pushes := spec.returnsValue()

	return func(k OperatorKernel, stack *ivalue.Stack) {
		if stack.Len() < n {
			fail(opCallBoxed, CodeBoxedContractViolation,
				"kernel %s expects %d arguments, stack holds %d", spec.shape.Describe(), n, stack.Len())
		}

		args, err := util.ValidateArguments(stack.Last(n), params)
		if err != nil {
			failWith(opCallBoxed, CodeBoxedContractViolation, err, "kernel %s: %v", spec.shape.Describe(), err)
		}
		stack.Drop(n)

		out := spec.callable(k).Call(args)
		if pushes {
			stack.Push(ivalue.New(out[0].Interface()))
		}
	}
}

// boxAndCall calls the boxed entry of h with args pushed in call order and
// unboxes the single result (none for Void).
func boxAndCall[R any](h Handle, op string, args ...any) R {
	stack := make(ivalue.Stack, 0, len(args))
	stack.PushAny(args...)

	h.callBoxed(op, &stack)

	var zero R
	if reflect.TypeFor[R]() == signature.VoidType {
		if stack.Len() != 0 {
			fail(op, CodeBoxedContractViolation,
				"a boxed kernel returned %d values but the caller expected void", stack.Len())
		}
		return zero
	}

	if stack.Len() != 1 {
		fail(op, CodeBoxedContractViolation,
			"a boxed kernel should push exactly one return value, stack holds %d", stack.Len())
	}

	r, err := ivalue.To[R](stack[0])
	if err != nil {
		failWith(op, CodeBoxedContractViolation, err, "cannot unbox kernel result: %v", err)
	}
	return r
}
