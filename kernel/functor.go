package kernel

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/opkernel/internal/util"
	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/signature"
)

// functorMethod is the method a functor type must declare.
const functorMethod = "Call"

var boxedShape = reflect.TypeFor[func(OperatorKernel, *ivalue.Stack)]()

// functorCell owns the kernel instance of a Handle. A deferred constructor
// runs at most once; the result is published through state.
type functorCell struct {
	mu      sync.Mutex
	state   atomic.Pointer[functorState]
	creator func() OperatorKernel
	bind    unboxedBinder
}

// functorState is immutable once published.
type functorState struct {
	instance OperatorKernel
	native   any
}

func newEagerCell(k OperatorKernel, bind unboxedBinder) *functorCell {
	c := &functorCell{bind: bind}
	c.state.Store(c.bound(k))
	return c
}

func newLazyCell(creator func() OperatorKernel, bind unboxedBinder) *functorCell {
	return &functorCell{creator: creator, bind: bind}
}

func (c *functorCell) get(op string) *functorState {
	if s := c.state.Load(); s != nil {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.state.Load(); s != nil {
		return s
	}

	k := c.creator()
	if isNil(k) {
		fail(op, CodeInvalidKernel, "deferred kernel constructor returned nil")
	}
	s := c.bound(k)
	c.state.Store(s)
	c.creator = nil
	return s
}

func (c *functorCell) bound(k OperatorKernel) *functorState {
	s := &functorState{instance: k}
	if c.bind != nil {
		s.native = c.bind(k)
	}
	return s
}

// functionKernel wraps a free function whose type is known statically.
type functionKernel struct {
	fn any
}

// runtimeFunctionKernel wraps a function value or closure whose type is only
// known at run time.
type runtimeFunctionKernel struct {
	fn any
}

type wrappedFunction interface {
	function() any
}

func (k *functionKernel) function() any        { return k.fn }
func (k *runtimeFunctionKernel) function() any { return k.fn }

// kernelSpec is everything a constructor derives from a kernel's type.
type kernelSpec struct {
	shape    util.KernelShape
	sig      signature.Signature
	bind     unboxedBinder
	callable func(OperatorKernel) reflect.Value
}

// returnsValue reports whether a boxed call pushes a result.
func (s kernelSpec) returnsValue() bool {
	return s.shape.HasOut && s.shape.OutType != signature.VoidType
}

func inspectFunctor(op string, kt reflect.Type) kernelSpec {
	if kt.Kind() == reflect.Interface {
		fail(op, CodeInvalidKernel, "functor type %s must be a concrete type", kt)
	}

	m, ok := kt.MethodByName(functorMethod)
	if !ok {
		fail(op, CodeInvalidKernel, "functor type %s has no %s method", kt, functorMethod)
	}

	shape, err := util.InspectFunc(m.Type, 1)
	if err != nil {
		failWith(op, CodeInvalidKernel, err, "functor %s: %v", kt, err)
	}

	idx := m.Index
	return kernelSpec{
		shape: shape,
		sig:   signature.FromMethod(m),
		bind: func(k OperatorKernel) any {
			return reflect.ValueOf(k).Method(idx).Interface()
		},
		callable: func(k OperatorKernel) reflect.Value {
			return reflect.ValueOf(k).Method(idx)
		},
	}
}

func inspectFunction(op string, ft reflect.Type) kernelSpec {
	if ft.Kind() != reflect.Func {
		fail(op, CodeInvalidKernel, "%s is not a function type", ft)
	}
	literal := unnamedFunc(ft)
	if literal == boxedShape || ft == reflect.TypeFor[BoxedKernelFunction]() {
		fail(op, CodeInvalidKernel, "tried to register a boxed function with %s, use MakeFromBoxedFunction instead", op)
	}

	shape, err := util.InspectFunc(ft, 0)
	if err != nil {
		failWith(op, CodeInvalidKernel, err, "%v", err)
	}

	// Typed calls switch on unnamed func types, so a named type such as
	// `type unary func(int) int` is bound as its literal func type.
	bind := func(k OperatorKernel) any {
		return k.(wrappedFunction).function()
	}
	if literal != ft {
		bind = func(k OperatorKernel) any {
			return reflect.ValueOf(k.(wrappedFunction).function()).Convert(literal).Interface()
		}
	}

	return kernelSpec{
		shape: shape,
		sig:   signature.FromFunc(ft),
		bind:  bind,
		callable: func(k OperatorKernel) reflect.Value {
			return reflect.ValueOf(k.(wrappedFunction).function())
		},
	}
}

// unnamedFunc returns the func type literal with the same signature as ft.
func unnamedFunc(ft reflect.Type) reflect.Type {
	if ft.Name() == "" {
		return ft
	}
	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
