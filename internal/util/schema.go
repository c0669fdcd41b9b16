package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hupe1980/opkernel/ivalue"
)

// ValidationError represents an argument that does not fit the native
// parameter it is bound to.
type ValidationError struct {
	Index   int          `json:"index"`   // Zero-based argument position
	Value   ivalue.Value `json:"value"`   // Value that was provided
	Message string       `json:"message"` // Human-readable error message
	Err     error        `json:"-"`       // Underlying conversion error, if any
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for argument %d: %s", e.Index, e.Message)
}

// Unwrap returns the underlying conversion error.
func (e *ValidationError) Unwrap() error { return e.Err }

// KernelShape is the validated native shape of a kernel function.
type KernelShape struct {
	Func    reflect.Type   // function type (receiver stripped for methods)
	Params  []reflect.Type // parameter types in call order
	HasOut  bool           // true when the function returns a value
	OutType reflect.Type   // result type, nil for void
}

// InspectFunc validates that ft can back a kernel: a non-variadic function
// with at most one result. skip drops leading parameters (method receivers).
func InspectFunc(ft reflect.Type, skip int) (KernelShape, error) {
	if ft == nil || ft.Kind() != reflect.Func {
		return KernelShape{}, fmt.Errorf("%v is not a function type", ft)
	}
	if ft.IsVariadic() {
		return KernelShape{}, fmt.Errorf("variadic function %s is not supported", ft)
	}
	if ft.NumOut() > 1 {
		return KernelShape{}, fmt.Errorf("function %s has %d results, at most one is supported", ft, ft.NumOut())
	}

	shape := KernelShape{Func: ft}
	for i := skip; i < ft.NumIn(); i++ {
		shape.Params = append(shape.Params, ft.In(i))
	}
	if ft.NumOut() == 1 {
		shape.HasOut = true
		shape.OutType = ft.Out(0)
	}
	return shape, nil
}

// Describe renders a shape as "(int, float64) -> bool".
func (s KernelShape) Describe() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	out := "void"
	if s.HasOut {
		out = s.OutType.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + out
}

// ValidateArguments converts boxed args into the native parameter types.
// The first argument that cannot be converted is reported as a
// *ValidationError.
func ValidateArguments(args []ivalue.Value, params []reflect.Type) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, &ValidationError{
			Index:   len(args),
			Message: fmt.Sprintf("expected %d arguments, got %d", len(params), len(args)),
		}
	}

	out := make([]reflect.Value, len(args))
	for i, arg := range args {
		rv, err := ivalue.ConvertTo(arg, params[i])
		if err != nil {
			return nil, &ValidationError{
				Index:   i,
				Value:   arg,
				Message: fmt.Sprintf("expected type %s, got %s", params[i], arg.TypeName()),
				Err:     err,
			}
		}
		out[i] = rv
	}
	return out, nil
}
