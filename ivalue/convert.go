package ivalue

import (
	"fmt"
	"math"
	"reflect"
)

var valueType = reflect.TypeFor[Value]()

// ConversionError reports that a boxed value cannot be unboxed into a Go type.
type ConversionError struct {
	From Kind   // kind of the boxed value
	Got  string // Go type name of the payload
	To   string // requested Go type
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s value (%s) to %s", e.From, e.Got, e.To)
}

// To unboxes v into T.
func To[T any](v Value) (T, error) {
	if x, ok := v.payload.(T); ok && v.kind != KindNone {
		return x, nil
	}

	var zero T
	rv, err := ConvertTo(v, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, _ := rv.Interface().(T)
	return out, nil
}

// MustTo is like To but panics on failure.
func MustTo[T any](v Value) T {
	x, err := To[T](v)
	if err != nil {
		panic(err)
	}
	return x
}

// ConvertTo unboxes v into a reflect.Value of type t. Accepted conversions:
//   - t is Value itself
//   - payload assignable to t
//   - None into a nillable t (pointer, interface, slice, map, func, chan)
//   - numeric payload into a basic numeric t, except floating point into
//     integer and values that do not fit t
func ConvertTo(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}

	if v.kind == KindNone {
		if nillable(t.Kind()) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &ConversionError{From: v.kind, Got: "None", To: t.String()}
	}

	rv := reflect.ValueOf(v.payload)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}

	if isNumeric(rv.Kind()) && isBasic(t) && isNumeric(t.Kind()) && (!isFloat(rv.Kind()) || isFloat(t.Kind())) {
		if overflows(rv, t) {
			return reflect.Value{}, &ConversionError{From: v.kind, Got: fmt.Sprintf("%s %v", rv.Type(), rv), To: t.String()}
		}
		return rv.Convert(t), nil
	}

	return reflect.Value{}, &ConversionError{From: v.kind, Got: rv.Type().String(), To: t.String()}
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// overflows reports whether the numeric rv cannot be represented in t.
func overflows(rv reflect.Value, t reflect.Type) bool {
	target := reflect.Zero(t)
	switch {
	case isSigned(rv.Kind()):
		x := rv.Int()
		switch {
		case isSigned(t.Kind()):
			return target.OverflowInt(x)
		case isUnsigned(t.Kind()):
			return x < 0 || target.OverflowUint(uint64(x))
		}
	case isUnsigned(rv.Kind()):
		x := rv.Uint()
		switch {
		case isSigned(t.Kind()):
			return x > math.MaxInt64 || target.OverflowInt(int64(x))
		case isUnsigned(t.Kind()):
			return target.OverflowUint(x)
		}
	case isFloat(rv.Kind()) && isFloat(t.Kind()):
		return target.OverflowFloat(rv.Float())
	}
	return false
}
