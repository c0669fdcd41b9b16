// Package ivalue provides the dynamically typed value (Value) and the argument
// stack (Stack) used by the boxed calling convention.
//
// A Value is an opaque box around any Go value. Unnamed integer and floating
// point types are normalized on boxing (int64 and float64) so that kernels
// registered with different native widths interoperate through the stack.
// Conversion back into a native Go type is performed by To / ConvertTo.
package ivalue

import (
	"fmt"
	"math"
	"reflect"
)

// Kind classifies the payload of a Value.
type Kind int

const (
	// KindNone is the empty value (boxed nil).
	KindNone Kind = iota
	// KindBool holds a bool.
	KindBool
	// KindInt holds an int64 (a uint64 when the value exceeds math.MaxInt64).
	KindInt
	// KindDouble holds a float64.
	KindDouble
	// KindString holds a string.
	KindString
	// KindList holds a []Value.
	KindList
	// KindObject holds any other Go value (tensors, named types, structs).
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a boxed, dynamically typed value.
type Value struct {
	kind    Kind
	payload any
}

// None is the boxed nil value.
var None = Value{}

// New boxes v. Boxing a Value returns it unchanged.
func New(v any) Value {
	switch x := v.(type) {
	case nil:
		return None
	case Value:
		return x
	case bool:
		return Value{kind: KindBool, payload: x}
	case string:
		return Value{kind: KindString, payload: x}
	case int64:
		return Value{kind: KindInt, payload: x}
	case float64:
		return Value{kind: KindDouble, payload: x}
	case []Value:
		return Value{kind: KindList, payload: x}
	}

	rv := reflect.ValueOf(v)
	if isBasic(rv.Type()) {
		switch {
		case isSigned(rv.Kind()):
			return Value{kind: KindInt, payload: rv.Int()}
		case isUnsigned(rv.Kind()):
			if u := rv.Uint(); u > math.MaxInt64 {
				return Value{kind: KindInt, payload: u}
			}
			return Value{kind: KindInt, payload: int64(rv.Uint())}
		case isFloat(rv.Kind()):
			return Value{kind: KindDouble, payload: rv.Float()}
		}
	}

	return Value{kind: KindObject, payload: v}
}

// List boxes vs into a list value.
func List(vs ...any) Value {
	items := make([]Value, len(vs))
	for i, v := range vs {
		items[i] = New(v)
	}
	return Value{kind: KindList, payload: items}
}

// Kind returns the payload classification.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the boxed nil value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Any returns the raw payload.
func (v Value) Any() any { return v.payload }

// TypeName returns the Go type name of the payload, or "None".
func (v Value) TypeName() string {
	if v.kind == KindNone {
		return "None"
	}
	return fmt.Sprintf("%T", v.payload)
}

// Equal reports whether v and o hold the same kind and deeply equal payloads.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindList {
		a, b := v.payload.([]Value), o.payload.([]Value)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(v.payload, o.payload)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindNone {
		return "None"
	}
	return fmt.Sprintf("%v", v.payload)
}

func isBasic(t reflect.Type) bool { return t.PkgPath() == "" && t.Name() != "" }

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}
