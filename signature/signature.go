// Package signature describes native kernel signatures and computes their
// fingerprints.
//
// A Fingerprint is a non-cryptographic 64-bit hash of an ordered type list
// [Return, Params...]. It is deterministic within one process and is used only
// to detect callers that invoke a type-erased kernel with the wrong native
// signature. Two distinct signatures may collide, and the value differs
// between processes, so fingerprints must never be persisted or compared
// across process boundaries.
package signature

import (
	"fmt"
	"hash/maphash"
	"reflect"
	"strings"
	"sync"
)

// Void is the return type of kernels that produce no result. Callers request
// a void call by using Void as the Return type parameter.
type Void struct{}

// VoidType is the reflect.Type of Void.
var VoidType = reflect.TypeFor[Void]()

// RefKind is the reference category of a type descriptor.
type RefKind uint8

const (
	// NoRef is a plain value.
	NoRef RefKind = iota
	// LValueRef marks a reference to an existing object (a Go pointer parameter).
	LValueRef
	// RValueRef marks a reference to a temporary whose ownership moves to the callee.
	RValueRef
)

// Type describes one element of a signature: a type identity plus qualifiers.
type Type struct {
	Type     reflect.Type
	Ref      RefKind
	Const    bool
	Volatile bool
}

// Of describes t. A pointer type *T is described as an lvalue reference to T.
// A nil t describes Void.
func Of(t reflect.Type) Type {
	if t == nil {
		return Type{Type: VoidType}
	}
	if t.Kind() == reflect.Pointer {
		return Type{Type: t.Elem(), Ref: LValueRef}
	}
	return Type{Type: t}
}

// TypeOf describes T.
func TypeOf[T any]() Type {
	return Of(reflect.TypeFor[T]())
}

// AsConst returns a copy of t with the const qualifier set.
func (t Type) AsConst() Type { t.Const = true; return t }

// AsVolatile returns a copy of t with the volatile qualifier set.
func (t Type) AsVolatile() Type { t.Volatile = true; return t }

// AsLValueRef returns a copy of t marked as an lvalue reference.
func (t Type) AsLValueRef() Type { t.Ref = LValueRef; return t }

// AsRValueRef returns a copy of t marked as an rvalue reference.
func (t Type) AsRValueRef() Type { t.Ref = RValueRef; return t }

// String renders the descriptor in a C-like notation, e.g. "const Foo&".
func (t Type) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	if t.Volatile {
		b.WriteString("volatile ")
	}
	if t.Type == VoidType || t.Type == nil {
		b.WriteString("void")
	} else {
		b.WriteString(t.Type.String())
	}
	switch t.Ref {
	case LValueRef:
		b.WriteString("&")
	case RValueRef:
		b.WriteString("&&")
	}
	return b.String()
}

// Signature is an ordered native signature.
type Signature struct {
	Return Type
	Params []Type
}

// New builds a signature from explicit descriptors.
func New(ret Type, params ...Type) Signature {
	return Signature{Return: ret, Params: params}
}

// FromFunc derives the signature of the Go function type ft. Functions with
// no result, or with a single Void result, have a void return.
//
// FromFunc panics if ft is not a function type or has more than one result.
func FromFunc(ft reflect.Type) Signature {
	return fromFunc(ft, 0)
}

// FromMethod derives the signature of a method expression type, skipping the
// receiver parameter.
func FromMethod(m reflect.Method) Signature {
	return fromFunc(m.Type, 1)
}

func fromFunc(ft reflect.Type, skip int) Signature {
	if ft.Kind() != reflect.Func {
		panic(fmt.Sprintf("signature: %s is not a function type", ft))
	}
	if ft.NumOut() > 1 {
		panic(fmt.Sprintf("signature: %s has more than one result", ft))
	}

	sig := Signature{Return: Of(nil)}
	if ft.NumOut() == 1 {
		sig.Return = Of(ft.Out(0))
	}
	for i := skip; i < ft.NumIn(); i++ {
		sig.Params = append(sig.Params, Of(ft.In(i)))
	}
	return sig
}

// String renders the signature, e.g. "(int64, const Foo&) -> void".
func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + s.Return.String()
}

// Fingerprint is the 64-bit hash of a signature.
type Fingerprint uint64

// String renders the fingerprint as hex.
func (f Fingerprint) String() string { return fmt.Sprintf("%#016x", uint64(f)) }

const (
	weightLValueRef = 1000
	weightRValueRef = 5000
	weightConst     = 10000
	weightVolatile  = 15000
	weightPosition  = 1000000
)

var seed = maphash.MakeSeed()

func hashType(t Type) uint64 {
	h := maphash.Comparable(seed, t.Type)
	if t.Ref == LValueRef {
		h += weightLValueRef
	}
	if t.Ref == RValueRef {
		h += weightRValueRef
	}
	if t.Const {
		h += weightConst
	}
	if t.Volatile {
		h += weightVolatile
	}
	return h
}

// Fingerprint combines [Return, Params...]: the element at 1-based position i
// contributes weightPosition * i * hashType(element).
func (s Signature) Fingerprint() Fingerprint {
	acc := weightPosition * 1 * hashType(s.Return)
	for i, p := range s.Params {
		acc += weightPosition * uint64(i+2) * hashType(p)
	}
	return Fingerprint(acc)
}

var cache sync.Map // reflect.Type -> Fingerprint

// For returns the fingerprint of the function type F, e.g.
// For[func(int, float64) bool](). Results are memoized per type.
func For[F any]() Fingerprint {
	return ForType(reflect.TypeFor[F]())
}

// ForType is the non-generic form of For.
func ForType(ft reflect.Type) Fingerprint {
	if fp, ok := cache.Load(ft); ok {
		return fp.(Fingerprint)
	}
	fp := FromFunc(ft).Fingerprint()
	cache.Store(ft, fp)
	return fp
}
