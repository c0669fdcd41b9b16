package testutil

import "github.com/hupe1980/opkernel/ivalue"

// StackBuilder provides a fluent helper for constructing argument stacks in tests.
// Example:
//
//	s := NewStackBuilder().Int(3).Double(0.5).Bool(true).Build()
type StackBuilder struct {
	values []any
}

// NewStackBuilder creates an empty builder.
func NewStackBuilder() *StackBuilder { return &StackBuilder{} }

// Int pushes an integer (chainable).
func (b *StackBuilder) Int(v int64) *StackBuilder { b.values = append(b.values, v); return b }

// Double pushes a float (chainable).
func (b *StackBuilder) Double(v float64) *StackBuilder { b.values = append(b.values, v); return b }

// Bool pushes a bool (chainable).
func (b *StackBuilder) Bool(v bool) *StackBuilder { b.values = append(b.values, v); return b }

// Text pushes a string (chainable).
func (b *StackBuilder) Text(v string) *StackBuilder { b.values = append(b.values, v); return b }

// None pushes the empty value (chainable).
func (b *StackBuilder) None() *StackBuilder { b.values = append(b.values, nil); return b }

// Any pushes an arbitrary value (chainable).
func (b *StackBuilder) Any(v any) *StackBuilder { b.values = append(b.values, v); return b }

// Build returns a new stack holding the pushed values in order.
func (b *StackBuilder) Build() *ivalue.Stack { return ivalue.NewStack(b.values...) }
