package ivalue

import (
	"fmt"
	"strings"
)

// Stack is the argument/return channel of the boxed calling convention.
// Arguments are pushed in call order; a kernel consumes them from the top and
// pushes its results in their place.
type Stack []Value

// NewStack returns a stack holding vs (boxed) in order.
func NewStack(vs ...any) *Stack {
	s := make(Stack, 0, len(vs))
	s.PushAny(vs...)
	return &s
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int { return len(*s) }

// At returns the value at position i counted from the bottom.
func (s *Stack) At(i int) Value { return (*s)[i] }

// Push appends values to the top of the stack.
func (s *Stack) Push(vs ...Value) { *s = append(*s, vs...) }

// PushAny boxes and appends values to the top of the stack.
func (s *Stack) PushAny(vs ...any) {
	for _, v := range vs {
		*s = append(*s, New(v))
	}
}

// Pop removes and returns the top value. It panics on an empty stack.
func (s *Stack) Pop() Value {
	n := len(*s)
	if n == 0 {
		panic("ivalue: pop from empty stack")
	}
	v := (*s)[n-1]
	(*s)[n-1] = None
	*s = (*s)[:n-1]
	return v
}

// Peek returns the i-th of the top n values.
func (s *Stack) Peek(i, n int) Value {
	s.check(n)
	return (*s)[len(*s)-n+i]
}

// Last returns the top n values in push order. The slice aliases the stack.
func (s *Stack) Last(n int) []Value {
	s.check(n)
	return (*s)[len(*s)-n:]
}

// Drop removes the top n values.
func (s *Stack) Drop(n int) {
	s.check(n)
	for i := len(*s) - n; i < len(*s); i++ {
		(*s)[i] = None
	}
	*s = (*s)[:len(*s)-n]
}

// String renders the stack bottom to top, e.g. "[5 true]".
func (s *Stack) String() string {
	parts := make([]string, len(*s))
	for i, v := range *s {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (s *Stack) check(n int) {
	if n < 0 || n > len(*s) {
		panic(fmt.Sprintf("ivalue: need %d values, stack holds %d", n, len(*s)))
	}
}
