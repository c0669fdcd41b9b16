package ivalue

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scalarType int8

type fakeTensor struct {
	shape []int
}

func TestNew_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		want any
	}{
		{"nil", nil, KindNone, nil},
		{"bool", true, KindBool, true},
		{"int", 5, KindInt, int64(5)},
		{"int32", int32(-3), KindInt, int64(-3)},
		{"uint8", uint8(7), KindInt, int64(7)},
		{"float32", float32(1.5), KindDouble, 1.5},
		{"string", "relu", KindString, "relu"},
		{"named int stays object", scalarType(2), KindObject, scalarType(2)},
		{"struct", fakeTensor{shape: []int{2}}, KindObject, fakeTensor{shape: []int{2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.Any())
		})
	}
}

func TestNew_ValueIsIdentity(t *testing.T) {
	v := New(3)
	assert.True(t, New(v).Equal(v))
}

func TestTo(t *testing.T) {
	n, err := To[int](New(int64(41)))
	require.NoError(t, err)
	assert.Equal(t, 41, n)

	f, err := To[float32](New(2))
	require.NoError(t, err)
	assert.Equal(t, float32(2), f)

	_, err = To[int](New(2.5))
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, KindDouble, convErr.From)

	_, err = To[string](New(1))
	assert.Error(t, err)

	p, err := To[*fakeTensor](None)
	require.NoError(t, err)
	assert.Nil(t, p)

	a, err := To[any](None)
	require.NoError(t, err)
	assert.Nil(t, a)

	_, err = To[int](None)
	assert.Error(t, err)

	raw, err := To[Value](New("x"))
	require.NoError(t, err)
	assert.Equal(t, KindString, raw.Kind())

	st, err := To[scalarType](New(scalarType(4)))
	require.NoError(t, err)
	assert.Equal(t, scalarType(4), st)
}

func TestTo_RejectsValuesThatDoNotFit(t *testing.T) {
	tests := []struct {
		name string
		conv func() error
	}{
		{"int8 overflow", func() error { _, err := To[int8](New(300)); return err }},
		{"int8 underflow", func() error { _, err := To[int8](New(-129)); return err }},
		{"negative to uint32", func() error { _, err := To[uint32](New(-1)); return err }},
		{"uint16 overflow", func() error { _, err := To[uint16](New(70000)); return err }},
		{"large uint64 to int64", func() error { _, err := To[int64](New(uint64(math.MaxUint64))); return err }},
		{"float32 overflow", func() error { _, err := To[float32](New(1e300)); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var convErr *ConversionError
			assert.ErrorAs(t, tt.conv(), &convErr)
		})
	}

	i8, err := To[int8](New(-128))
	require.NoError(t, err)
	assert.Equal(t, int8(-128), i8)

	u32, err := To[uint32](New(4294967295))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), u32)

	u64, err := To[uint64](New(uint64(math.MaxUint64)))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u64)
	assert.Equal(t, KindInt, New(uint64(math.MaxUint64)).Kind())
}

func TestMustTo_Panics(t *testing.T) {
	assert.Panics(t, func() { MustTo[bool](New(1)) })
}

func TestList(t *testing.T) {
	l := List(1, "a")
	assert.Equal(t, KindList, l.Kind())
	assert.True(t, l.Equal(List(int64(1), "a")))
	assert.False(t, l.Equal(List(1)))
}

func TestStack_Operations(t *testing.T) {
	s := NewStack(1, 2, 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(2), s.Peek(0, 2).Any())
	assert.Equal(t, int64(3), s.Pop().Any())

	if diff := cmp.Diff([]Value{New(1), New(2)}, s.Last(2)); diff != "" {
		t.Errorf("Last() mismatch (-want +got):\n%s", diff)
	}

	s.Drop(1)
	s.Push(New(true))
	if diff := cmp.Diff(NewStack(1, true), s); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "[1 true]", s.String())
	assert.Equal(t, KindBool, s.At(1).Kind())
}

func TestStack_Underflow(t *testing.T) {
	s := NewStack()
	assert.Panics(t, func() { s.Pop() })
	assert.Panics(t, func() { s.Drop(1) })
	assert.Panics(t, func() { s.Last(2) })
}
