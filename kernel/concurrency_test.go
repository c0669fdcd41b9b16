package kernel

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/opkernel/internal/testutil"
	"github.com/hupe1980/opkernel/ivalue"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestDeferredConstructorConcurrentFirstCalls(t *testing.T) {
	var runs atomic.Int64
	h := MakeFromUnboxedFunctorFactory(func() *testutil.AddOne {
		runs.Add(1)
		time.Sleep(5 * time.Millisecond)
		return &testutil.AddOne{}
	})

	const callers = 64
	results := make([]int, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			if i%2 == 0 {
				results[i] = CallUnboxed1[int](h, i)
				return nil
			}
			stack := ivalue.NewStack(i)
			h.CallBoxed(stack)
			results[i] = ivalue.MustTo[int](stack.Pop())
			return nil
		})
	}
	assert.NoError(t, g.Wait())

	assert.Equal(t, int64(1), runs.Load())
	for i, r := range results {
		assert.Equal(t, i+1, r)
	}

	inst := h.instance("test").(*testutil.AddOne)
	assert.Equal(t, int64(callers), inst.Calls())
}

func TestSharedHandleConcurrentCalls(t *testing.T) {
	acc := &testutil.Accumulator{}
	h := MakeFromUnboxedFunctor(acc)

	var g errgroup.Group
	g.SetLimit(8)
	for i := 1; i <= 100; i++ {
		g.Go(func() error {
			CallUnboxedOnly1[Void](h, int64(i))
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, int64(5050), acc.Total())
}
