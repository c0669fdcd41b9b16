package testutil

import "sync/atomic"

// AddOne is a stateful functor computing x+1 that counts its calls.
type AddOne struct {
	calls atomic.Int64
}

// Call implements the functor contract.
func (k *AddOne) Call(x int) int {
	k.calls.Add(1)
	return x + 1
}

// Calls returns how many times Call ran.
func (k *AddOne) Calls() int64 { return k.calls.Load() }

// Accumulator keeps a running sum; Call adds x and returns nothing.
type Accumulator struct {
	total atomic.Int64
}

// Call implements the functor contract.
func (k *Accumulator) Call(x int64) { k.total.Add(x) }

// Total returns the running sum.
func (k *Accumulator) Total() int64 { return k.total.Load() }

// Scale multiplies by a fixed factor.
type Scale struct {
	Factor float64
}

// Call implements the functor contract.
func (k Scale) Call(x float64, bias float64) float64 { return x*k.Factor + bias }

// Factory counts how many times its constructor ran.
type Factory struct {
	runs atomic.Int64
}

// NewAddOne is a deferred constructor for AddOne.
func (f *Factory) NewAddOne() *AddOne {
	f.runs.Add(1)
	return &AddOne{}
}

// Runs returns how many times the constructor ran.
func (f *Factory) Runs() int64 { return f.runs.Load() }
