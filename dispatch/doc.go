// Package dispatch is an operator registry built on kernel handles.
//
// A kernel is registered for an operator name and a dispatch key; Lookup
// resolves the pair and falls back to the CatchAll kernel of the operator.
// CallBoxed and Invoke turn the panics a handle raises on contract violations
// into returned errors, so callers that route untrusted requests keep running.
//
// Deferred kernels are constructed on their first call. Warmup constructs all
// of them up front, which keeps construction cost off the first request:
//
//	reg := dispatch.New()
//	_, err := reg.Register(dispatch.OperatorName{Name: "quantized::conv"}, dispatch.QuantizedCPU,
//	    kernel.MakeFromUnboxedFunctorFactory(newQConv))
//	...
//	if err := reg.Warmup(ctx); err != nil {
//	    return err
//	}
package dispatch
