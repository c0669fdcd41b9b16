// Package opkernel provides a high-level façade over the kernel registry.
// Most applications interact with this package by:
//  1. Creating an OpKernel via New() or NewFromConfigFile()
//  2. Registering kernel handles built with the kernel package
//  3. Calling them boxed (CallBoxed) or typed (Call)
//
// The façade delegates to dispatch.Registry while keeping setup and usage
// concise. Operator names are given in their "name.overload" string form.
package opkernel

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/opkernel/dispatch"
	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/kernel"
	"github.com/hupe1980/opkernel/logging"
)

// Options configures the OpKernel instance.
type Options struct {
	// Registry configuration (override policy, warm-up)
	Config dispatch.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// OpKernel is the high-level façade around a dispatch.Registry.
type OpKernel struct {
	opts     Options
	registry *dispatch.Registry
}

// New creates a new OpKernel instance with optional overrides.
func New(optFns ...func(o *Options)) *OpKernel {
	opts := Options{
		Config: dispatch.DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := dispatch.New(func(o *dispatch.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
	})

	return &OpKernel{opts: opts, registry: r}
}

// NewFromConfigFile loads the configuration from path (see dispatch.LoadConfig)
// and builds a logger from its log settings unless an option sets one.
func NewFromConfigFile(path string, optFns ...func(o *Options)) (*OpKernel, error) {
	cfg, err := dispatch.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(*cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	return New(append([]func(o *Options){func(o *Options) {
		o.Config = *cfg
		o.Logger = logger
	}}, optFns...)...), nil
}

// NewLogger builds the structured logger described by cfg.LogLevel and
// cfg.LogFormat, writing to w. The json and text formats yield a
// *logging.KernelLogger, zap a logging.ZapAdapter.
func NewLogger(cfg dispatch.Config, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	if cfg.LogFormat == "zap" {
		return logging.NewZapLogger(level, w), nil
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    w,
		Component: "opkernel",
	}), nil
}

// Registry exposes the underlying registry.
func (m *OpKernel) Registry() *dispatch.Registry { return m.registry }

// Config returns the active configuration.
func (m *OpKernel) Config() dispatch.Config { return m.opts.Config }

// Register adds h as the kernel of op ("name" or "name.overload") for key.
func (m *OpKernel) Register(op string, key dispatch.DispatchKey, h kernel.Handle) (*dispatch.Registration, error) {
	return m.registry.Register(dispatch.ParseOperatorName(op), key, h)
}

// CallBoxed calls the kernel of op for key with the arguments on stack.
func (m *OpKernel) CallBoxed(op string, key dispatch.DispatchKey, stack *ivalue.Stack) error {
	return m.registry.CallBoxed(dispatch.ParseOperatorName(op), key, stack)
}

// Warmup constructs all deferred kernels.
func (m *OpKernel) Warmup(ctx context.Context) error { return m.registry.Warmup(ctx) }

// Operators lists the registered operators in "name.overload" form.
func (m *OpKernel) Operators() []string {
	names := m.registry.Operators()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}

// Call looks up the kernel of op for key and returns what call computes from
// it. Kernel failures are returned as errors.
//
// Example:
//
//	y, err := opkernel.Call(m, "test::relu", dispatch.CPU, func(h kernel.Handle) float64 {
//	    return kernel.CallUnboxed1[float64](h, x)
//	})
func Call[R any](m *OpKernel, op string, key dispatch.DispatchKey, call func(h kernel.Handle) R) (R, error) {
	var out R
	err := m.registry.Invoke(dispatch.ParseOperatorName(op), key, func(h kernel.Handle) {
		out = call(h)
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}
