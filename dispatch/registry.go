package dispatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/kernel"
	"github.com/hupe1980/opkernel/logging"
)

// DispatchKey selects the kernel of an operator for a backend.
type DispatchKey string

const (
	CPU          DispatchKey = "CPU"
	CUDA         DispatchKey = "CUDA"
	QuantizedCPU DispatchKey = "QuantizedCPU"
	// CatchAll serves every key that has no kernel of its own.
	CatchAll DispatchKey = "CatchAll"
)

// OperatorName identifies an operator overload, e.g. {"aten::add", "Tensor"}.
type OperatorName struct {
	Name     string
	Overload string
}

// ParseOperatorName splits "name.overload"; the overload is optional.
func ParseOperatorName(s string) OperatorName {
	name, overload, _ := strings.Cut(s, ".")
	return OperatorName{Name: name, Overload: overload}
}

func (n OperatorName) String() string {
	if n.Overload == "" {
		return n.Name
	}
	return n.Name + "." + n.Overload
}

func compareOperatorNames(a, b OperatorName) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Overload, b.Overload)
}

// Options configures a Registry using the functional options pattern.
//
// Example:
//
//	reg := dispatch.New(func(o *dispatch.Options) {
//	    o.Config.AllowOverride = true
//	    o.Logger = logger
//	})
type Options struct {
	// Config contains the registry behavior. Defaults to DefaultConfig.
	Config Config

	// Logger defaults to NoOpLogger. A *logging.KernelLogger additionally
	// gets operator and dispatch key context on every entry.
	Logger logging.Logger
}

// Registration is the receipt of a successful Register. Release removes the
// kernel again.
type Registration struct {
	ID       string
	Operator OperatorName
	Key      DispatchKey
	Handle   kernel.Handle

	registry *Registry
	once     sync.Once
}

// Release deregisters the kernel. It is safe to call more than once and does
// nothing if a later registration has overridden this one.
func (r *Registration) Release() {
	r.once.Do(func() { r.registry.release(r) })
}

// Registry maps (operator, dispatch key) pairs to kernel handles.
//
// All methods are safe for concurrent use. Kernels are invoked outside the
// registry lock, so a kernel may itself call into the registry.
type Registry struct {
	config Config
	logger logging.Logger

	mu      sync.RWMutex
	kernels map[OperatorName]map[DispatchKey]*Registration
}

// New creates an empty Registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Registry{
		config:  opts.Config,
		logger:  opts.Logger,
		kernels: make(map[OperatorName]map[DispatchKey]*Registration),
	}
}

// Register adds h as the kernel of name for key. An empty key registers a
// CatchAll kernel.
//
// With WarmupOnRegister a deferred kernel is constructed before it becomes
// visible; a constructor failure is returned and nothing is registered.
func (r *Registry) Register(name OperatorName, key DispatchKey, h kernel.Handle) (*Registration, error) {
	if key == "" {
		key = CatchAll
	}
	if name.Name == "" {
		return nil, fmt.Errorf("register kernel with empty operator name: %w", ErrInvalidHandle)
	}
	if !h.IsValid() {
		return nil, fmt.Errorf("register %s for %s: %w", name, key, ErrInvalidHandle)
	}

	if r.config.WarmupOnRegister && !h.Materialized() {
		// A duplicate is refused before its constructor gets to run.
		if err := r.checkDuplicate(name, key); err != nil {
			return nil, err
		}
		if err := r.materialize(name, key, h); err != nil {
			return nil, fmt.Errorf("register %s for %s: %w", name, key, err)
		}
	}

	reg := &Registration{
		ID:       uuid.NewString(),
		Operator: name,
		Key:      key,
		Handle:   h,
		registry: r,
	}

	r.mu.Lock()
	byKey, ok := r.kernels[name]
	if !ok {
		byKey = make(map[DispatchKey]*Registration)
		r.kernels[name] = byKey
	}
	prev, exists := byKey[key]
	if exists && !r.config.AllowOverride {
		r.mu.Unlock()
		return nil, fmt.Errorf("register %s for %s (existing registration %s): %w", name, key, prev.ID, ErrDuplicateKernel)
	}
	byKey[key] = reg
	r.mu.Unlock()

	if exists {
		r.logger.Warn("dispatch.register.override", "operator", name.String(), "dispatch_key", string(key), "replaced", prev.ID, "registration_id", reg.ID)
	}
	if kl := r.eventLogger(name, key); kl != nil {
		kl.LogRegistration(reg.ID, h, false)
	} else {
		r.logger.Info("dispatch.register", "operator", name.String(), "dispatch_key", string(key), "registration_id", reg.ID, "handle", h.String())
	}
	return reg, nil
}

func (r *Registry) checkDuplicate(name OperatorName, key DispatchKey) error {
	if r.config.AllowOverride {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if prev, ok := r.kernels[name][key]; ok {
		return fmt.Errorf("register %s for %s (existing registration %s): %w", name, key, prev.ID, ErrDuplicateKernel)
	}
	return nil
}

func (r *Registry) release(reg *Registration) {
	r.mu.Lock()
	byKey := r.kernels[reg.Operator]
	current, ok := byKey[reg.Key]
	removed := ok && current == reg
	if removed {
		delete(byKey, reg.Key)
		if len(byKey) == 0 {
			delete(r.kernels, reg.Operator)
		}
	}
	r.mu.Unlock()

	if !removed {
		return
	}
	if kl := r.eventLogger(reg.Operator, reg.Key); kl != nil {
		kl.LogRegistration(reg.ID, reg.Handle, true)
	} else {
		r.logger.Info("dispatch.release", "operator", reg.Operator.String(), "dispatch_key", string(reg.Key), "registration_id", reg.ID)
	}
}

// Lookup returns the kernel of name for key, falling back to the CatchAll
// kernel.
func (r *Registry) Lookup(name OperatorName, key DispatchKey) (kernel.Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := r.kernels[name]
	if reg, ok := byKey[key]; ok {
		return reg.Handle, nil
	}
	if reg, ok := byKey[CatchAll]; ok {
		return reg.Handle, nil
	}
	return kernel.Handle{}, fmt.Errorf("lookup %s for %s: %w", name, key, ErrKernelNotFound)
}

// CallBoxed looks up the kernel and calls it with the arguments on stack.
// Kernel assertion failures are returned as *kernel.Error; any other panic
// as *PanicError.
func (r *Registry) CallBoxed(name OperatorName, key DispatchKey, stack *ivalue.Stack) error {
	h, err := r.Lookup(name, key)
	if err != nil {
		return err
	}
	return r.invoke(name, key, "boxed", func() { h.CallBoxed(stack) })
}

// Invoke looks up the kernel and passes it to call, recovering kernel panics
// the same way as CallBoxed. It is the entry point for typed calls:
//
//	var out int
//	err := reg.Invoke(op, dispatch.CPU, func(h kernel.Handle) {
//	    out = kernel.CallUnboxed1[int](h, 41)
//	})
func (r *Registry) Invoke(name OperatorName, key DispatchKey, call func(h kernel.Handle)) error {
	h, err := r.Lookup(name, key)
	if err != nil {
		return err
	}
	return r.invoke(name, key, "unboxed", func() { call(h) })
}

func (r *Registry) invoke(name OperatorName, key DispatchKey, convention string, fn func()) error {
	start := time.Now()
	err := recoverKernel(fn)
	dur := time.Since(start)

	var pErr *PanicError
	panicked := errors.As(err, &pErr)

	if kl := r.eventLogger(name, key); kl != nil {
		if panicked {
			kl.WithContext("convention", convention).ErrorWithStack(err, "Kernel panicked")
		} else {
			kl.LogKernelCall(convention, dur, err)
		}
		return err
	}
	switch {
	case panicked:
		r.logger.Error("dispatch.call.panic", "operator", name.String(), "dispatch_key", string(key), "convention", convention, "error", err.Error(), "stack_trace", string(pErr.Stack))
	case err != nil:
		r.logger.Error("dispatch.call.error", "operator", name.String(), "dispatch_key", string(key), "convention", convention, "error", err.Error())
	}
	return err
}

// Warmup constructs every deferred kernel that has not run yet, with at
// most Config.WarmupConcurrency constructors in flight. It stops at the first
// failure or when ctx is done.
func (r *Registry) Warmup(ctx context.Context) error {
	pending := r.pending()
	if len(pending) == 0 {
		return nil
	}

	start := time.Now()
	if kl, ok := r.logger.(*logging.KernelLogger); ok {
		defer kl.WithComponent("dispatch").WithContext("kernels", len(pending)).StartTimer("warmup")()
	}
	g, gctx := errgroup.WithContext(ctx)
	if r.config.WarmupConcurrency > 0 {
		g.SetLimit(r.config.WarmupConcurrency)
	}

	for _, reg := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.materialize(reg.Operator, reg.Key, reg.Handle)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.logger.Error("dispatch.warmup.error", "kernels", len(pending), "error", err.Error())
		return fmt.Errorf("warmup: %w", err)
	}

	r.logger.Info("dispatch.warmup.done", "kernels", len(pending), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (r *Registry) pending() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Registration
	for _, byKey := range r.kernels {
		for _, reg := range byKey {
			if !reg.Handle.Materialized() {
				out = append(out, reg)
			}
		}
	}
	return out
}

func (r *Registry) materialize(name OperatorName, key DispatchKey, h kernel.Handle) error {
	start := time.Now()
	err := recoverKernel(h.Materialize)
	if err != nil {
		err = fmt.Errorf("materialize %s for %s: %w", name, key, err)
	}

	if kl := r.eventLogger(name, key); kl != nil {
		kl.LogMaterialization(time.Since(start), err)
	} else if err != nil {
		r.logger.Error("dispatch.materialize.error", "operator", name.String(), "dispatch_key", string(key), "error", err.Error())
	}
	return err
}

// Operators lists the registered operators in name order.
func (r *Registry) Operators() []OperatorName {
	r.mu.RLock()
	out := make([]OperatorName, 0, len(r.kernels))
	for name := range r.kernels {
		out = append(out, name)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, compareOperatorNames)
	return out
}

// DispatchKeys lists the keys name has a kernel for, sorted.
func (r *Registry) DispatchKeys(name OperatorName) []DispatchKey {
	r.mu.RLock()
	out := make([]DispatchKey, 0, len(r.kernels[name]))
	for key := range r.kernels[name] {
		out = append(out, key)
	}
	r.mu.RUnlock()

	slices.Sort(out)
	return out
}

func (r *Registry) eventLogger(name OperatorName, key DispatchKey) *logging.KernelLogger {
	kl, ok := r.logger.(*logging.KernelLogger)
	if !ok {
		return nil
	}
	return kl.WithComponent("dispatch").WithOperator(name.String()).WithDispatchKey(string(key))
}
