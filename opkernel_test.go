package opkernel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/opkernel/dispatch"
	"github.com/hupe1980/opkernel/internal/testutil"
	"github.com/hupe1980/opkernel/ivalue"
	"github.com/hupe1980/opkernel/kernel"
	"github.com/hupe1980/opkernel/logging"
)

func TestFacade(t *testing.T) {
	m := New()

	_, err := m.Register("test::add_one", dispatch.CPU, kernel.MakeFromUnboxedFunctor(&testutil.AddOne{}))
	require.NoError(t, err)
	_, err = m.Register("test::scale.float", dispatch.CatchAll, kernel.MakeFromUnboxedFunctor(testutil.Scale{Factor: 10}))
	require.NoError(t, err)

	assert.Equal(t, []string{"test::add_one", "test::scale.float"}, m.Operators())

	out, err := Call(m, "test::add_one", dispatch.CPU, func(h kernel.Handle) int {
		return kernel.CallUnboxedOnly1[int](h, 41)
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	stack := testutil.NewStackBuilder().Double(1.5).Double(1).Build()
	require.NoError(t, m.CallBoxed("test::scale.float", dispatch.CUDA, stack))
	assert.Equal(t, 16.0, ivalue.MustTo[float64](stack.Pop()))

	_, err = Call(m, "test::add_one", dispatch.CPU, func(h kernel.Handle) string {
		return kernel.CallUnboxed1[string](h, 41)
	})
	assert.ErrorIs(t, err, kernel.ErrSignatureMismatch)

	_, err = Call(m, "test::missing", dispatch.CPU, func(h kernel.Handle) int { return 0 })
	assert.ErrorIs(t, err, dispatch.ErrKernelNotFound)
}

func TestFacadeWarmup(t *testing.T) {
	m := New(func(o *Options) { o.Config.WarmupConcurrency = 1 })
	f := &testutil.Factory{}
	_, err := m.Register("test::lazy", dispatch.CPU, kernel.MakeFromUnboxedFunctorFactory(f.NewAddOne))
	require.NoError(t, err)

	require.NoError(t, m.Warmup(context.Background()))
	assert.Equal(t, int64(1), f.Runs())
}

func TestNewFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opkernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allow_override: true\nlog_level: warn\nlog_format: text\n"), 0o600))

	m, err := NewFromConfigFile(path)
	require.NoError(t, err)
	assert.True(t, m.Config().AllowOverride)
	assert.Equal(t, "text", m.Config().LogFormat)

	_, err = m.Register("test::add_one", dispatch.CPU, kernel.MakeFromUnboxedFunctor(&testutil.AddOne{}))
	require.NoError(t, err)
	_, err = m.Register("test::add_one", dispatch.CPU, kernel.MakeFromUnboxedFunctor(&testutil.AddOne{}))
	assert.NoError(t, err)

	_, err = NewFromConfigFile(path, func(o *Options) { o.Config.WarmupConcurrency = 3 })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log_level: shout\n"), 0o600))
	_, err = NewFromConfigFile(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := dispatch.DefaultConfig
	cfg.LogLevel = "debug"

	logger, err := NewLogger(cfg, buf)
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"component":"opkernel"`)

	cfg.LogLevel = "nope"
	_, err = NewLogger(cfg, buf)
	assert.Error(t, err)
}

func TestNewLogger_Zap(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := dispatch.DefaultConfig
	cfg.LogFormat = "zap"

	logger, err := NewLogger(cfg, buf)
	require.NoError(t, err)
	require.IsType(t, &logging.ZapAdapter{}, logger)

	m := New(func(o *Options) { o.Logger = logger })
	_, err = m.Register("test::add_one", dispatch.CPU, kernel.MakeFromUnboxedFunctor(&testutil.AddOne{}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"dispatch.register"`)
	assert.Contains(t, buf.String(), `"operator":"test::add_one"`)
}
