package herald

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestWithLogger verifies the dispatcher logs through the provided logger.
func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := New(WithLogger(zap.New(core)))

	Hook1(d, "greet", func(string) {})
	Hook1(d, "greet", func(string) {})
	require.NoError(t, d.Emit("greet", "x"))
	require.NoError(t, d.Shutdown(context.Background()))

	registered := logs.FilterMessage("handler registered").All()
	require.Len(t, registered, 2)
	assert.Equal(t, false, registered[0].ContextMap()["replaced"])
	assert.Equal(t, true, registered[1].ContextMap()["replaced"])

	queued := logs.FilterMessage("invocation queued").All()
	require.Len(t, queued, 1)
	assert.Equal(t, "greet", queued[0].ContextMap()["signal"])

	assert.Equal(t, 1, logs.FilterMessage("dispatcher worker started").Len())
	assert.Equal(t, 1, logs.FilterMessage("dispatcher shutdown requested").Len())
	assert.Equal(t, 1, logs.FilterMessage("dispatcher worker stopped").Len())
}

// TestWithLoggerNil verifies a nil logger keeps the no-op default.
func TestWithLoggerNil(t *testing.T) {
	d := New(WithLogger(nil))
	defer d.Shutdown(context.Background()) //nolint:errcheck

	assert.NotNil(t, d.logger)
}

// TestLogsFailureAndAbandon verifies failures and abandoned work are logged.
func TestLogsFailureAndAbandon(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := New(WithLogger(zap.New(core)))

	release := make(chan struct{})
	Hook0(d, "block", func() { <-release })
	Hook0(d, "boom", func() { panic("boom") })
	Hook0(d, "after", func() {})

	require.NoError(t, d.Emit("block"))
	require.NoError(t, d.Emit("boom"))
	require.NoError(t, d.Emit("after"))
	close(release)
	require.Error(t, d.Wait(context.Background()))

	failed := logs.FilterMessage("handler panicked, dispatcher stopped").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zap.ErrorLevel, failed[0].Level)
	assert.Equal(t, "boom", failed[0].ContextMap()["signal"])

	abandoned := logs.FilterMessage("queued invocations abandoned").All()
	require.Len(t, abandoned, 1)
	assert.Equal(t, int64(1), abandoned[0].ContextMap()["count"])
}

// TestWithPolicy verifies the policy option.
func TestWithPolicy(t *testing.T) {
	d := New(WithPolicy(PolicyAbandon))
	defer d.Shutdown(context.Background()) //nolint:errcheck

	assert.Equal(t, PolicyAbandon, d.policy)
}

// TestWithObserver verifies observers attached at construction see the
// first invocation.
func TestWithObserver(t *testing.T) {
	var got []Signal
	d := New(WithObserver(func(tr Trace) { got = append(got, tr.Signal) }))

	Hook0(d, "first", func() {})
	require.NoError(t, d.Emit("first"))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, []Signal{"first"}, got)
}

// TestMultipleOptions verifies options combine.
func TestMultipleOptions(t *testing.T) {
	var mu sync.Mutex
	var handlerCalled bool

	d := New(
		WithPolicy(PolicyAbandon),
		WithFailureHandler(func(*HandlerError) {
			mu.Lock()
			handlerCalled = true
			mu.Unlock()
		}),
	)

	assert.Equal(t, PolicyAbandon, d.policy)
	assert.NotNil(t, d.onFailure)

	Hook0(d, "boom", func() { panic("test") })
	require.NoError(t, d.Emit("boom"))
	require.Error(t, d.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, handlerCalled)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"drain", PolicyDrain, false},
		{"", PolicyDrain, false},
		{"abandon", PolicyAbandon, false},
		{"Drain", PolicyDrain, true},
		{"later", PolicyDrain, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "drain", PolicyDrain.String())
	assert.Equal(t, "abandon", PolicyAbandon.String())
	assert.Equal(t, "Policy(7)", Policy(7).String())
}
