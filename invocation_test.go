package herald

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvocation(t *testing.T) {
	called := false
	before := time.Now()

	inv := newInvocation("test.invocation", func() { called = true })
	defer inv.release()

	assert.Equal(t, Signal("test.invocation"), inv.signal)
	assert.NotEmpty(t, inv.id)
	assert.False(t, inv.enqueued.Before(before))

	require.NotNil(t, inv.thunk)
	inv.thunk()
	assert.True(t, called)
}

func TestInvocationIDsUnique(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		inv := newInvocation("test.ids", nil)
		_, dup := seen[inv.id]
		assert.False(t, dup, "duplicate id %s", inv.id)
		seen[inv.id] = struct{}{}
		inv.release()
	}
}

func TestInvocationRelease(t *testing.T) {
	inv := newInvocation("test.release", func() {})
	inv.release()

	assert.Nil(t, inv.thunk)
	assert.Empty(t, inv.id)
	assert.Empty(t, inv.signal)
}
