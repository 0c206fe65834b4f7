package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBreakerStartsClosed(t *testing.T) {
	b := New("redis")
	assert.Equal(t, "redis", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestRecordFailure(t *testing.T) {
	t.Run("opens on the threshold failure only", func(t *testing.T) {
		b := New("redis", WithFailureThreshold(2))

		fallback, change := b.RecordFailure()
		assert.False(t, fallback)
		assert.Equal(t, Change{}, change)

		fallback, change = b.RecordFailure()
		assert.True(t, fallback)
		assert.True(t, change.Opened)
		assert.Equal(t, "open", b.State().String())

		fallback, change = b.RecordFailure()
		assert.True(t, fallback)
		assert.False(t, change.Opened)
	})

	t.Run("interleaved success restarts the count", func(t *testing.T) {
		b := New("redis", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.False(t, b.IsOpen())
	})
}

func TestRecordSuccess(t *testing.T) {
	t.Run("closed circuit always serves primary", func(t *testing.T) {
		usePrimary, change := New("redis").RecordSuccess()
		assert.True(t, usePrimary)
		assert.False(t, change.Closed)
	})

	t.Run("needs consecutive successes to close", func(t *testing.T) {
		b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()

		usePrimary, _ := b.RecordSuccess()
		assert.False(t, usePrimary)
		b.RecordFailure()
		usePrimary, _ = b.RecordSuccess()
		assert.False(t, usePrimary)

		usePrimary, change := b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.True(t, change.Closed)
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestReset(t *testing.T) {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
}

func TestConcurrentUse(t *testing.T) {
	b := New("redis", WithFailureThreshold(50))
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()
	assert.True(t, b.IsOpen())
}
