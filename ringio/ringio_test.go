package ringio

import (
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInOrderDelivery(t *testing.T) {
	const n = 100000
	for _, capacity := range []int{2, 3, 8, 64} {
		i := 0
		r := New(capacity, func(item *int) error {
			if i == n {
				return io.EOF
			}
			*item = i
			i++
			return nil
		})
		for want := 0; want < n; want++ {
			item, err := r.Next()
			require.NoError(t, err)
			require.Equal(t, want, *item, "capacity %d", capacity)
		}
		_, err := r.Next()
		assert.Equal(t, io.EOF, err)
		// Finished rings keep reporting EOF.
		_, err = r.Next()
		assert.Equal(t, io.EOF, err)
		r.Abort()
	}
}

func TestProducerError(t *testing.T) {
	boom := errors.New("input truncated")
	i := 0
	r := New(4, func(item *int) error {
		if i == 10 {
			return boom
		}
		*item = i
		i++
		return nil
	})
	for want := 0; want < 10; want++ {
		item, err := r.Next()
		require.NoError(t, err)
		require.Equal(t, want, *item)
	}
	// The producer's error surfaces on the consumer, and again on every
	// subsequent drain.
	_, err := r.Next()
	assert.Equal(t, boom, err)
	_, err = r.Next()
	assert.Equal(t, boom, err)
	r.Abort()
}

func TestAbort(t *testing.T) {
	r := New(2, func(item *int) error {
		*item = 1
		return nil
	})
	// Let the producer fill the ring and block.
	item, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, 1, *item)
	done := make(chan struct{})
	go func() {
		r.Abort()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Abort did not join the producer")
	}
	r.Abort() // idempotent
}

func TestCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { New(1, func(*int) error { return io.EOF }) })
}
