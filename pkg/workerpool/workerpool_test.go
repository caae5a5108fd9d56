package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitRunsJobsAcrossWorkers(t *testing.T) {
	p := New(4, 8, zap.NewNop().Sugar())
	defer p.Close()

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		}))
	}
	wg.Wait()
	require.Equal(t, int64(50), atomic.LoadInt64(&n))
}

func TestCloseDrainsQueuedJobsBeforeReturning(t *testing.T) {
	p := New(2, 16, zap.NewNop().Sugar())

	var n int64
	for i := 0; i < 16; i++ {
		require.NoError(t, p.Submit(func() {
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&n, 1)
		}))
	}

	p.Close()
	require.Equal(t, int64(16), atomic.LoadInt64(&n))
}

func TestSubmitAfterCloseFails(t *testing.T) {
	p := New(1, 1, zap.NewNop().Sugar())
	p.Close()

	err := p.Submit(func() {})
	require.ErrorIs(t, err, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(1, 1, zap.NewNop().Sugar())
	p.Close()
	p.Close()
}

func TestNewClampsSizeToAtLeastOne(t *testing.T) {
	p := New(0, 0, zap.NewNop().Sugar())
	defer p.Close()

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
}
