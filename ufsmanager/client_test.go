package ufsmanager

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
)

func newTestClient(t *testing.T) (*UfsClient, *fakeUfs) {
	installBackend()
	cache := NewMountCache()
	client, err := cache.AddMount(context.Background(), 1, "fake://b/p", conf.New(nil, false))
	require.NoError(t, err)
	return client, client.fs.(*fakeUfs)
}

func TestUfsClient_AcquireAfterCloseFails(t *testing.T) {
	client, fs := newTestClient(t)

	res, err := client.Acquire()
	require.NoError(t, err)

	client.close()

	// the open scope stays valid, destruction is deferred
	require.False(t, fs.Closed())
	require.Same(t, client.fs, res.Get())

	_, err = client.Acquire()
	require.ErrorIs(t, err, apierrors.ErrUfsClosed)

	require.NoError(t, res.Close())
	require.True(t, fs.Closed())
}

func TestUfsClient_CloseWithoutScopesDestroysNow(t *testing.T) {
	client, fs := newTestClient(t)
	client.close()
	require.True(t, fs.Closed())

	// close is idempotent
	client.close()
}

func TestUfsClient_ResourceCloseIdempotent(t *testing.T) {
	client, fs := newTestClient(t)

	res, err := client.Acquire()
	require.NoError(t, err)
	require.NoError(t, res.Close())
	require.NoError(t, res.Close())

	client.close()
	require.True(t, fs.Closed())
}

func TestUfsClient_ConcurrentAcquireAndClose(t *testing.T) {
	client, fs := newTestClient(t)

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			res, err := client.Acquire()
			if err != nil {
				return
			}
			_ = res.Get().Name()
			res.Close()
		}()
	}
	client.close()
	wg.Wait()

	// whoever held the last scope, the driver ends up closed exactly once
	require.True(t, fs.Closed())
	require.Equal(t, int64(1), fs.backend.Closed())

	_, err := client.Acquire()
	require.ErrorIs(t, err, apierrors.ErrUfsClosed)
}

func BenchmarkUfsClient_Acquire(b *testing.B) {
	installBackend()
	cache := NewMountCache()
	client, err := cache.AddMount(context.Background(), 1, "fake://b/p", conf.New(nil, false))
	if err != nil {
		b.Fatal(err)
	}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			res, err := client.Acquire()
			if err != nil {
				b.Fatal(err)
			}
			res.Close()
		}
	})
}
