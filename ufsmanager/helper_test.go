package ufsmanager

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/proto"
	"github.com/stratofs/stratofs/ufs"
)

// fakeBackend counts driver instances created and closed for the "fake"
// scheme, and can inject connect failures.
type fakeBackend struct {
	created int64
	closed  int64

	mu         sync.Mutex
	connectErr error
	closeErr   error
}

var currentBackend atomic.Pointer[fakeBackend]

func init() {
	ufs.Register("fake", func(uri *ufs.URI, c *conf.UfsConf) (ufs.UnderFileSystem, error) {
		backend := currentBackend.Load()
		if backend == nil {
			return nil, fmt.Errorf("no fake backend installed")
		}
		atomic.AddInt64(&backend.created, 1)
		return &fakeUfs{backend: backend, conf: c}, nil
	})
}

func installBackend() *fakeBackend {
	backend := &fakeBackend{}
	currentBackend.Store(backend)
	return backend
}

func (b *fakeBackend) setConnectErr(err error) {
	b.mu.Lock()
	b.connectErr = err
	b.mu.Unlock()
}

func (b *fakeBackend) Created() int64 { return atomic.LoadInt64(&b.created) }
func (b *fakeBackend) Closed() int64  { return atomic.LoadInt64(&b.closed) }

type fakeUfs struct {
	backend *fakeBackend
	conf    *conf.UfsConf

	mu       sync.Mutex
	connects []string
	closed   bool
}

func (f *fakeUfs) Name() string { return "fake" }

func (f *fakeUfs) ConnectFromWorker(ctx context.Context, host string) error {
	f.backend.mu.Lock()
	err := f.backend.connectErr
	f.backend.mu.Unlock()
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.connects = append(f.connects, host)
	f.mu.Unlock()
	return nil
}

func (f *fakeUfs) Connects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.connects...)
}

func (f *fakeUfs) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeUfs) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUfs) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUfs) Delete(ctx context.Context, path string, recursive bool) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeUfs) GetStatus(ctx context.Context, path string) (*ufs.FileStatus, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUfs) ListStatus(ctx context.Context, path string) ([]*ufs.FileStatus, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeUfs) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	atomic.AddInt64(&f.backend.closed, 1)

	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()
	return f.backend.closeErr
}

// fakeMaster is an in-memory authoritative mount table.
type fakeMaster struct {
	mu      sync.Mutex
	queries int
	infos   map[proto.MountID]*proto.UfsInfo
	err     error
}

func newFakeMaster() *fakeMaster {
	return &fakeMaster{infos: make(map[proto.MountID]*proto.UfsInfo)}
}

func (f *fakeMaster) put(id proto.MountID, info *proto.UfsInfo) {
	f.mu.Lock()
	f.infos[id] = info
	f.mu.Unlock()
}

func (f *fakeMaster) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeMaster) Queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func (f *fakeMaster) GetUfsInfo(ctx context.Context, mountID proto.MountID) (*proto.UfsInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	info, ok := f.infos[mountID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", apierrors.ErrUnknownMount, mountID)
	}
	return info, nil
}
