// Copyright 2023 The Stratofs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package ufsmanager

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cubefs/cubefs/blobstore/util/log"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/metrics"
	"github.com/stratofs/stratofs/proto"
	"github.com/stratofs/stratofs/ufs"
)

// UfsClient wraps one cached mount entry. It owns the driver instance and
// gates access to it so a caller can never observe the driver mid close:
// Acquire fails once the client is closed, and the driver itself is only
// destroyed after the last outstanding resource is released.
type UfsClient struct {
	mountID proto.MountID
	uri     *ufs.URI
	conf    *conf.UfsConf
	fs      ufs.UnderFileSystem

	refs   int64
	closed int32

	destroyOnce sync.Once
}

func newUfsClient(mountID proto.MountID, uri *ufs.URI, c *conf.UfsConf, fs ufs.UnderFileSystem) *UfsClient {
	return &UfsClient{mountID: mountID, uri: uri, conf: c, fs: fs}
}

func (c *UfsClient) MountID() proto.MountID { return c.mountID }
func (c *UfsClient) Uri() *ufs.URI          { return c.uri }
func (c *UfsClient) Conf() *conf.UfsConf    { return c.conf }

// Acquire hands out a scoped reference to the driver. The caller must
// Close the resource on every exit path, usually via defer. Fails with
// ErrUfsClosed once the client has been closed.
func (c *UfsClient) Acquire() (*CloseableResource, error) {
	atomic.AddInt64(&c.refs, 1)
	if atomic.LoadInt32(&c.closed) == 1 {
		c.release()
		return nil, fmt.Errorf("%w: mount %d", apierrors.ErrUfsClosed, c.mountID)
	}
	return &CloseableResource{client: c}, nil
}

func (c *UfsClient) release() {
	if atomic.AddInt64(&c.refs, -1) == 0 && atomic.LoadInt32(&c.closed) == 1 {
		c.destroy()
	}
}

// close marks the client closed. New Acquire calls fail immediately,
// scopes already open keep a valid driver until they release. The driver
// is destroyed here only when no scope is open, otherwise by the last
// release.
func (c *UfsClient) close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	if atomic.LoadInt64(&c.refs) == 0 {
		c.destroy()
	}
}

func (c *UfsClient) destroy() {
	c.destroyOnce.Do(func() {
		if err := c.fs.Close(); err != nil {
			log.Warnf("close ufs for mount %d at %s failed: %s", c.mountID, c.uri.String(), err)
		}
		metrics.UfsClosed.Inc()
	})
}

// CloseableResource is one open scope over a UfsClient's driver. Close is
// idempotent.
type CloseableResource struct {
	client *UfsClient
	once   sync.Once
}

// Get returns the driver. Valid until Close.
func (r *CloseableResource) Get() ufs.UnderFileSystem {
	return r.client.fs
}

func (r *CloseableResource) Close() error {
	r.once.Do(r.client.release)
	return nil
}
