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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cubefs/cubefs/blobstore/common/trace"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/metrics"
	"github.com/stratofs/stratofs/proto"
	"github.com/stratofs/stratofs/ufs"
)

// MountCache is the mount id keyed registry of UfsClient. Purely local
// and passive: it never talks to the master. Safe for arbitrary
// concurrent use, except that Close must not race with AddMount (caller
// discipline during process shutdown).
type MountCache struct {
	mounts sync.Map // proto.MountID -> *UfsClient
}

func NewMountCache() *MountCache {
	return &MountCache{}
}

// Get returns the cached client for the mount id, ErrMountNotFound when
// absent. No I/O.
func (m *MountCache) Get(mountID proto.MountID) (*UfsClient, error) {
	v, ok := m.mounts.Load(mountID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", apierrors.ErrMountNotFound, mountID)
	}
	return v.(*UfsClient), nil
}

// AddMount constructs the driver for the uri's scheme and publishes it
// under the mount id. When two callers race on the same id exactly one
// instance wins; the loser's freshly built driver is closed and the loser
// transparently receives the winner's client.
func (m *MountCache) AddMount(ctx context.Context, mountID proto.MountID, rawURI string, c *conf.UfsConf) (*UfsClient, error) {
	span := trace.SpanFromContextSafe(ctx)

	uri, err := ufs.ParseURI(rawURI)
	if err != nil {
		return nil, err
	}
	fs, err := ufs.Create(rawURI, c)
	if err != nil {
		return nil, err
	}

	client := newUfsClient(mountID, uri, c, fs)
	actual, loaded := m.mounts.LoadOrStore(mountID, client)
	if loaded {
		// lost the publication race, never leak the extra driver
		if cerr := fs.Close(); cerr != nil {
			span.Warnf("close losing ufs instance for mount %d failed: %s", mountID, cerr)
		}
		metrics.UfsClosed.Inc()
		return actual.(*UfsClient), nil
	}
	span.Debugf("mount %d added for %s", mountID, rawURI)
	return client, nil
}

// RemoveMount drops the entry and closes its client. Idempotent, reports
// whether an entry was present. Scopes already acquired stay valid, only
// future lookups are affected.
func (m *MountCache) RemoveMount(ctx context.Context, mountID proto.MountID) bool {
	v, ok := m.mounts.LoadAndDelete(mountID)
	if !ok {
		return false
	}
	v.(*UfsClient).close()
	trace.SpanFromContextSafe(ctx).Debugf("mount %d removed", mountID)
	return true
}

// Close tears down every remaining entry, best effort, and clears the
// cache. Meant for process shutdown.
func (m *MountCache) Close(ctx context.Context) error {
	m.mounts.Range(func(key, value interface{}) bool {
		m.mounts.Delete(key)
		value.(*UfsClient).close()
		return true
	})
	return nil
}

// Len reports the number of cached mounts.
func (m *MountCache) Len() int {
	n := 0
	m.mounts.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Stats snapshots the cached mounts, sorted by mount id.
func (m *MountCache) Stats() []proto.MountStat {
	var stats []proto.MountStat
	m.mounts.Range(func(_, value interface{}) bool {
		client := value.(*UfsClient)
		stats = append(stats, proto.MountStat{
			MountID:  client.mountID,
			Uri:      client.uri.String(),
			Scheme:   client.uri.Scheme(),
			ReadOnly: client.conf.IsReadOnly(),
		})
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].MountID < stats[j].MountID })
	return stats
}
