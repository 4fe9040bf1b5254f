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

// Package ufsmanager keeps the worker local replica of the master's
// mount table: mount id to a live, connected under file system handle.
// The cache is populated lazily, one winner per mount id under races,
// and rolled back when the connection handshake fails.
package ufsmanager

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"golang.org/x/sync/singleflight"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/metrics"
	"github.com/stratofs/stratofs/proto"
	"github.com/stratofs/stratofs/util"
)

// MasterClient resolves a mount id against the authoritative mount table.
// Implementations return apierrors.ErrUnknownMount when the master does
// not know the id; every other failure is treated as transient.
type MasterClient interface {
	GetUfsInfo(ctx context.Context, mountID proto.MountID) (*proto.UfsInfo, error)
}

// RoleConfig is the connection identity of this process. Whether a role
// performs the extra generic worker handshake is a property of the
// backend session contract, so it is a configurable hook here instead of
// being hard wired per role.
type RoleConfig struct {
	Role                proto.WorkerRole `json:"role"`
	ConnectHost         string           `json:"connect_host"`
	WorkerConnectHost   string           `json:"worker_connect_host"`
	AlsoConnectAsWorker bool             `json:"also_connect_as_worker"`
}

// StorageRoleConfig is the default identity of a storage worker.
func StorageRoleConfig() RoleConfig {
	return RoleConfig{Role: proto.RoleStorageWorker}
}

// JobRoleConfig is the default identity of a job worker, which also
// connects with the generic worker identity.
func JobRoleConfig() RoleConfig {
	return RoleConfig{Role: proto.RoleJobWorker, AlsoConnectAsWorker: true}
}

func (c *RoleConfig) applyDefaults() error {
	if c.Role == 0 {
		c.Role = proto.RoleStorageWorker
	}
	if c.ConnectHost == "" {
		host, err := util.GetLocalIp()
		if err != nil {
			return err
		}
		c.ConnectHost = host
	}
	if c.WorkerConnectHost == "" {
		c.WorkerConnectHost = c.ConnectHost
	}
	return nil
}

// Manager is the role aware front of the MountCache. Get on a cache hit
// is lock free and does no I/O; on a miss it resolves the mount against
// the master, publishes the driver and runs the role handshake.
type Manager struct {
	cache  *MountCache
	master MasterClient
	global map[string]string
	cfg    RoleConfig

	singleRun singleflight.Group
}

func NewManager(master MasterClient, globalProps map[string]string, cfg RoleConfig) (*Manager, error) {
	if master == nil {
		return nil, errors.New("ufsmanager: master client is required")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	global := make(map[string]string, len(globalProps))
	for k, v := range globalProps {
		global[k] = v
	}
	return &Manager{
		cache:  NewMountCache(),
		master: master,
		global: global,
		cfg:    cfg,
	}, nil
}

// Get returns the connected client for the mount id, querying the master
// on a local miss. Concurrent misses for the same id are coalesced into
// one population.
func (m *Manager) Get(ctx context.Context, mountID proto.MountID) (*UfsClient, error) {
	if client, err := m.cache.Get(mountID); err == nil {
		metrics.CacheHits.Inc()
		return client, nil
	}
	metrics.CacheMisses.Inc()

	v, err, _ := m.singleRun.Do(strconv.FormatUint(mountID, 10), func() (interface{}, error) {
		return m.populate(ctx, mountID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*UfsClient), nil
}

func (m *Manager) populate(ctx context.Context, mountID proto.MountID) (*UfsClient, error) {
	span := trace.SpanFromContextSafe(ctx)

	// another flight may have landed while we queued
	if client, err := m.cache.Get(mountID); err == nil {
		return client, nil
	}

	metrics.MasterQueries.Inc()
	info, err := m.master.GetUfsInfo(ctx, mountID)
	if err != nil {
		if errors.Is(err, apierrors.ErrUnknownMount) {
			span.Warnf("mount %d unknown to master", mountID)
			return nil, err
		}
		if errors.Is(err, apierrors.ErrUfsUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get ufs info for mount %d: %v", apierrors.ErrUfsUnavailable, mountID, err)
	}
	if info.Uri == "" || info.Properties == nil {
		span.Errorf("master returned incomplete ufs info for mount %d: %+v", mountID, info)
		return nil, fmt.Errorf("%w: mount %d reply missing uri or properties", apierrors.ErrInvalidUfsInfo, mountID)
	}

	return m.addAndConnect(ctx, mountID, info.Uri, info.Properties, info.ReadOnly)
}

// AddMount publishes a mount administratively, bypassing the master.
// Used by the unmount/mount admin surface and by the root mount at
// startup.
func (m *Manager) AddMount(ctx context.Context, mountID proto.MountID, uri string, props map[string]string, readOnly bool) (*UfsClient, error) {
	return m.addAndConnect(ctx, mountID, uri, props, readOnly)
}

func (m *Manager) addAndConnect(ctx context.Context, mountID proto.MountID, uri string, props map[string]string, readOnly bool) (*UfsClient, error) {
	span := trace.SpanFromContextSafe(ctx)

	ufsConf := conf.New(m.global, readOnly).CreateMountSpecificConf(props)
	client, err := m.cache.AddMount(ctx, mountID, uri, ufsConf)
	if err != nil {
		return nil, err
	}

	if err := m.connect(ctx, client); err != nil {
		// a broken entry must not stay published, the next Get retries
		// population from scratch
		m.cache.RemoveMount(ctx, mountID)
		metrics.ConnectRollbacks.Inc()
		span.Warnf("connect mount %d at %s failed, entry rolled back: %s", mountID, uri, err)
		return nil, fmt.Errorf("%w: connect mount %d at %s: %v", apierrors.ErrUfsUnavailable, mountID, uri, err)
	}
	return client, nil
}

func (m *Manager) connect(ctx context.Context, client *UfsClient) error {
	res, err := client.Acquire()
	if err != nil {
		return err
	}
	defer res.Close()

	fs := res.Get()
	if err := fs.ConnectFromWorker(ctx, m.cfg.ConnectHost); err != nil {
		return err
	}
	metrics.UfsConnects.WithLabelValues(m.cfg.Role.String()).Inc()

	if m.cfg.AlsoConnectAsWorker {
		if err := fs.ConnectFromWorker(ctx, m.cfg.WorkerConnectHost); err != nil {
			return err
		}
		metrics.UfsConnects.WithLabelValues(proto.RoleStorageWorker.String()).Inc()
	}
	return nil
}

// RemoveMount evicts the mount locally. In flight scopes stay valid.
func (m *Manager) RemoveMount(ctx context.Context, mountID proto.MountID) bool {
	return m.cache.RemoveMount(ctx, mountID)
}

func (m *Manager) Has(mountID proto.MountID) bool {
	_, err := m.cache.Get(mountID)
	return err == nil
}

func (m *Manager) Stats() []proto.MountStat {
	return m.cache.Stats()
}

func (m *Manager) Role() proto.WorkerRole {
	return m.cfg.Role
}

// Close shuts the cache down. Callers must have stopped issuing Get and
// AddMount calls.
func (m *Manager) Close(ctx context.Context) error {
	return m.cache.Close(ctx)
}
