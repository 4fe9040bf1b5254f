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

// Package worker assembles one worker-class process: the master client,
// the role aware ufs manager and the admin HTTP surface.
package worker

import (
	"context"

	"github.com/cubefs/cubefs/blobstore/common/rpc/auditlog"
	"github.com/cubefs/cubefs/blobstore/common/trace"

	"github.com/stratofs/stratofs/client"
	"github.com/stratofs/stratofs/ufsmanager"

	// under file system drivers available to this process
	_ "github.com/stratofs/stratofs/ufs/local"
	_ "github.com/stratofs/stratofs/ufs/s3"
)

type NodeConfig struct {
	Host     string `json:"host"`
	HTTPPort uint32 `json:"http_port"`
}

type Config struct {
	NodeConfig    NodeConfig            `json:"node_config"`
	MasterConfig  client.MasterConfig   `json:"master_config"`
	RoleConfig    ufsmanager.RoleConfig `json:"role_config"`
	UfsProperties map[string]string     `json:"ufs_properties"`
	AuditLog      auditlog.Config       `json:"audit_log"`
}

type Worker struct {
	manager *ufsmanager.Manager
	master  *client.MasterClient
	cfg     *Config
}

func NewWorker(cfg *Config) (*Worker, error) {
	span, _ := trace.StartSpanFromContext(context.Background(), "")

	master, err := client.NewMasterClient(&cfg.MasterConfig)
	if err != nil {
		return nil, err
	}
	manager, err := ufsmanager.NewManager(master, cfg.UfsProperties, cfg.RoleConfig)
	if err != nil {
		master.Close()
		return nil, err
	}

	span.Infof("worker ready, role %s", manager.Role())
	return &Worker{manager: manager, master: master, cfg: cfg}, nil
}

// Manager exposes the mount cache to the storage and job paths of this
// process.
func (w *Worker) Manager() *ufsmanager.Manager {
	return w.manager
}

func (w *Worker) Close() {
	_, ctx := trace.StartSpanFromContext(context.Background(), "")
	if err := w.manager.Close(ctx); err != nil {
		trace.SpanFromContextSafe(ctx).Warnf("close mount cache failed: %s", err)
	}
	w.master.Close()
}
