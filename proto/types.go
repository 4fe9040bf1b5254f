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

package proto

// WorkerRole is the network identity a worker-class process connects
// under file systems with.
type WorkerRole uint8

const (
	RoleStorageWorker = WorkerRole(1)
	RoleJobWorker     = WorkerRole(2)
)

func (r WorkerRole) String() string {
	switch r {
	case RoleStorageWorker:
		return "storage-worker"
	case RoleJobWorker:
		return "job-worker"
	default:
		return "unknown"
	}
}

// UfsInfo is the master's description of one mount point: where the
// under file system lives and the mount specific settings layered on
// top of the process global configuration.
type UfsInfo struct {
	Uri        string            `json:"uri"`
	Properties map[string]string `json:"properties"`
	ReadOnly   bool              `json:"read_only"`
}

type GetUfsInfoArgs struct {
	MountID MountID `json:"mount_id"`
}

type MountArgs struct {
	MountID    MountID           `json:"mount_id"`
	Uri        string            `json:"uri"`
	Properties map[string]string `json:"properties"`
	ReadOnly   bool              `json:"read_only"`
}

type UnmountArgs struct {
	MountID MountID `json:"mount_id"`
}

// MountStat is one cached mount as reported on the admin surface.
type MountStat struct {
	MountID  MountID `json:"mount_id"`
	Uri      string  `json:"uri"`
	Scheme   string  `json:"scheme"`
	ReadOnly bool    `json:"read_only"`
}

type StatsRet struct {
	Role   string      `json:"role"`
	Mounts []MountStat `json:"mounts"`
}
