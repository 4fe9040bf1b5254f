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

// Package ufs defines the under file system driver contract and the
// scheme keyed registry drivers register themselves into.
package ufs

import (
	"context"
	"io"
	"time"
)

// FileStatus describes one object or file in an under file system.
type FileStatus struct {
	Path    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// UnderFileSystem is one backend driver. Implementations must be safe for
// concurrent use once ConnectFromWorker has returned.
//
// ConnectFromWorker establishes backend specific session state for the
// given worker identity. It may be invoked more than once with different
// identities; every call after the first succeeding one must be cheap.
// Close releases the session state; the instance is unusable afterwards.
type UnderFileSystem interface {
	Name() string

	ConnectFromWorker(ctx context.Context, host string) error

	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string, recursive bool) error
	GetStatus(ctx context.Context, path string) (*FileStatus, error)
	ListStatus(ctx context.Context, path string) ([]*FileStatus, error)

	Close() error
}
