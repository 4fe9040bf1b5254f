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

// Package local is the local disk under file system driver, rooted at
// the mount uri path. Mostly exercised by tests and single host setups.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stratofs/stratofs/conf"
	"github.com/stratofs/stratofs/ufs"
)

func init() {
	ufs.Register(ufs.SchemeLocal, New)
}

type localUfs struct {
	root string
}

func New(uri *ufs.URI, _ *conf.UfsConf) (ufs.UnderFileSystem, error) {
	root := uri.Path()
	if root == "" {
		return nil, fmt.Errorf("local ufs: uri %q has no path", uri.String())
	}
	return &localUfs{root: filepath.Clean(root)}, nil
}

func (l *localUfs) Name() string { return ufs.SchemeLocal }

func (l *localUfs) ConnectFromWorker(ctx context.Context, host string) error {
	// no session to establish, just make sure the root is usable
	return os.MkdirAll(l.root, 0o755)
}

func (l *localUfs) resolve(path string) string {
	return filepath.Join(l.root, filepath.Clean("/"+path))
}

func (l *localUfs) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

func (l *localUfs) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(l.resolve(path))
}

func (l *localUfs) Delete(ctx context.Context, path string, recursive bool) error {
	full := l.resolve(path)
	if recursive {
		return os.RemoveAll(full)
	}
	return os.Remove(full)
}

func (l *localUfs) GetStatus(ctx context.Context, path string) (*ufs.FileStatus, error) {
	info, err := os.Stat(l.resolve(path))
	if err != nil {
		return nil, err
	}
	return &ufs.FileStatus{
		Path:    path,
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}, nil
}

func (l *localUfs) ListStatus(ctx context.Context, path string) ([]*ufs.FileStatus, error) {
	entries, err := os.ReadDir(l.resolve(path))
	if err != nil {
		return nil, err
	}
	statuses := make([]*ufs.FileStatus, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, &ufs.FileStatus{
			Path:    filepath.Join(path, entry.Name()),
			Size:    info.Size(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		})
	}
	return statuses, nil
}

func (l *localUfs) Close() error { return nil }
