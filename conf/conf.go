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

// Package conf holds the resolved configuration handed to an under file
// system driver: process global properties with mount specific overrides
// merged on top. A UfsConf is read only after construction and safe to
// share across goroutines.
package conf

import "fmt"

type UfsConf struct {
	props    map[string]string
	readOnly bool
}

// New builds a UfsConf from the process global properties. The map is
// copied, later mutation of the argument does not leak in.
func New(global map[string]string, readOnly bool) *UfsConf {
	props := make(map[string]string, len(global))
	for k, v := range global {
		props[k] = v
	}
	return &UfsConf{props: props, readOnly: readOnly}
}

// CreateMountSpecificConf returns a new UfsConf with the mount specific
// properties layered over the receiver's. Mount keys win on conflict.
// The receiver is left untouched.
func (c *UfsConf) CreateMountSpecificConf(mountProps map[string]string) *UfsConf {
	props := make(map[string]string, len(c.props)+len(mountProps))
	for k, v := range c.props {
		props[k] = v
	}
	for k, v := range mountProps {
		props[k] = v
	}
	return &UfsConf{props: props, readOnly: c.readOnly}
}

func (c *UfsConf) Get(key string) (string, bool) {
	v, ok := c.props[key]
	return v, ok
}

func (c *UfsConf) GetDefault(key, def string) string {
	if v, ok := c.props[key]; ok {
		return v
	}
	return def
}

// MustGet panics when the key is absent. Reserved for keys the caller has
// already validated.
func (c *UfsConf) MustGet(key string) string {
	v, ok := c.props[key]
	if !ok {
		panic(fmt.Sprintf("ufs conf: missing required key %q", key))
	}
	return v
}

func (c *UfsConf) IsReadOnly() bool {
	return c.readOnly
}

// Entries returns a snapshot copy of all properties.
func (c *UfsConf) Entries() map[string]string {
	props := make(map[string]string, len(c.props))
	for k, v := range c.props {
		props[k] = v
	}
	return props
}
