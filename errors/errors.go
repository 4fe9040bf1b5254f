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

package errors

import "errors"

var (
	// ErrMountNotFound means the mount id is absent from the local cache.
	// A role manager recovers from it by querying the master.
	ErrMountNotFound = errors.New("mount id not found in cache")

	// ErrUnknownMount means the master itself does not know the mount id.
	// The master is authoritative, so this is permanent and not retried.
	ErrUnknownMount = errors.New("unknown mount id")

	// ErrUfsUnavailable covers transport failures talking to the master and
	// failures connecting the under file system. Transient, the caller owns
	// retry policy.
	ErrUfsUnavailable = errors.New("under file system unavailable")

	// ErrInvalidUfsInfo means the master replied without a uri or a
	// properties payload. Protocol contract violation.
	ErrInvalidUfsInfo = errors.New("invalid ufs info from master")

	ErrUfsClosed = errors.New("under file system has been closed")

	ErrUnsupportedScheme = errors.New("unsupported ufs scheme")

	ErrInvalidUri = errors.New("invalid ufs uri")
)
