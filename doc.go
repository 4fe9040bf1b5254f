/*
 *
 * Copyright 2023 Stratofs authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

/*

# Stratofs: a logical namespace over heterogeneous storage

Stratofs layers a single virtual namespace over under file systems
(UFS): object stores, distributed file systems, local disks. Clients go
through metadata masters for the mount table and through workers for
I/O.

## Mount model

* Mount, a binding of a logical path prefix to a location in a UFS.

* Mount id, the stable identifier the master assigns to a mount; the key
workers cache by.

* UfsInfo, the master's description of a mount: backend uri plus mount
specific properties layered over the process global configuration.

## Worker side

Every worker-class process (storage worker, job worker) keeps a local
replica of the master's mount table: mount id to a live, connected UFS
driver. The replica is populated lazily, on demand, and rolled back when
a backend handshake fails; the master stays authoritative.

This repository holds the worker side: the mount cache, the handle
gating machinery, the role aware manager and the UFS driver registry
(local disk, S3 compatible object stores).

## Building Blocks

* CubeFS blobstore commons (rpc, trace, config, log)
* AWS SDK v2
* Prometheus

*/

package stratofs
