package ufs

import (
	"fmt"
	"sync"

	"github.com/stratofs/stratofs/conf"
	apierrors "github.com/stratofs/stratofs/errors"
)

// CreateFunc builds a driver for one mount point. The returned driver is
// not yet connected; the owner calls ConnectFromWorker before handing it
// out.
type CreateFunc func(uri *URI, c *conf.UfsConf) (UnderFileSystem, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]CreateFunc)
)

// Register makes a driver factory available under the given scheme.
// Drivers call it from init, duplicate registration panics.
func Register(scheme string, create CreateFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if create == nil {
		panic("ufs: Register create is nil")
	}
	if _, dup := registry[scheme]; dup {
		panic(fmt.Sprintf("ufs: Register called twice for scheme %q", scheme))
	}
	registry[scheme] = create
}

// Create parses the raw uri, looks the scheme up in the registry and
// builds the driver with the resolved mount configuration.
func Create(rawURI string, c *conf.UfsConf) (UnderFileSystem, error) {
	uri, err := ParseURI(rawURI)
	if err != nil {
		return nil, err
	}
	registryMu.RLock()
	create, ok := registry[uri.Scheme()]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", apierrors.ErrUnsupportedScheme, uri.Scheme())
	}
	return create(uri, c)
}

// Schemes lists the registered schemes, for diagnostics.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	schemes := make([]string, 0, len(registry))
	for s := range registry {
		schemes = append(schemes, s)
	}
	return schemes
}
