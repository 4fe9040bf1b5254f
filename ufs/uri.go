package ufs

import (
	"fmt"
	"net/url"
	"strings"

	apierrors "github.com/stratofs/stratofs/errors"
)

const SchemeLocal = "local"

// URI locates a mount point's root inside an under file system, e.g.
// s3://bucket/data or local:///var/lib/stratofs. A bare path with no
// scheme is treated as local.
type URI struct {
	raw string
	u   *url.URL
}

func ParseURI(raw string) (*URI, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty uri", apierrors.ErrInvalidUri)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", apierrors.ErrInvalidUri, raw, err)
	}
	return &URI{raw: raw, u: u}, nil
}

// Scheme returns the backend scheme, defaulting to local for scheme-less
// paths.
func (u *URI) Scheme() string {
	if u.u.Scheme == "" {
		return SchemeLocal
	}
	return strings.ToLower(u.u.Scheme)
}

// Authority is the host part of the uri, e.g. the bucket of an object
// store location.
func (u *URI) Authority() string {
	return u.u.Host
}

func (u *URI) Path() string {
	if u.u.Scheme == "" && u.u.Path == "" {
		return u.u.Opaque
	}
	return u.u.Path
}

func (u *URI) String() string {
	return u.raw
}
