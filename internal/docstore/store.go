package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionMismatch = errors.New("document version mismatch")
)

// Store is a whole-document blob store addressed by bucket and key. Fetch
// returns the document bytes together with an opaque version tag; Put replaces
// the document and, when ifVersion is non-empty, refuses the write with
// ErrVersionMismatch unless the stored version still matches. An empty
// ifVersion writes unconditionally.
//
// There is no caching and no partial-update primitive: every call round-trips
// to the backing store and every write replaces the whole document.
type Store interface {
	Fetch(ctx context.Context, bucket, key string) (data []byte, version string, err error)
	Put(ctx context.Context, bucket, key string, data []byte, ifVersion string) (newVersion string, err error)
}
