package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FSStore keeps documents as plain files under root/bucket/key. Earlier
// revisions of this service ran off local JSON files; the backend survives for
// local development and tests. The version tag is a content hash, and
// conditional writes are checked under a process-local mutex.
type FSStore struct {
	mu   sync.Mutex
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) Fetch(ctx context.Context, bucket, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(bucket, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("fetch %s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, "", fmt.Errorf("fetch %s/%s: %w", bucket, key, err)
	}

	return data, contentVersion(data), nil
}

func (s *FSStore) Put(ctx context.Context, bucket, key string, data []byte, ifVersion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(bucket, key)

	if ifVersion != "" {
		current, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("put %s/%s: %w", bucket, key, ErrVersionMismatch)
			}
			return "", fmt.Errorf("put %s/%s: %w", bucket, key, err)
		}
		if contentVersion(current) != ifVersion {
			return "", fmt.Errorf("put %s/%s: %w", bucket, key, ErrVersionMismatch)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn document.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	return contentVersion(data), nil
}

func (s *FSStore) path(bucket, key string) string {
	return filepath.Join(s.root, bucket, key)
}

func contentVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
