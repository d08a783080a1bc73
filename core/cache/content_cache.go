package cache

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/folio-dev/folio/core/logger"
)

type contentItem struct {
	fingerprint string
	data        []byte
}

// ContentCache is a bounded in-memory read-through cache of raw file bytes,
// keyed by path and validated against the file's current fingerprint. It
// keeps a single pipeline run from reading the same file once for dependency
// extraction and again for processing.
type ContentCache struct {
	items *lru.Cache[string, contentItem]
}

func NewContentCache(size int) (*ContentCache, error) {
	if size <= 0 {
		size = 256
	}
	items, err := lru.New[string, contentItem](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create content cache: %w", err)
	}
	return &ContentCache{items: items}, nil
}

// Get returns cached bytes for path when the stored fingerprint still
// matches.
func (cc *ContentCache) Get(path, fingerprint string) ([]byte, bool) {
	item, exists := cc.items.Get(path)
	if !exists || item.fingerprint != fingerprint {
		return nil, false
	}
	return item.data, true
}

// Put stores bytes for path under the given fingerprint.
func (cc *ContentCache) Put(path, fingerprint string, data []byte) {
	cc.items.Add(path, contentItem{fingerprint: fingerprint, data: data})
}

// Read returns the file's bytes, consulting the cache first.
func (cc *ContentCache) Read(path, fingerprint string) ([]byte, error) {
	if data, ok := cc.Get(path, fingerprint); ok {
		logger.Debug("ContentCache: hit for %s", path)
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cc.Put(path, fingerprint, data)
	return data, nil
}

// Purge drops all cached content.
func (cc *ContentCache) Purge() {
	cc.items.Purge()
}
