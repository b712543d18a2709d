package uploader

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/williamokano/r2_uploader/pkg/settings"
	"github.com/williamokano/r2_uploader/pkg/storage"
	"github.com/williamokano/r2_uploader/pkg/storage/s3"
)

// StoreFactory builds the signing client from a settings snapshot
type StoreFactory func(ctx context.Context, s settings.Settings) (storage.ObjectStore, error)

// DefaultStoreFactory builds an S3-compatible store from the settings.
// Missing endpoint or keys yield a storage.ConfigurationError.
func DefaultStoreFactory(ctx context.Context, s settings.Settings) (storage.ObjectStore, error) {
	return s3.New(ctx, s3.Config{
		Endpoint:        s.Endpoint,
		Bucket:          s.Bucket,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretKey,
	})
}

// clientCache keeps one store per settings version. A store built from
// an older version is never handed out again.
type clientCache struct {
	settings *settings.Store
	factory  StoreFactory
	group    singleflight.Group

	mu      sync.Mutex
	store   storage.ObjectStore
	version uint64
}

func newClientCache(store *settings.Store, factory StoreFactory) *clientCache {
	return &clientCache{settings: store, factory: factory}
}

func (c *clientCache) cached(version uint64) storage.ObjectStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil && c.version == version {
		return c.store
	}
	return nil
}

// get returns the store for the current settings, building it on first
// use after a change. Concurrent builds for one version are collapsed.
func (c *clientCache) get(ctx context.Context) (storage.ObjectStore, error) {
	current, version := c.settings.Snapshot()
	if store := c.cached(version); store != nil {
		return store, nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(version, 10), func() (interface{}, error) {
		if store := c.cached(version); store != nil {
			return store, nil
		}

		store, err := c.factory(ctx, current)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if version >= c.version {
			c.store, c.version = store, version
		}
		c.mu.Unlock()

		return store, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(storage.ObjectStore), nil
}
