package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// BlobStore keeps downloaded artifacts in memory until they expire.
type BlobStore struct {
	cache *gocache.Cache
}

// NewBlobStore creates a blob store with the given retention.
func NewBlobStore(ttl time.Duration) *BlobStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BlobStore{cache: gocache.New(ttl, ttl/2)}
}

// Put stores asset under key.
func (s *BlobStore) Put(_ context.Context, key string, asset *model.Asset) error {
	s.cache.SetDefault(key, &model.Asset{Data: asset.Data, MIMEType: asset.MIMEType})
	return nil
}

// Get returns the asset, or nil when it has expired or never existed.
func (s *BlobStore) Get(_ context.Context, key string) (*model.Asset, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	return v.(*model.Asset), nil
}

var _ outbound.BlobStorePort = (*BlobStore)(nil)
