package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

// PanelStore keeps panel snapshots in process memory.
// All mutations hold one mutex, so Begin is an atomic test-and-set.
type PanelStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewPanelStore creates a panel store whose entries expire after ttl.
func NewPanelStore(ttl time.Duration) *PanelStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PanelStore{cache: gocache.New(ttl, ttl/2)}
}

func panelKey(key model.PanelKey) string {
	return "panel:" + key.String()
}

func snapKey(snap *model.PanelSnapshot) string {
	return panelKey(model.PanelKey{Session: snap.Session, Panel: snap.Panel})
}

func (s *PanelStore) current(key string) *model.PanelSnapshot {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	return v.(*model.PanelSnapshot)
}

// Begin claims the panel unless a submission is already in flight.
func (s *PanelStore) Begin(_ context.Context, snap *model.PanelSnapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapKey(snap)
	if cur := s.current(key); cur != nil && cur.State == model.PanelStateInFlight {
		return false, nil
	}
	s.cache.SetDefault(key, copySnapshot(snap))
	return true, nil
}

// Update replaces the snapshot while the same submission is still in flight.
func (s *PanelStore) Update(_ context.Context, snap *model.PanelSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapKey(snap)
	cur := s.current(key)
	if cur == nil || cur.State != model.PanelStateInFlight || cur.TaskID != snap.TaskID {
		return nil
	}
	s.cache.SetDefault(key, copySnapshot(snap))
	return nil
}

// Settle stores the final snapshot of the submission that holds the claim.
func (s *PanelStore) Settle(_ context.Context, snap *model.PanelSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapKey(snap)
	if cur := s.current(key); cur != nil && cur.TaskID != snap.TaskID {
		return nil
	}
	s.cache.SetDefault(key, copySnapshot(snap))
	return nil
}

// Get returns a copy of the snapshot, or nil when the panel was never used.
func (s *PanelStore) Get(_ context.Context, key model.PanelKey) (*model.PanelSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current(panelKey(key))
	if cur == nil {
		return nil, nil
	}
	return copySnapshot(cur), nil
}

func copySnapshot(snap *model.PanelSnapshot) *model.PanelSnapshot {
	c := *snap
	if snap.Prompts != nil {
		c.Prompts = append([]string(nil), snap.Prompts...)
	}
	if snap.Results != nil {
		c.Results = append([]model.GenerationResult(nil), snap.Results...)
	}
	if snap.Error != nil {
		e := *snap.Error
		c.Error = &e
	}
	return &c
}

var _ outbound.PanelStorePort = (*PanelStore)(nil)
