package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/port/outbound"
)

const panelKeyPrefix = "nanostudio:panel:"

// updateIfOwner writes the snapshot only while the caller holds the claim.
// KEYS[1]=claim key, KEYS[2]=snapshot key, ARGV[1]=task id, ARGV[2]=snapshot, ARGV[3]=ttl ms.
var updateIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// settleIfOwner stores the final snapshot and releases the claim. With the
// claim already expired it still replaces the caller's own in-flight snapshot,
// but never one written by a later submission.
var settleIfOwner = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if owner then
  if owner ~= ARGV[1] then
    return 0
  end
else
  local cur = redis.call("GET", KEYS[2])
  if cur and cjson.decode(cur)["task_id"] ~= ARGV[1] then
    return 0
  end
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
redis.call("DEL", KEYS[1])
return 1
`)

// PanelStore keeps panel snapshots in Redis so several replicas share
// the one-in-flight-per-panel rule. The claim is a SET NX key holding the task ID.
type PanelStore struct {
	client   redis.UniversalClient
	ttl      time.Duration
	claimTTL time.Duration
}

// NewPanelStore creates a Redis-backed panel store. claimTTL should exceed the
// longest submission so a crashed replica cannot hold a panel forever.
func NewPanelStore(client redis.UniversalClient, ttl, claimTTL time.Duration) *PanelStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if claimTTL <= 0 {
		claimTTL = time.Hour
	}
	return &PanelStore{client: client, ttl: ttl, claimTTL: claimTTL}
}

func snapshotKey(key model.PanelKey) string {
	return panelKeyPrefix + key.Session + ":" + string(key.Panel)
}

func claimKey(key model.PanelKey) string {
	return snapshotKey(key) + ":claim"
}

func keyOf(snap *model.PanelSnapshot) model.PanelKey {
	return model.PanelKey{Session: snap.Session, Panel: snap.Panel}
}

// Begin claims the panel and stores the in-flight snapshot.
func (s *PanelStore) Begin(ctx context.Context, snap *model.PanelSnapshot) (bool, error) {
	key := keyOf(snap)
	ok, err := s.client.SetNX(ctx, claimKey(key), snap.TaskID.String(), s.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim panel: %w", err)
	}
	if !ok {
		return false, nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		s.client.Del(ctx, claimKey(key))
		return false, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(key), data, s.ttl).Err(); err != nil {
		s.client.Del(ctx, claimKey(key))
		return false, fmt.Errorf("store snapshot: %w", err)
	}
	return true, nil
}

// Update replaces the snapshot while the caller still holds the claim.
// A late update after the claim is gone is dropped.
func (s *PanelStore) Update(ctx context.Context, snap *model.PanelSnapshot) error {
	return s.write(ctx, updateIfOwner, snap)
}

// Settle stores the final snapshot and releases the claim.
func (s *PanelStore) Settle(ctx context.Context, snap *model.PanelSnapshot) error {
	return s.write(ctx, settleIfOwner, snap)
}

func (s *PanelStore) write(ctx context.Context, script *redis.Script, snap *model.PanelSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := keyOf(snap)
	err = script.Run(ctx, s.client,
		[]string{claimKey(key), snapshotKey(key)},
		snap.TaskID.String(), data, s.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Get returns the stored snapshot, or nil when the panel was never used.
func (s *PanelStore) Get(ctx context.Context, key model.PanelKey) (*model.PanelSnapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var snap model.PanelSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

var _ outbound.PanelStorePort = (*PanelStore)(nil)
