package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/models"
	"github.com/sagarpkl/medisync/internal/remote"
	"github.com/sagarpkl/medisync/internal/transform"
)

// DefaultStaleness is the maximum age of a cached list before a read
// refetches it.
const DefaultStaleness = 5 * time.Minute

// keyRoot prefixes every key of the patient hierarchy, so collection-level
// invalidation can find all descendants.
const keyRoot = "patient"

// ErrNotFound reports that no patient with the requested identifier exists
// in the freshly synchronized list.
var ErrNotFound = errors.New("patient not found")

// ListKey is the collection-level key holding the full patient list.
func ListKey() string {
	return keyRoot + ":list"
}

// FilterKey is the list key narrowed by a relationship filter descriptor.
func FilterKey(relationship string) string {
	return ListKey() + ":relation=" + strings.ToLower(strings.TrimSpace(relationship))
}

// DetailKey is the per-entity key for one patient.
func DetailKey(id string) string {
	return keyRoot + ":detail:" + id
}

// EventType classifies cache notifications.
type EventType string

const (
	EventWrite      EventType = "write"
	EventInvalidate EventType = "invalidate"
	EventDelete     EventType = "delete"
)

// Event notifies subscribers that a key's authority changed.
type Event struct {
	Type EventType
	Key  string
}

// entry is the stored form of a cached value plus its staleness timestamp.
// Patients must not collapse under omitempty: an empty list is a valid
// cached value and has to survive the marshal round trip, or a fresh empty
// entry would read back as a miss.
type entry struct {
	Patients  []models.Patient `json:"patients"`
	Patient   *models.Patient  `json:"patient,omitempty"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Fetcher is the remote surface the cache refetches through. It is the
// same fetch path the synchronization store uses.
type Fetcher interface {
	FetchPatients(ctx context.Context) (*models.Envelope, error)
}

// Cache is the keyed consistency mechanism. Reads are served from the KV
// backend while within the staleness window and refetched through the
// remote path otherwise; mutations invalidate the affected part of the key
// hierarchy. Subscribers receive an Event whenever a key is written,
// invalidated or deleted.
type Cache struct {
	kv        KV
	remote    Fetcher
	tr        *transform.Transformer
	staleness time.Duration
	log       *zap.Logger

	// Now supplies the staleness clock; replaced in tests.
	Now func() time.Time

	mu   sync.Mutex
	subs []chan Event
}

// New constructs a Cache. A non-positive staleness falls back to
// DefaultStaleness.
func New(kv KV, reg Fetcher, tr *transform.Transformer, staleness time.Duration, log *zap.Logger) *Cache {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &Cache{
		kv:        kv,
		remote:    reg,
		tr:        tr,
		staleness: staleness,
		log:       log,
		Now:       time.Now,
	}
}

// List returns the full patient list, own record first: from cache while
// fresh, otherwise refetched, transformed, cached and returned.
func (c *Cache) List(ctx context.Context) ([]models.Patient, error) {
	if e, ok := c.load(ctx, ListKey()); ok && e.Patients != nil {
		return e.Patients, nil
	}
	return c.refetchList(ctx)
}

// ListByRelationship returns the patients whose relationship matches the
// filter, cached under the filtered list key.
func (c *Cache) ListByRelationship(ctx context.Context, relationship string) ([]models.Patient, error) {
	key := FilterKey(relationship)
	if e, ok := c.load(ctx, key); ok {
		return e.Patients, nil
	}

	patients, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.EqualFold(p.Relationship, strings.TrimSpace(relationship)) {
			filtered = append(filtered, p)
		}
	}
	c.store(ctx, key, entry{Patients: filtered, FetchedAt: c.Now()})
	return filtered, nil
}

// Get returns one patient by identifier, reading through the detail key
// and falling back to a list synchronization.
func (c *Cache) Get(ctx context.Context, id string) (models.Patient, error) {
	if e, ok := c.load(ctx, DetailKey(id)); ok && e.Patient != nil {
		return *e.Patient, nil
	}

	patients, err := c.List(ctx)
	if err != nil {
		return models.Patient{}, err
	}
	for _, p := range patients {
		if p.ID == id {
			c.store(ctx, DetailKey(id), entry{Patient: &p, FetchedAt: c.Now()})
			return p, nil
		}
	}
	return models.Patient{}, ErrNotFound
}

// Write seeds the detail key for a patient without waiting for a refetch,
// used to apply a mutation result optimistically.
func (c *Cache) Write(ctx context.Context, p models.Patient) {
	c.store(ctx, DetailKey(p.ID), entry{Patient: &p, FetchedAt: c.Now()})
}

// Delete removes a patient's detail key outright.
func (c *Cache) Delete(ctx context.Context, id string) {
	if err := c.kv.Delete(ctx, DetailKey(id)); err != nil {
		c.log.Warn("cache delete failed", zap.String("key", DetailKey(id)), zap.Error(err))
	}
	c.notify(Event{Type: EventDelete, Key: DetailKey(id)})
}

// Invalidate marks a key stale so the next read refetches. Invalidating
// the collection-level key cascades to every descendant key: filtered
// lists and per-entity details.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	keys := []string{key}
	if key == ListKey() {
		if all, err := c.kv.Keys(ctx, keyRoot); err == nil {
			keys = all
		} else {
			c.log.Warn("cache key scan failed", zap.Error(err))
		}
	}
	if err := c.kv.Delete(ctx, keys...); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
	c.notify(Event{Type: EventInvalidate, Key: key})
}

// OnCreated applies the cache side of a completed create: the list key is
// invalidated so the next read re-synchronizes.
func (c *Cache) OnCreated(ctx context.Context) {
	c.Invalidate(ctx, ListKey())
}

// OnUpdated applies a completed update: the list hierarchy is invalidated
// and the merged entity is written directly into its detail key.
func (c *Cache) OnUpdated(ctx context.Context, p models.Patient) {
	c.Invalidate(ctx, ListKey())
	c.Write(ctx, p)
}

// OnDeleted applies a completed delete: the list hierarchy is invalidated
// and the detail key is removed.
func (c *Cache) OnDeleted(ctx context.Context, id string) {
	c.Invalidate(ctx, ListKey())
	c.Delete(ctx, id)
}

// Subscribe returns a channel of cache events. Slow subscribers miss
// events rather than blocking mutations.
func (c *Cache) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, ch)
	return ch
}

// ReadOnly returns the read-only projection of this cache.
func (c *Cache) ReadOnly() *View {
	return &View{c: c}
}

func (c *Cache) refetchList(ctx context.Context) ([]models.Patient, error) {
	env, err := c.remote.FetchPatients(ctx)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, fmt.Errorf("fetch patients: %s", remote.ErrorMessage(env, nil))
	}

	patients := c.tr.FromResponse(env.Response)
	c.store(ctx, ListKey(), entry{Patients: patients, FetchedAt: c.Now()})
	c.log.Debug("patient list cached", zap.Int("count", len(patients)))
	return patients, nil
}

// load returns a cached entry if it is present and within the staleness
// window.
func (c *Cache) load(ctx context.Context, key string) (entry, bool) {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if err != ErrCacheMiss {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return entry{}, false
	}
	if c.Now().Sub(e.FetchedAt) > c.staleness {
		return entry{}, false
	}
	return e, true
}

func (c *Cache) store(ctx context.Context, key string, e entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		c.log.Warn("cache entry marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, key, string(raw), c.staleness); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.notify(Event{Type: EventWrite, Key: key})
}

func (c *Cache) notify(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// View is a read-only projection over a Cache for consumers that only
// need the list access pattern and must not trigger mutations.
type View struct {
	c *Cache
}

// List returns the current patient list through the cache's read path.
func (v *View) List(ctx context.Context) ([]models.Patient, error) {
	return v.c.List(ctx)
}

// Get returns one patient by identifier through the cache's read path.
func (v *View) Get(ctx context.Context, id string) (models.Patient, error) {
	return v.c.Get(ctx, id)
}
