// Package testsupport provides fakes and fixtures for exercising the
// caching layer in tests: a clock-controlled store, a counting data source
// and sample resources.
package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-resource-cache/cache"
	"github.com/goliatone/go-resource-cache/resourcecache"
)

// FakeStore is an in-memory cache.Store with per-entry TTLs driven by a
// manual clock, plus failure injection for degradation tests. Safe for
// concurrent use.
type FakeStore struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     time.Time
	failErr error
	calls   map[string]int
}

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewFakeStore creates an empty store with the clock at a fixed epoch.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries: make(map[string]fakeEntry),
		now:     time.Unix(1_700_000_000, 0),
		calls:   make(map[string]int),
	}
}

// Advance moves the manual clock forward, expiring entries whose TTL has
// elapsed.
func (s *FakeStore) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

// FailWith makes every subsequent operation return err. Pass nil to heal.
func (s *FakeStore) FailWith(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

// Calls returns how many times the named operation ran.
func (s *FakeStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Keys returns the currently live keys, sorted.
func (s *FakeStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for key, entry := range s.entries {
		if entry.expiresAt.After(s.now) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *FakeStore) live(key string) ([]byte, bool) {
	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(s.now) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Has implements cache.Store.
func (s *FakeStore) Has(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["has"]++
	if s.failErr != nil {
		return false, s.failErr
	}
	_, ok := s.live(key)
	return ok, nil
}

// Get implements cache.Store.
func (s *FakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get"]++
	if s.failErr != nil {
		return nil, s.failErr
	}
	value, ok := s.live(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

// GetMany implements cache.Store.
func (s *FakeStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["getmany"]++
	if s.failErr != nil {
		return nil, s.failErr
	}
	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.live(key); ok {
			found[key] = value
		}
	}
	return found, nil
}

// Set implements cache.Store.
func (s *FakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["set"]++
	if s.failErr != nil {
		return s.failErr
	}
	s.put(key, value, ttl)
	return nil
}

// SetMany implements cache.Store.
func (s *FakeStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["setmany"]++
	if s.failErr != nil {
		return s.failErr
	}
	for key, value := range entries {
		s.put(key, value, ttl)
	}
	return nil
}

// Delete implements cache.Store.
func (s *FakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["delete"]++
	if s.failErr != nil {
		return s.failErr
	}
	delete(s.entries, key)
	return nil
}

func (s *FakeStore) put(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	s.entries[key] = fakeEntry{value: value, expiresAt: s.now.Add(ttl)}
}

var _ cache.Store = (*FakeStore)(nil)

// Widget is the fixture resource used across the test suites.
type Widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// NewWidgets builds n widgets with generated ids, alternating tiers.
func NewWidgets(n int) []Widget {
	widgets := make([]Widget, n)
	tiers := []string{"free", "gold"}
	for i := range widgets {
		widgets[i] = Widget{
			ID:   uuid.NewString(),
			Name: fmt.Sprintf("widget-%d", i+1),
			Tier: tiers[i%len(tiers)],
		}
	}
	return widgets
}

// WidgetSource is an in-memory DataSource[Widget] that preserves insertion
// order and counts method calls so tests can assert which operations hit
// the source of truth.
type WidgetSource struct {
	mu      sync.Mutex
	order   []string
	records map[string]Widget
	calls   map[string]int
}

// NewWidgetSource seeds a source with the given widgets.
func NewWidgetSource(widgets ...Widget) *WidgetSource {
	s := &WidgetSource{
		records: make(map[string]Widget, len(widgets)),
		calls:   make(map[string]int),
	}
	for _, w := range widgets {
		s.order = append(s.order, w.ID)
		s.records[w.ID] = w
	}
	return s
}

// Calls returns how many times the named method ran.
func (s *WidgetSource) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// FetchOne implements resourcecache.DataSource.
func (s *WidgetSource) FetchOne(ctx context.Context, id string) (Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FetchOne"]++
	w, ok := s.records[id]
	if !ok {
		return Widget{}, fmt.Errorf("%w: %s", resourcecache.ErrNotFound, id)
	}
	return w, nil
}

// FetchMany implements resourcecache.DataSource. The tier parameter filters;
// limit/offset page the ordered set.
func (s *WidgetSource) FetchMany(ctx context.Context, q resourcecache.Query) ([]Widget, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FetchMany"]++

	matched := s.matching(q)
	total := len(matched)

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	return matched, total, nil
}

// Count implements resourcecache.DataSource.
func (s *WidgetSource) Count(ctx context.Context, q resourcecache.Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Count"]++
	return len(s.matching(q)), nil
}

// Insert implements resourcecache.DataSource, generating an id when the
// input carries none.
func (s *WidgetSource) Insert(ctx context.Context, data resourcecache.Representation) (Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Insert"]++

	w := widgetFrom(data)
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.order = append(s.order, w.ID)
	s.records[w.ID] = w
	return w, nil
}

// Update implements resourcecache.DataSource.
func (s *WidgetSource) Update(ctx context.Context, id string, data resourcecache.Representation) (Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Update"]++

	if _, ok := s.records[id]; !ok {
		return Widget{}, fmt.Errorf("%w: %s", resourcecache.ErrNotFound, id)
	}
	w := widgetFrom(data)
	w.ID = id
	s.records[id] = w
	return w, nil
}

// Remove implements resourcecache.DataSource.
func (s *WidgetSource) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Remove"]++

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", resourcecache.ErrNotFound, id)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *WidgetSource) matching(q resourcecache.Query) []Widget {
	tier := ""
	if q.Params != nil {
		tier = q.Params.Get("tier")
	}

	var matched []Widget
	for _, id := range s.order {
		w := s.records[id]
		if tier != "" && w.Tier != tier {
			continue
		}
		matched = append(matched, w)
	}
	return matched
}

func widgetFrom(data resourcecache.Representation) Widget {
	w := Widget{}
	if v, ok := data["id"].(string); ok {
		w.ID = v
	}
	if v, ok := data["name"].(string); ok {
		w.Name = v
	}
	if v, ok := data["tier"].(string); ok {
		w.Tier = v
	}
	return w
}

var _ resourcecache.DataSource[Widget] = (*WidgetSource)(nil)
