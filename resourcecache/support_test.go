package resourcecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-resource-cache/cache"
)

// TestUser is the entity cached throughout the package tests.
type TestUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier"`
}

// memStore is a deterministic in-memory store with failure injection and
// manual expiry, so tests can drive TTL races without a clock.
type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	failErr error
	ops     map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string][]byte),
		ops:     make(map[string]int),
	}
}

func (m *memStore) failWith(err error) {
	m.mu.Lock()
	m.failErr = err
	m.mu.Unlock()
}

// expire simulates TTL expiry of a single key.
func (m *memStore) expire(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *memStore) opCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[op]
}

func (m *memStore) keyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memStore) hasKey(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memStore) Has(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["has"]++
	if m.failErr != nil {
		return false, m.failErr
	}
	_, ok := m.entries[key]
	return ok, nil
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["get"]++
	if m.failErr != nil {
		return nil, m.failErr
	}
	value, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

func (m *memStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["getmany"]++
	if m.failErr != nil {
		return nil, m.failErr
	}
	found := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := m.entries[key]; ok {
			found[key] = value
		}
	}
	return found, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["set"]++
	if m.failErr != nil {
		return m.failErr
	}
	m.entries[key] = value
	return nil
}

func (m *memStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["setmany"]++
	if m.failErr != nil {
		return m.failErr
	}
	for key, value := range entries {
		m.entries[key] = value
	}
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops["delete"]++
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.entries, key)
	return nil
}

// userSource is a counting in-memory DataSource[TestUser]. The "tier" query
// parameter filters; limit/offset page the insertion-ordered set.
type userSource struct {
	mu      sync.Mutex
	order   []string
	records map[string]TestUser
	calls   map[string]int
	failErr error
}

func newUserSource(users ...TestUser) *userSource {
	s := &userSource{
		records: make(map[string]TestUser, len(users)),
		calls:   make(map[string]int),
	}
	for _, u := range users {
		s.order = append(s.order, u.ID)
		s.records[u.ID] = u
	}
	return s
}

func (s *userSource) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *userSource) setUser(u TestUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[u.ID]; !ok {
		s.order = append(s.order, u.ID)
	}
	s.records[u.ID] = u
}

func (s *userSource) FetchOne(ctx context.Context, id string) (TestUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FetchOne"]++
	if s.failErr != nil {
		return TestUser{}, s.failErr
	}
	u, ok := s.records[id]
	if !ok {
		return TestUser{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u, nil
}

func (s *userSource) FetchMany(ctx context.Context, q Query) ([]TestUser, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FetchMany"]++
	if s.failErr != nil {
		return nil, 0, s.failErr
	}

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

func (s *userSource) Count(ctx context.Context, q Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Count"]++
	return len(s.matching(q)), nil
}

func (s *userSource) Insert(ctx context.Context, data Representation) (TestUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Insert"]++
	if s.failErr != nil {
		return TestUser{}, s.failErr
	}

	u := userFrom(data)
	if u.ID == "" {
		u.ID = fmt.Sprintf("gen-%d", len(s.order)+1)
	}
	s.order = append(s.order, u.ID)
	s.records[u.ID] = u
	return u, nil
}

func (s *userSource) Update(ctx context.Context, id string, data Representation) (TestUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Update"]++
	if _, ok := s.records[id]; !ok {
		return TestUser{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	u := userFrom(data)
	u.ID = id
	s.records[id] = u
	return u, nil
}

func (s *userSource) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Remove"]++
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
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

func (s *userSource) matching(q Query) []TestUser {
	tier := ""
	if q.Params != nil {
		tier = q.Params.Get("tier")
	}

	var matched []TestUser
	for _, id := range s.order {
		u := s.records[id]
		if tier != "" && u.Tier != tier {
			continue
		}
		matched = append(matched, u)
	}
	return matched
}

func userFrom(data Representation) TestUser {
	u := TestUser{}
	if v, ok := data["id"].(string); ok {
		u.ID = v
	}
	if v, ok := data["name"].(string); ok {
		u.Name = v
	}
	if v, ok := data["tier"].(string); ok {
		u.Tier = v
	}
	return u
}
