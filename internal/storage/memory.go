package storage

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store on process-local maps. It reproduces the
// conditional-write semantics of the real table so service logic can be
// tested without AWS. Also used for local development.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: make(map[string]map[string]Item)}
}

func copyItem(it Item) Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		if s, ok := v.([]string); ok {
			out[k] = append([]string(nil), s...)
			continue
		}
		out[k] = v
	}
	return out
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func valueEqual(a, b any) bool {
	if an, ok := numeric(a); ok {
		if bn, ok := numeric(b); ok {
			return an == bn
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func conditionHolds(existing Item, c Condition) bool {
	if c.IfAbsent && existing != nil {
		return false
	}
	if c.IfExists && existing == nil {
		return false
	}
	for attr, want := range c.AttrEquals {
		if existing == nil || !valueEqual(existing[attr], want) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) get(key Key) Item {
	if p, ok := s.partitions[key.PK]; ok {
		return p[key.SK]
	}
	return nil
}

func (s *MemoryStore) set(key Key, it Item) {
	p, ok := s.partitions[key.PK]
	if !ok {
		p = make(map[string]Item)
		s.partitions[key.PK] = p
	}
	p[key.SK] = it
}

func (s *MemoryStore) Get(_ context.Context, key Key) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyItem(s.get(key)), nil
}

func (s *MemoryStore) Put(_ context.Context, put Put) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyPut(put)
}

func (s *MemoryStore) applyPut(put Put) error {
	key := put.Item.Key()
	if !conditionHolds(s.get(key), put.Cond) {
		return ErrConditionFailed
	}
	s.set(key, copyItem(put.Item))
	return nil
}

func (s *MemoryStore) Update(_ context.Context, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyUpdate(upd)
}

func (s *MemoryStore) applyUpdate(upd Update) error {
	existing := s.get(upd.Key)
	if !conditionHolds(existing, upd.Cond) {
		return ErrConditionFailed
	}
	// UpdateItem upserts when the item is missing.
	it := copyItem(existing)
	if it == nil {
		it = Item{AttrPK: upd.Key.PK, AttrSK: upd.Key.SK}
	}
	for attr, v := range upd.Set {
		it[attr] = v
	}
	s.set(upd.Key, it)
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, inc Increment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyIncrement(inc)
}

func (s *MemoryStore) applyIncrement(inc Increment) error {
	existing := s.get(inc.Key)
	if !conditionHolds(existing, inc.Cond) {
		return ErrConditionFailed
	}
	cur := 0
	if existing != nil {
		cur = existing.Int(inc.Attr)
	}
	if inc.RequirePositive && cur <= 0 {
		return ErrConditionFailed
	}
	it := copyItem(existing)
	if it == nil {
		it = Item{AttrPK: inc.Key.PK, AttrSK: inc.Key.SK}
	}
	it[inc.Attr] = cur + inc.Delta
	s.set(inc.Key, it)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, del Delete) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyDelete(del)
}

func (s *MemoryStore) applyDelete(del Delete) error {
	if !conditionHolds(s.get(del.Key), del.Cond) {
		return ErrConditionFailed
	}
	if p, ok := s.partitions[del.Key.PK]; ok {
		delete(p, del.Key.SK)
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.partitions[q.PK]
	sks := make([]string, 0, len(p))
	for sk := range p {
		if q.SKPrefix == "" || strings.HasPrefix(sk, q.SKPrefix) {
			sks = append(sks, sk)
		}
	}
	sort.Strings(sks)
	if q.Descending {
		for i, j := 0, len(sks)-1; i < j; i, j = i+1, j-1 {
			sks[i], sks[j] = sks[j], sks[i]
		}
	}
	if q.Limit > 0 && len(sks) > q.Limit {
		sks = sks[:q.Limit]
	}
	items := make([]Item, 0, len(sks))
	for _, sk := range sks {
		items = append(items, copyItem(p[sk]))
	}
	return items, nil
}

func (s *MemoryStore) Scan(_ context.Context, sc Scan) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []Item
	for _, p := range s.partitions {
		for sk, it := range p {
			if sc.SKPrefix != "" && !strings.HasPrefix(sk, sc.SKPrefix) {
				continue
			}
			if len(sc.SKIn) > 0 {
				hit := false
				for _, want := range sc.SKIn {
					if sk == want {
						hit = true
						break
					}
				}
				if !hit {
					continue
				}
			}
			match := true
			for attr, want := range sc.AttrEquals {
				if !valueEqual(it[attr], want) {
					match = false
					break
				}
			}
			if match {
				items = append(items, copyItem(it))
			}
		}
	}
	return items, nil
}

func (s *MemoryStore) BatchGet(_ context.Context, keys []Key) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []Item
	for _, key := range keys {
		if it := s.get(key); it != nil {
			items = append(items, copyItem(it))
		}
	}
	return items, nil
}

func (s *MemoryStore) TransactWrite(_ context.Context, items ...TransactItem) error {
	if len(items) > MaxTransactItems {
		return &UnavailableError{Op: "transact_write", Err: fmt.Errorf("group of %d exceeds limit %d", len(items), MaxTransactItems)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Check every condition before applying anything, all or nothing.
	for _, ti := range items {
		switch {
		case ti.Put != nil:
			if !conditionHolds(s.get(ti.Put.Item.Key()), ti.Put.Cond) {
				return ErrConditionFailed
			}
		case ti.Update != nil:
			if !conditionHolds(s.get(ti.Update.Key), ti.Update.Cond) {
				return ErrConditionFailed
			}
		case ti.Increment != nil:
			existing := s.get(ti.Increment.Key)
			if !conditionHolds(existing, ti.Increment.Cond) {
				return ErrConditionFailed
			}
			cur := 0
			if existing != nil {
				cur = existing.Int(ti.Increment.Attr)
			}
			if ti.Increment.RequirePositive && cur <= 0 {
				return ErrConditionFailed
			}
		case ti.Delete != nil:
			if !conditionHolds(s.get(ti.Delete.Key), ti.Delete.Cond) {
				return ErrConditionFailed
			}
		}
	}
	for _, ti := range items {
		switch {
		case ti.Put != nil:
			_ = s.applyPut(*ti.Put)
		case ti.Update != nil:
			_ = s.applyUpdate(*ti.Update)
		case ti.Increment != nil:
			_ = s.applyIncrement(*ti.Increment)
		case ti.Delete != nil:
			_ = s.applyDelete(*ti.Delete)
		}
	}
	return nil
}
