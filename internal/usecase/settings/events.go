package settings

import (
	"slices"
	"sync"
)

// ChangeEvent is published after every successful write.
// Silent marks programmatic writes that must never trigger a reload.
type ChangeEvent struct {
	Key    Key
	Silent bool
}

// Listener receives change events synchronously, after the write has been
// persisted.
type Listener func(ChangeEvent)

// DefaultExcludedKeys returns the keys whose changes never trigger a reload:
// derived page state and bookkeeping values.
func DefaultExcludedKeys() []Key {
	return []Key{KeyEndIndex, KeyResetSettings, KeyLastDisplayedPage, KeyLastSearchQuery}
}

// ExclusionSet is a mutable set of keys whose external change events are
// ignored by a ReloadFilter. Callers that need a silent write through the
// user path Exclude the key, write, then Include it again, in that order.
// Code that owns its writes should use Store.SetSilently instead.
type ExclusionSet struct {
	mu   sync.RWMutex
	keys map[Key]struct{}
}

// NewExclusionSet creates a set holding the given keys.
func NewExclusionSet(keys ...Key) *ExclusionSet {
	s := &ExclusionSet{keys: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Exclude adds key to the set.
func (s *ExclusionSet) Exclude(key Key) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

// Include removes key from the set.
func (s *ExclusionSet) Include(key Key) {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
}

// Contains reports whether key is excluded.
func (s *ExclusionSet) Contains(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Keys returns the excluded keys sorted by name.
func (s *ExclusionSet) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// ReloadFilter decides whether a change event should reload the results.
type ReloadFilter struct {
	excluded *ExclusionSet
}

// NewReloadFilter creates a filter backed by the given exclusion set.
// A nil set uses DefaultExcludedKeys.
func NewReloadFilter(excluded *ExclusionSet) *ReloadFilter {
	if excluded == nil {
		excluded = NewExclusionSet(DefaultExcludedKeys()...)
	}
	return &ReloadFilter{excluded: excluded}
}

// ShouldReload returns false for silent events and for excluded keys.
func (f *ReloadFilter) ShouldReload(ev ChangeEvent) bool {
	if ev.Silent {
		return false
	}
	return !f.excluded.Contains(ev.Key)
}

// Exclusions returns the set consulted by the filter.
func (f *ReloadFilter) Exclusions() *ExclusionSet {
	return f.excluded
}
