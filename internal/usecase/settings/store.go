package settings

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"books-search/internal/common/pagination"
	"books-search/internal/domain/entity"
	"books-search/internal/repository"
)

// Entry is one key/value pair written by SetSilently.
type Entry struct {
	Key   Key
	Value string
}

// IntEntry builds an Entry holding an integer value.
func IntEntry(key Key, value int) Entry {
	return Entry{Key: key, Value: strconv.Itoa(value)}
}

// Store is the settings surface used by the pagination controller and the
// outer API. Reads fall back to defaults for absent or invalid values.
// Writes are validated, persisted, and then published to subscribers.
type Store struct {
	repo   repository.SettingsRepository
	logger *slog.Logger

	writeMu sync.Mutex // serializes repository writes

	mu        sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore creates a Store over the given repository.
func NewStore(repo repository.SettingsRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:      repo,
		logger:    logger,
		listeners: make(map[uint64]Listener),
	}
}

// String returns the value of key, or its default when absent or invalid.
func (s *Store) String(ctx context.Context, key Key) (string, error) {
	def, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	raw, found, err := s.repo.Get(ctx, string(key))
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return s.resolve(key, def, raw, found), nil
}

// Int returns the integer value of key. Non-integer keys are rejected.
func (s *Store) Int(ctx context.Context, key Key) (int, error) {
	def, ok := lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if def.kind != kindInt {
		return 0, &entity.ValidationError{Field: string(key), Message: "is not an integer setting"}
	}
	v, err := s.String(ctx, key)
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(v)
	return n, nil
}

// resolve applies the default and validity rules to a stored value.
func (s *Store) resolve(key Key, def definition, raw string, found bool) string {
	if !found {
		return def.def
	}
	if err := def.validate(raw); err != nil {
		s.logger.Warn("invalid stored setting, using default",
			slog.String("key", string(key)),
			slog.String("value", raw),
			slog.String("default", def.def),
			slog.Any("error", err))
		return def.def
	}
	return raw
}

// Snapshot returns every key with its effective value.
func (s *Store) Snapshot(ctx context.Context) (map[Key]string, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[Key]string, len(definitions))
	for _, d := range definitions {
		raw, found := stored[string(d.key)]
		out[d.key] = s.resolve(d.key, d.definition, raw, found)
	}
	return out, nil
}

// PaginationState loads the persisted page state, normalized.
func (s *Store) PaginationState(ctx context.Context) (pagination.State, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return pagination.State{}, err
	}
	atoi := func(k Key) int {
		n, _ := strconv.Atoi(snap[k])
		return n
	}
	return pagination.State{
		Current:    atoi(KeyStartIndex),
		Highest:    atoi(KeyEndIndex),
		LastViewed: atoi(KeyLastDisplayedPage),
		PageSize:   atoi(KeyMaxResults),
	}.Normalize(), nil
}

// Set performs a user-originated write and publishes a non-silent event.
// Returns a ValidationError when the value is not acceptable for key.
func (s *Store) Set(ctx context.Context, key Key, value string) error {
	return s.write(ctx, false, Entry{Key: key, Value: value})
}

// SetSilently writes all entries in one transaction and publishes a silent
// event per entry. Used for the controller's own state updates.
func (s *Store) SetSilently(ctx context.Context, entries ...Entry) error {
	return s.write(ctx, true, entries...)
}

func (s *Store) write(ctx context.Context, silent bool, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		def, ok := lookup(e.Key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, e.Key)
		}
		if err := def.validate(e.Value); err != nil {
			return &entity.ValidationError{Field: string(e.Key), Message: err.Error()}
		}
		values[string(e.Key)] = e.Value
	}

	s.writeMu.Lock()
	err := s.repo.PutAll(ctx, values)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	for _, e := range entries {
		s.publish(ChangeEvent{Key: e.Key, Silent: silent})
	}
	return nil
}

// Seed silently writes the entries whose keys have never been stored.
// Used to apply configured defaults at startup without overriding user
// choices. Every entry is validated, even when it is not written.
func (s *Store) Seed(ctx context.Context, entries ...Entry) error {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}
	var missing []Entry
	for _, e := range entries {
		def, ok := lookup(e.Key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, e.Key)
		}
		if err := def.validate(e.Value); err != nil {
			return &entity.ValidationError{Field: string(e.Key), Message: err.Error()}
		}
		if _, found := stored[string(e.Key)]; !found {
			missing = append(missing, e)
		}
	}
	return s.write(ctx, true, missing...)
}

// Reset returns every key to its default and publishes a resetSettings event.
func (s *Store) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	err := s.repo.DeleteAll(ctx)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	s.logger.Info("settings reset to defaults")
	s.publish(ChangeEvent{Key: KeyResetSettings})
	return nil
}

// Subscribe registers fn for change events and returns a function that
// removes it. Listeners run synchronously on the writing goroutine, after
// the write has been committed.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) publish(ev ChangeEvent) {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	// 登録順に通知する
	slices.Sort(ids)
	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.listeners[id]
		s.mu.Unlock()
		if ok {
			fn(ev)
		}
	}
}

// QueryParams returns the catalog filter parameters derived from the current
// settings. startIndex is converted to a 0-based item offset, filter=none and
// an empty langRestrict are omitted, and excluded keys are skipped.
func (s *Store) QueryParams(ctx context.Context) (url.Values, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	excluded := NewExclusionSet(DefaultExcludedKeys()...)

	params := url.Values{}
	for _, d := range definitions {
		if excluded.Contains(d.key) {
			continue
		}
		v := snap[d.key]
		switch d.key {
		case KeyStartIndex:
			page, _ := strconv.Atoi(v)
			size, _ := strconv.Atoi(snap[KeyMaxResults])
			params.Set(string(d.key), strconv.Itoa(pagination.CalculateOffset(page, size)))
		case KeyFilter:
			if v != FilterNone {
				params.Set(string(d.key), v)
			}
		default:
			if v != "" {
				params.Set(string(d.key), v)
			}
		}
	}
	return params, nil
}
