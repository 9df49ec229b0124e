// Package memory holds in-process repository implementations for ephemeral
// sessions and tests.
package memory

import (
	"context"
	"sync"

	"books-search/internal/repository"
)

// SettingsRepo keeps settings in a map guarded by a mutex.
type SettingsRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{values: make(map[string]string)}
}

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

func (r *SettingsRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *SettingsRepo) List(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

func (r *SettingsRepo) PutAll(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *SettingsRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string]string)
	return nil
}
