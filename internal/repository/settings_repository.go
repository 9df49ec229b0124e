package repository

import "context"

// SettingsRepository persists the key/value settings of a browsing session.
// Absent keys are reported with found=false; callers apply defaults.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	List(ctx context.Context) (map[string]string, error)
	// PutAll writes every pair atomically.
	PutAll(ctx context.Context, values map[string]string) error
	DeleteAll(ctx context.Context) error
}
