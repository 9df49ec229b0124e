package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"books-search/internal/observability/metrics"
	"books-search/internal/repository"
)

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) repository.SettingsRepository {
	return &SettingsRepo{db: db}
}

func (repo *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	defer metrics.TimeDBQuery("get")()
	const query = `
SELECT value
FROM settings
WHERE key = $1
LIMIT 1`
	var value string
	err := repo.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return value, true, nil
}

func (repo *SettingsRepo) List(ctx context.Context) (map[string]string, error) {
	defer metrics.TimeDBQuery("list")()
	const query = `
SELECT key, value
FROM settings
ORDER BY key ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string, 16)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return values, nil
}

func (repo *SettingsRepo) PutAll(ctx context.Context, values map[string]string) error {
	defer metrics.TimeDBQuery("put_all")()
	const query = `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if len(values) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("PutAll: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key, values[key], now); err != nil {
			return fmt.Errorf("PutAll: ExecContext %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("PutAll: Commit: %w", err)
	}
	return nil
}

func (repo *SettingsRepo) DeleteAll(ctx context.Context) error {
	defer metrics.TimeDBQuery("delete_all")()
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("DeleteAll: ExecContext: %w", err)
	}
	return nil
}
