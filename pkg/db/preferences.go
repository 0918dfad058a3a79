package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/ratio"
)

var _ ratio.Store = (*DB)(nil)

// Load reads a user's cached preferences. It returns ratio.ErrNotFound when
// none are stored.
func (db *DB) Load(ctx context.Context, userID string) (models.RatioPreferences, error) {
	var (
		p       models.RatioPreferences
		updated int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT user_id, local, topical, topic, updated_at
		FROM preferences WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.Local, &p.Topical, &p.Topic, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RatioPreferences{}, ratio.ErrNotFound
	}
	if err != nil {
		return models.RatioPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// Save upserts a user's preferences. The last write wins.
func (db *DB) Save(ctx context.Context, p models.RatioPreferences) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, local, topical, topic, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			local = excluded.local,
			topical = excluded.topical,
			topic = excluded.topic,
			updated_at = excluded.updated_at
	`, p.UserID, p.Local, p.Topical, p.Topic, toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
