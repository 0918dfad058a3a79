package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/localfeed/models"
)

// ItemQuery filters GetItems. Zero values mean no filter.
type ItemQuery struct {
	Since    time.Time
	Region   string
	Category string
	Language string
	Search   string
	Limit    int
}

const defaultItemLimit = 500

// UpsertItems inserts items, replacing the content and tags of existing ids.
func (db *DB) UpsertItems(items []models.ContentItem) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO items (id, url, title, excerpt, body, category, language,
			region, subregion, locality, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			body = excluded.body,
			category = excluded.category,
			language = excluded.language,
			region = excluded.region,
			subregion = excluded.subregion,
			locality = excluded.locality,
			published_at = excluded.published_at,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item upsert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("item %q has no id", it.URL)
		}
		_, err := stmt.Exec(it.ID, it.URL, it.Title, it.Excerpt, it.Body, it.Category, it.Language,
			it.Region, it.SubRegion, it.Locality, toMillis(it.PublishedAt), toMillis(it.FetchedAt))
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// GetItems returns items matching q, newest first.
func (db *DB) GetItems(q ItemQuery) ([]models.ContentItem, error) {
	var (
		where []string
		args  []any
	)

	if !q.Since.IsZero() {
		where = append(where, "published_at >= ?")
		args = append(args, toMillis(q.Since))
	}
	if q.Region != "" {
		where = append(where, "region = ? COLLATE NOCASE")
		args = append(args, q.Region)
	}
	if q.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, q.Category)
	}
	if q.Language != "" {
		where = append(where, "language = ?")
		args = append(args, q.Language)
	}
	if q.Search != "" {
		where = append(where, "(title LIKE ? OR excerpt LIKE ? OR body LIKE ?)")
		term := "%" + q.Search + "%"
		args = append(args, term, term, term)
	}

	query := `SELECT id, url, title, excerpt, body, category, language,
		region, subregion, locality, published_at, fetched_at FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published_at DESC, id ASC LIMIT ?"

	limit := q.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		var (
			it                   models.ContentItem
			published, fetchedAt int64
		)
		if err := rows.Scan(&it.ID, &it.URL, &it.Title, &it.Excerpt, &it.Body, &it.Category, &it.Language,
			&it.Region, &it.SubRegion, &it.Locality, &published, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.PublishedAt = fromMillis(published)
		it.FetchedAt = fromMillis(fetchedAt)
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountItems returns the number of stored items.
func (db *DB) CountItems() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// CountByRegion returns item counts keyed by region tag. Untagged items are
// counted under "".
func (db *DB) CountByRegion() (map[string]int, error) {
	rows, err := db.Query("SELECT region, COUNT(*) FROM items GROUP BY region")
	if err != nil {
		return nil, fmt.Errorf("failed to count items by region: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			region string
			n      int
		)
		if err := rows.Scan(&region, &n); err != nil {
			return nil, fmt.Errorf("failed to scan region count: %w", err)
		}
		counts[region] = n
	}
	return counts, rows.Err()
}

// PruneItems deletes items published before now minus olderThan.
func (db *DB) PruneItems(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := db.Exec("DELETE FROM items WHERE published_at < ?", toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune items: %w", err)
	}
	return res.RowsAffected()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
