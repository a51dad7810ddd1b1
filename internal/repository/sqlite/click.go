package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/yutosuda/url-shortener/internal/model"
	"github.com/yutosuda/url-shortener/internal/repository"
)

var _ repository.ClickRepository = (*DB)(nil)

// Record inserts a click row and increments the parent URL's counter.
//
// ONE TRANSACTION, TWO EFFECTS:
// click_count must equal the number of click rows once in-flight recordings
// settle. Doing the INSERT and the UPDATE in separate statements outside a
// transaction would let a crash between them break that invariant
// permanently. Inside one transaction it's all-or-nothing: either the click
// exists and was counted, or neither happened and the caller logs a
// recoverable failure.
//
// The increment is relative (click_count = click_count + 1), not
// read-modify-write, so concurrent redirects can never overwrite each
// other's counts.
func (db *DB) Record(ctx context.Context, c *model.Click) error {
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning click transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO clicks (url_id, clicked_at, user_agent, ip_address, referrer)
		 VALUES (?, ?, ?, ?, ?)`,
		c.URLID, c.ClickedAt, c.UserAgent, c.IPAddress, c.Referrer,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting click for URL %d: %w", c.URLID, err)
	}

	upd, err := tx.ExecContext(ctx,
		`UPDATE urls SET click_count = click_count + 1 WHERE id = ?`, c.URLID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing click count for URL %d: %w", c.URLID, err)
	}
	affected, err := upd.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking click count update: %w", err)
	}
	if affected == 0 {
		// URL vanished between lookup and recording (concurrent delete).
		// Rolling back also discards the inserted click row.
		return fmt.Errorf("sqlite: URL %d no longer exists", c.URLID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing click for URL %d: %w", c.URLID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new click id: %w", err)
	}
	c.ID = id
	return nil
}

// ListByURL returns the click history for one URL, most recent first.
func (db *DB) ListByURL(ctx context.Context, urlID int64, opts repository.ListOptions) ([]model.Click, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, url_id, clicked_at, user_agent, ip_address, referrer
		 FROM clicks
		 WHERE url_id = ?
		 ORDER BY clicked_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		urlID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing clicks for URL %d: %w", urlID, err)
	}
	defer rows.Close()

	clicks := make([]model.Click, 0, limit)
	for rows.Next() {
		var c model.Click
		if err := rows.Scan(&c.ID, &c.URLID, &c.ClickedAt, &c.UserAgent, &c.IPAddress, &c.Referrer); err != nil {
			return nil, fmt.Errorf("sqlite: scanning click row: %w", err)
		}
		clicks = append(clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating clicks: %w", err)
	}
	return clicks, nil
}

// CountAll returns the total number of recorded clicks across all URLs.
func (db *DB) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM clicks`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sqlite: counting clicks: %w", err)
	}
	return total, nil
}
