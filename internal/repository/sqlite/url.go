package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/model"
	"github.com/yutosuda/url-shortener/internal/repository"
	"github.com/yutosuda/url-shortener/internal/shortcode"
)

// Compile-time check that *DB implements repository.URLRepository.
// `var _ X = (*Y)(nil)` fails the build immediately if a method is missing,
// instead of at the first call site that needs the interface.
var _ repository.URLRepository = (*DB)(nil)

// maxAllocAttempts bounds the allocate-and-insert retry loop. Ten misses in
// a row against a 62^8 code space means something other than luck is wrong,
// and an unbounded loop would spin forever under that kind of fault.
const maxAllocAttempts = 10

// Create allocates a unique short code and inserts the URL row.
//
// ALLOCATION AND INSERTION ARE ONE OPERATION:
// Checking "is this code free?" and then inserting in two steps would race
// against a concurrent create drawing the same code. So the INSERT itself
// is the uniqueness check — the UNIQUE index on short_code is the
// authoritative guard. A constraint violation means "someone got that code
// first": we redraw and try again rather than surfacing the conflict.
//
// The cheap SELECT pre-check before each INSERT only exists to skip the
// doomed insert in the (vanishingly rare) case the collision is visible;
// correctness never depends on it.
func (db *DB) Create(ctx context.Context, u *model.ShortURL) error {
	now := time.Now().UTC()

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		code, err := db.codes.Code()
		if err != nil {
			return fmt.Errorf("sqlite: generating short code: %w", err)
		}

		var exists int
		err = db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM urls WHERE short_code = ?`, code,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("sqlite: checking short code %s: %w", code, err)
		}
		if exists > 0 {
			continue
		}

		res, err := db.conn.ExecContext(ctx,
			`INSERT INTO urls (original_url, short_code, click_count, created_at)
			 VALUES (?, ?, 0, ?)`,
			u.OriginalURL, code, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// Lost the race for this code — redraw.
				continue
			}
			return fmt.Errorf("sqlite: creating URL: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new URL id: %w", err)
		}

		u.ID = id
		u.ShortCode = code
		u.ClickCount = 0
		u.CreatedAt = now
		return nil
	}

	return fmt.Errorf("sqlite: allocating short code after %d attempts: %w",
		maxAllocAttempts, shortcode.ErrCodeSpaceExhausted)
}

// GetByCode retrieves a URL by its short code.
//
// sql.ErrNoRows is not really an error — it means "no matching row". We
// translate it to the app's NotFound error so the handler returns 404.
func (db *DB) GetByCode(ctx context.Context, code string) (*model.ShortURL, error) {
	return db.getURL(ctx,
		`SELECT id, original_url, short_code, click_count, created_at
		 FROM urls WHERE short_code = ?`,
		code, apperror.NotFoundByKey("short URL", code))
}

// GetByID retrieves a URL by its numeric id.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.ShortURL, error) {
	return db.getURL(ctx,
		`SELECT id, original_url, short_code, click_count, created_at
		 FROM urls WHERE id = ?`,
		id, apperror.NotFound("short URL", id))
}

func (db *DB) getURL(ctx context.Context, query string, arg any, notFound error) (*model.ShortURL, error) {
	var u model.ShortURL
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.OriginalURL, &u.ShortCode, &u.ClickCount, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound
		}
		return nil, fmt.Errorf("sqlite: getting URL: %w", err)
	}
	return &u, nil
}

// List retrieves a page of URLs ordered newest-first, plus the total count.
//
// The id DESC tiebreak makes the order fully deterministic: CURRENT_TIMESTAMP
// has second resolution, so two URLs created in the same second would
// otherwise come back in an arbitrary order.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.ShortURL, int64, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // never fetch the whole table, whatever the caller asked
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting URLs: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, original_url, short_code, click_count, created_at
		 FROM urls
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing URLs: %w", err)
	}
	defer rows.Close()

	urls, err := scanURLs(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return urls, total, nil
}

// Delete removes a URL and all of its clicks as one atomic unit.
//
// EXPLICIT TWO-STEP CASCADE:
// Children first, then the parent, inside a single transaction. Either both
// deletions commit or neither does — a crash mid-delete can't leave
// orphaned click rows or a URL whose history half-vanished.
//
// Returns (false, nil) when the id doesn't exist: "already gone" is an
// outcome for the caller to map (the handler turns it into 404), not a
// storage failure.
func (db *DB) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE url_id = ?`, id); err != nil {
		return false, fmt.Errorf("sqlite: deleting clicks for URL %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM urls WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting URL %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing delete of URL %d: %w", id, err)
	}
	return affected > 0, nil
}

// Top returns the n most-clicked URLs.
// Ties break on id ascending so the result is stable across calls — the
// stats endpoint and its tests rely on that determinism.
func (db *DB) Top(ctx context.Context, n int) ([]model.ShortURL, error) {
	if n <= 0 {
		n = 5
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, original_url, short_code, click_count, created_at
		 FROM urls
		 ORDER BY click_count DESC, id ASC
		 LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying top URLs: %w", err)
	}
	defer rows.Close()

	return scanURLs(rows, n)
}

func scanURLs(rows *sql.Rows, capacity int) ([]model.ShortURL, error) {
	urls := make([]model.ShortURL, 0, capacity)
	for rows.Next() {
		var u model.ShortURL
		if err := rows.Scan(&u.ID, &u.OriginalURL, &u.ShortCode, &u.ClickCount, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning URL row: %w", err)
		}
		urls = append(urls, u)
	}
	// rows.Err catches failures that happened during iteration, e.g. the
	// connection dropping between Next calls.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating URLs: %w", err)
	}
	return urls, nil
}
