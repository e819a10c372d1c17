// Package store persists donation records in a single-file SQLite database.
//
// Every operation is a single atomic statement, so ingestion and moderation
// can run concurrently without explicit locking: InsertIfAbsent is
// first-write-wins and the flag setters are independent atomic updates.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/extra-life-tools/donation-queue/internal/core"
)

// Store wraps the SQLite connection holding the donations table.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database at the given path and ensures the
// schema exists. WAL mode keeps readers from blocking the poller's writes.
func New(dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		recipient TEXT NOT NULL,
		amount REAL NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		approved INTEGER NOT NULL DEFAULT 0,
		denied INTEGER NOT NULL DEFAULT 0,
		shown INTEGER NOT NULL DEFAULT 0,
		approved_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_donations_flags ON donations(approved, denied, shown);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// InsertIfAbsent inserts the record unless its id already exists.
// The insert is first-write-wins: re-fetching the same donation never
// overwrites stored fields. Returns true when a row was actually inserted.
func (s *Store) InsertIfAbsent(ctx context.Context, rec core.DonationRecord) (bool, error) {
	result, err := s.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO donations (id, name, recipient, amount, message, avatar)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Recipient, rec.Amount, rec.Message, rec.Avatar,
	)
	if err != nil {
		return false, &core.StorageError{Op: "insert donation", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, &core.StorageError{Op: "insert donation", Err: err}
	}
	return rows > 0, nil
}

// Get retrieves a donation by id. Returns core.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (*core.DonationRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, recipient, amount, message, avatar, approved, denied, shown, approved_at
		 FROM donations WHERE id = ?`, id,
	)

	rec, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, &core.StorageError{Op: "get donation", Err: err}
	}
	return rec, nil
}

// QueryByFlags returns all donations whose moderation flags match q exactly.
// No ordering or pagination is guaranteed.
func (s *Store) QueryByFlags(ctx context.Context, q core.FlagQuery) ([]core.DonationRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, recipient, amount, message, avatar, approved, denied, shown, approved_at
		 FROM donations WHERE approved = ? AND denied = ? AND shown = ?`,
		q.Approved, q.Denied, q.Shown,
	)
	if err != nil {
		return nil, &core.StorageError{Op: "query donations", Err: err}
	}
	defer rows.Close()

	var recs []core.DonationRecord
	for rows.Next() {
		rec, err := scanDonation(rows)
		if err != nil {
			return nil, &core.StorageError{Op: "query donations", Err: err}
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "query donations", Err: err}
	}

	return recs, nil
}

// SetApproved marks a donation approved, clears any prior denial and stamps
// the approval time. Returns core.ErrNotFound for unknown ids.
func (s *Store) SetApproved(ctx context.Context, id string, at time.Time) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET approved = 1, denied = 0, approved_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id,
	)
	return s.checkMutation(result, err, "approve donation")
}

// SetDenied marks a donation denied and clears any prior approval. Already
// exported lines are never retracted; the export file is append-only.
func (s *Store) SetDenied(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET denied = 1, approved = 0 WHERE id = ?`, id,
	)
	return s.checkMutation(result, err, "deny donation")
}

// SetShown marks an approved donation as shown. Returns core.ErrNotApproved
// when the record exists but has not been approved, core.ErrNotFound when it
// does not exist at all.
func (s *Store) SetShown(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET shown = 1 WHERE id = ? AND approved = 1`, id,
	)
	if err != nil {
		return &core.StorageError{Op: "mark donation shown", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &core.StorageError{Op: "mark donation shown", Err: err}
	}
	if rows > 0 {
		return nil
	}

	// Distinguish a missing record from an unapproved one.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return core.ErrNotApproved
}

// ClearAll wipes every donation record. Administrative full reset.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM donations`); err != nil {
		return &core.StorageError{Op: "clear donations", Err: err}
	}
	return nil
}

// DeleteByIDPrefix removes all donations whose id starts with prefix and
// returns the number deleted. Used to purge synthetic test records.
func (s *Store) DeleteByIDPrefix(ctx context.Context, prefix string) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM donations WHERE id LIKE ? ESCAPE '\'`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return 0, &core.StorageError{Op: "purge donations", Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, &core.StorageError{Op: "purge donations", Err: err}
	}
	return rows, nil
}

// Count returns the total number of stored donations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM donations`).Scan(&n); err != nil {
		return 0, &core.StorageError{Op: "count donations", Err: err}
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// checkMutation converts a single-row UPDATE result into the store's error
// contract: zero rows affected means the id does not exist.
func (s *Store) checkMutation(result sql.Result, err error, op string) error {
	if err != nil {
		return &core.StorageError{Op: op, Err: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &core.StorageError{Op: op, Err: err}
	}
	if rows == 0 {
		return core.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(row scanner) (*core.DonationRecord, error) {
	var rec core.DonationRecord
	var approvedAt sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Recipient, &rec.Amount, &rec.Message, &rec.Avatar,
		&rec.Approved, &rec.Denied, &rec.Shown, &approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid && approvedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, approvedAt.String); err == nil {
			rec.ApprovedAt = &t
		}
	}

	return &rec, nil
}

// escapeLike escapes SQL LIKE wildcards so a prefix is matched literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
