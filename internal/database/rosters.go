package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRosterNotFound is returned when a code is unknown or its roster expired.
var ErrRosterNotFound = errors.New("roster not found")

// ErrCodeTaken is returned when saving under a code that is already stored.
var ErrCodeTaken = errors.New("roster code already in use")

// StoredRoster is one formatted roster document awaiting pickup.
type StoredRoster struct {
	Code      string
	Edition   string
	Document  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SaveRoster stores document under code until expiresAt.
func (d *Database) SaveRoster(code, edition, document string, expiresAt time.Time) error {
	return d.insert(StoredRoster{
		Code:      code,
		Edition:   edition,
		Document:  document,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
}

// ImportRoster stores r as is, keeping its timestamps.
func (d *Database) ImportRoster(r StoredRoster) error {
	return d.insert(r)
}

func (d *Database) insert(r StoredRoster) error {
	_, err := d.db.Exec(
		d.qb.Build("INSERT INTO rosters (code, edition, document, created_at, expires_at) VALUES (?, ?, ?, ?, ?)"),
		r.Code, r.Edition, r.Document, r.CreatedAt.Unix(), r.ExpiresAt.Unix(),
	)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

// GetRoster returns the live roster stored under code.
func (d *Database) GetRoster(code string) (*StoredRoster, error) {
	r := &StoredRoster{Code: code}
	var created, expires int64
	err := d.db.QueryRow(
		d.qb.Build("SELECT edition, document, created_at, expires_at FROM rosters WHERE code = ? AND expires_at > ?"),
		code, time.Now().Unix(),
	).Scan(&r.Edition, &r.Document, &created, &expires)
	if err == sql.ErrNoRows {
		return nil, ErrRosterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}
	r.CreatedAt = time.Unix(created, 0)
	r.ExpiresAt = time.Unix(expires, 0)
	return r, nil
}

// CodeExists reports whether code is stored, expired or not.
func (d *Database) CodeExists(code string) (bool, error) {
	var n int
	err := d.db.QueryRow(d.qb.Build("SELECT COUNT(*) FROM rosters WHERE code = ?"), code).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check roster code: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired removes rosters that expired at or before now and returns
// how many were removed.
func (d *Database) DeleteExpired(now time.Time) (int64, error) {
	result, err := d.db.Exec(d.qb.Build("DELETE FROM rosters WHERE expires_at <= ?"), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rosters: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rosters: %w", err)
	}
	return n, nil
}

// ListRosters returns every stored roster, oldest first.
func (d *Database) ListRosters() ([]StoredRoster, error) {
	rows, err := d.db.Query("SELECT code, edition, document, created_at, expires_at FROM rosters ORDER BY created_at, code")
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters: %w", err)
	}
	defer rows.Close()

	var out []StoredRoster
	for rows.Next() {
		var r StoredRoster
		var created, expires int64
		if err := rows.Scan(&r.Code, &r.Edition, &r.Document, &created, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan roster: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		r.ExpiresAt = time.Unix(expires, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
