package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is the server-side half of a browser session: the token pair
// the backend issued at sign-in.
type SessionRecord struct {
	ID           string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    time.Time
}

// SaveSession inserts rec or replaces the tokens and expiry of an existing row.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	query := `
		INSERT INTO sessions (id, access_token, refresh_token, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`
	_, err := s.DB.ExecContext(ctx, query,
		rec.ID, rec.AccessToken, rec.RefreshToken,
		rec.CreatedAt.Unix(), now.Unix(), rec.ExpiresAt.Unix(),
	)
	return err
}

// GetSession returns ErrSessionNotFound for unknown and expired ids alike.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	query := `
		SELECT id, access_token, refresh_token, created_at, updated_at, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`
	var (
		rec                       SessionRecord
		created, updated, expires int64
	)
	err := s.DB.QueryRowContext(ctx, query, id, time.Now().Unix()).
		Scan(&rec.ID, &rec.AccessToken, &rec.RefreshToken, &created, &updated, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	rec.ExpiresAt = time.Unix(expires, 0).UTC()
	return &rec, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// PruneSessions removes rows that expired before now.
func (s *Store) PruneSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SessionStats counts live and expired rows, for the CLI.
func (s *Store) SessionStats(ctx context.Context, now time.Time) (live, expired int, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM sessions
	`
	err = s.DB.QueryRowContext(ctx, query, now.Unix(), now.Unix()).Scan(&live, &expired)
	return live, expired, err
}
