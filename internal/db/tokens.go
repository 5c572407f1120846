package db

import (
	"context"
	"database/sql"
	"time"
)

// GetToken returns the stored bearer token for a Telegram user, or "" when
// none is stored.
func (db *DB) GetToken(ctx context.Context, userID int64) (string, error) {
	row := db.QueryRowContext(ctx,
		`SELECT token FROM auth_tokens WHERE user_id = ?`, userID)

	var token string
	if err := row.Scan(&token); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// SetToken stores or replaces the bearer token for a user. Called on login.
func (db *DB) SetToken(ctx context.Context, userID int64, token string) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO auth_tokens (user_id, token, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at`,
		userID, token, now, now)
	return err
}

// ListTokenUsers returns every Telegram user with a stored token together
// with the token itself. Used by the daily reminder sweep.
func (db *DB) ListTokenUsers(ctx context.Context) (map[int64]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT user_id, token FROM auth_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make(map[int64]string)
	for rows.Next() {
		var userID int64
		var token string
		if err := rows.Scan(&userID, &token); err != nil {
			return nil, err
		}
		tokens[userID] = token
	}
	return tokens, rows.Err()
}

// ClearToken removes the stored token. Called on logout and on any 401.
func (db *DB) ClearToken(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE user_id = ?`, userID)
	return err
}
