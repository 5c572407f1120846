package db

import "context"

// AuditEntry is one recorded user action.
type AuditEntry struct {
	ID        int64
	UserID    int64
	Action    string
	Detail    string
	CreatedAt string
}

// LogAction appends an entry to the audit trail. Failures here are not worth
// interrupting the user flow for; callers log and move on.
func (db *DB) LogAction(ctx context.Context, userID int64, action, detail string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, detail) VALUES (?, ?, ?)`,
		userID, action, detail)
	return err
}

// RecentActions returns the latest audit entries for a user, newest first.
func (db *DB) RecentActions(ctx context.Context, userID int64, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, action, detail, created_at
		FROM audit_log
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
