package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

func (r *SQLiteRepo) AppendActivity(ctx context.Context, a *models.Activity) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("activity is nil")
	}

	created := a.Created
	if created == 0 {
		created = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO user_activity (user_id, action, details, created) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Action, a.Details, created)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ListRecentActivity returns the newest rows joined with the actor's handle,
// skipping rows whose actor is banned. Rows logged before a profile existed
// have no users row and are kept.
func (r *SQLiteRepo) ListRecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT a.id, a.user_id, a.action, a.details, a.created, u.username
		FROM user_activity a
		LEFT JOIN users u ON a.user_id = u.user_id
		WHERE u.user_id IS NULL OR u.is_banned = 0
		ORDER BY a.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func (r *SQLiteRepo) ListActivityByUser(ctx context.Context, userID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, action, details, created, NULL
		FROM user_activity WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]models.Activity, error) {
	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var username sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Details, &a.Created, &username); err != nil {
			return nil, err
		}
		if username.Valid {
			a.Username = username.String
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountDistinctActorsSince(ctx context.Context, sinceMillis int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(DISTINCT user_id) FROM user_activity WHERE created > ?`, sinceMillis)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CountActiveUsersOn(ctx context.Context, date string) (int64, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}

	row := r.conn.QueryRow(ctx, `SELECT COUNT(DISTINCT user_id) FROM user_activity WHERE created >= ? AND created < ?`, start, end)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
