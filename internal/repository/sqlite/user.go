package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	// ON CONFLICT keeps skills/location intact; only the profile steps touch those.
	_, err := r.conn.Exec(ctx, `INSERT INTO users (user_id, username, role, created) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username, role = excluded.role`,
		u.ID, u.Username, u.Role, now())
	return err
}

func (r *SQLiteRepo) SetSkills(ctx context.Context, id int64, skills string) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET skills = ? WHERE user_id = ?`, skills, id)
	return err
}

func (r *SQLiteRepo) SetLocation(ctx context.Context, id int64, location string) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET location = ? WHERE user_id = ?`, location, id)
	return err
}

func (r *SQLiteRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	flag := 0
	if banned {
		flag = 1
	}
	_, err := r.conn.Exec(ctx, `UPDATE users SET is_banned = ? WHERE user_id = ?`, flag, id)
	return err
}

func (r *SQLiteRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT user_id, username, role, skills, location, is_banned, created FROM users WHERE user_id = ?`, id)
	var u models.User
	var banned int
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.Skills, &u.Location, &banned, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	u.Banned = banned != 0

	return &u, nil
}

func (r *SQLiteRepo) ListFreelancerIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT user_id FROM users WHERE role = ? AND is_banned = 0`, models.RoleFreelancer)
}

func (r *SQLiteRepo) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT user_id FROM users WHERE is_banned = 0`)
}

func (r *SQLiteRepo) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListRecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT user_id, username, role, skills, location, is_banned, created FROM users WHERE is_banned = 0 ORDER BY created DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		var banned int
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.Skills, &u.Location, &banned, &u.Created); err != nil {
			return nil, err
		}
		u.Banned = banned != 0
		out = append(out, u)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountActiveUsers(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_banned = 0`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CountUsersCreatedOn(ctx context.Context, date string) (int64, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE created >= ? AND created < ?`, start, end)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
