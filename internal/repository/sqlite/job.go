package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	status := j.Status
	if status == "" {
		status = models.JobStatusOpen
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO jobs (client_id, title, description, budget, status, created) VALUES (?, ?, ?, ?, ?, ?)`,
		j.ClientID, j.Title, j.Description, j.Budget, status, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, client_id, title, description, budget, status, created FROM jobs WHERE status = ? ORDER BY id DESC LIMIT ?`, models.JobStatusOpen, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &j.Budget, &j.Status, &j.Created); err != nil {
			return nil, err
		}
		out = append(out, j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListAllJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 15
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT j.id, j.client_id, j.title, j.description, j.budget, j.status, j.created, u.username
		FROM jobs j
		LEFT JOIN users u ON j.client_id = u.user_id
		ORDER BY j.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		var handle sql.NullString
		if err := rows.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &j.Budget, &j.Status, &j.Created, &handle); err != nil {
			return nil, err
		}
		if handle.Valid {
			j.ClientHandle = handle.String
		}
		out = append(out, j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountJobs(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CountJobsCreatedOn(ctx context.Context, date string) (int64, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return 0, err
	}

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE created >= ? AND created < ?`, start, end)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) CountJobsByClient(ctx context.Context, clientID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE client_id = ?`, clientID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
