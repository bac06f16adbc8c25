package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

func (r *SQLiteRepo) UpsertDailyMetric(ctx context.Context, m *models.DailyMetric) error {
	if m == nil {
		return fmt.Errorf("metric is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO daily_metrics (date, new_users, new_jobs, active_users) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET new_users = excluded.new_users, new_jobs = excluded.new_jobs, active_users = excluded.active_users`,
		m.Date, m.NewUsers, m.NewJobs, m.ActiveUsers)
	return err
}

func (r *SQLiteRepo) GetDailyMetric(ctx context.Context, date string) (*models.DailyMetric, error) {
	row := r.conn.QueryRow(ctx, `SELECT date, new_users, new_jobs, active_users FROM daily_metrics WHERE date = ?`, date)
	var m models.DailyMetric
	if err := row.Scan(&m.Date, &m.NewUsers, &m.NewJobs, &m.ActiveUsers); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &m, nil
}

func (r *SQLiteRepo) ListDailyMetrics(ctx context.Context, fromDate string) ([]models.DailyMetric, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT date, new_users, new_jobs, active_users FROM daily_metrics WHERE date >= ? ORDER BY date`, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyMetric
	for rows.Next() {
		var m models.DailyMetric
		if err := rows.Scan(&m.Date, &m.NewUsers, &m.NewJobs, &m.ActiveUsers); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
