package sqlite

import (
	"context"

	"github.com/garnizeh/hikelog/pkg/models"
)

// UserStats aggregates the non-deleted part of a user's journal.
func (r *SQLiteRepo) UserStats(ctx context.Context, userID int64) (*models.ReportStats, error) {
	stats := &models.ReportStats{ByDifficulty: map[string]int64{}}

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(length), 0) FROM hikes WHERE user_id = ? AND is_deleted = 0`, userID)
	if err := row.Scan(&stats.HikeCount, &stats.TotalLengthKm); err != nil {
		return nil, err
	}

	row = r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM observations o JOIN hikes h ON h.id = o.hike_id WHERE h.user_id = ? AND o.is_deleted = 0 AND h.is_deleted = 0`, userID)
	if err := row.Scan(&stats.ObservationCount); err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT difficulty, COUNT(*) FROM hikes WHERE user_id = ? AND is_deleted = 0 GROUP BY difficulty`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var difficulty string
		var count int64
		if err := rows.Scan(&difficulty, &count); err != nil {
			return nil, err
		}
		stats.ByDifficulty[difficulty] = count
	}

	return stats, rows.Err()
}
