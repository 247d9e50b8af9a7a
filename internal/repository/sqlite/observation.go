package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/hikelog/pkg/models"
)

const observationColumns = `id, hike_id, observation_text, observation_time, comments, photo_path, created_at, last_updated, is_deleted`

func (r *SQLiteRepo) InsertObservation(ctx context.Context, o *models.Observation) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("observation is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO observations (hike_id, observation_text, observation_time, comments, photo_path, created_at, last_updated, is_deleted) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.HikeID, o.ObservationText, o.ObservationTime, o.Comments, o.PhotoPath, o.CreatedAt, o.LastUpdated, o.IsDeleted)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateObservation(ctx context.Context, o *models.Observation) error {
	if o == nil {
		return fmt.Errorf("observation is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE observations SET observation_text = ?, observation_time = ?, comments = ?, photo_path = ?, last_updated = ? WHERE id = ?`,
		o.ObservationText, o.ObservationTime, o.Comments, o.PhotoPath, o.LastUpdated, o.ID)
	return err
}

func (r *SQLiteRepo) SoftDeleteObservation(ctx context.Context, id int64, timestamp string) error {
	_, err := r.conn.Exec(ctx, `UPDATE observations SET is_deleted = 1, last_updated = ? WHERE id = ?`, timestamp, id)
	return err
}

// SoftDeleteObservationsByHike flags every observation of the hike, deleted
// ones included, with the caller's timestamp. Used by the hike-delete cascade.
func (r *SQLiteRepo) SoftDeleteObservationsByHike(ctx context.Context, hikeID int64, timestamp string) error {
	_, err := r.conn.Exec(ctx, `UPDATE observations SET is_deleted = 1, last_updated = ? WHERE hike_id = ?`, timestamp, hikeID)
	return err
}

func (r *SQLiteRepo) GetObservationByID(ctx context.Context, id int64) (*models.Observation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+observationColumns+` FROM observations WHERE id = ? AND is_deleted = 0`, id)
	return scanObservation(row)
}

func (r *SQLiteRepo) ListObservationsByHike(ctx context.Context, hikeID int64) ([]models.Observation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+observationColumns+` FROM observations WHERE hike_id = ? AND is_deleted = 0 ORDER BY observation_time ASC`, hikeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectObservations(rows)
}

func (r *SQLiteRepo) ListObservationsByHikeIncludingDeleted(ctx context.Context, hikeID int64) ([]models.Observation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+observationColumns+` FROM observations WHERE hike_id = ? ORDER BY observation_time ASC`, hikeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectObservations(rows)
}

func (r *SQLiteRepo) CountObservationsByHike(ctx context.Context, hikeID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM observations WHERE hike_id = ? AND is_deleted = 0`, hikeID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) SearchObservations(ctx context.Context, query string) ([]models.Observation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+observationColumns+` FROM observations WHERE (observation_text LIKE '%' || ? || '%' OR comments LIKE '%' || ? || '%') AND is_deleted = 0`, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectObservations(rows)
}

func scanObservation(row *sql.Row) (*models.Observation, error) {
	var o models.Observation
	if err := row.Scan(&o.ID, &o.HikeID, &o.ObservationText, &o.ObservationTime, &o.Comments, &o.PhotoPath, &o.CreatedAt, &o.LastUpdated, &o.IsDeleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &o, nil
}

func collectObservations(rows *sql.Rows) ([]models.Observation, error) {
	var out []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.HikeID, &o.ObservationText, &o.ObservationTime, &o.Comments, &o.PhotoPath, &o.CreatedAt, &o.LastUpdated, &o.IsDeleted); err != nil {
			return nil, err
		}

		out = append(out, o)
	}

	return out, rows.Err()
}
