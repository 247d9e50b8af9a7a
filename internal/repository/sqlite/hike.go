package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/hikelog/pkg/models"
)

const hikeColumns = `id, user_id, name, location, latitude, longitude, hike_date, parking_available, length, difficulty, description, weather_condition, temperature, estimated_duration, created_at, last_updated, is_deleted`

func (r *SQLiteRepo) InsertHike(ctx context.Context, h *models.Hike) (int64, error) {
	if h == nil {
		return 0, fmt.Errorf("hike is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO hikes (user_id, name, location, latitude, longitude, hike_date, parking_available, length, difficulty, description, weather_condition, temperature, estimated_duration, created_at, last_updated, is_deleted) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.UserID, h.Name, h.Location, h.Latitude, h.Longitude, h.HikeDate, h.ParkingAvailable, h.Length, h.Difficulty, h.Description, h.WeatherCondition, h.Temperature, h.EstimatedDuration, h.CreatedAt, h.LastUpdated, h.IsDeleted)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateHike(ctx context.Context, h *models.Hike) error {
	if h == nil {
		return fmt.Errorf("hike is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE hikes SET name = ?, location = ?, latitude = ?, longitude = ?, hike_date = ?, parking_available = ?, length = ?, difficulty = ?, description = ?, weather_condition = ?, temperature = ?, estimated_duration = ?, last_updated = ? WHERE id = ?`,
		h.Name, h.Location, h.Latitude, h.Longitude, h.HikeDate, h.ParkingAvailable, h.Length, h.Difficulty, h.Description, h.WeatherCondition, h.Temperature, h.EstimatedDuration, h.LastUpdated, h.ID)
	return err
}

// SoftDeleteHike marks the hike deleted. The timestamp comes from the caller
// so a cascade over the hike and its observations shares one value.
func (r *SQLiteRepo) SoftDeleteHike(ctx context.Context, id int64, timestamp string) error {
	_, err := r.conn.Exec(ctx, `UPDATE hikes SET is_deleted = 1, last_updated = ? WHERE id = ?`, timestamp, id)
	return err
}

func (r *SQLiteRepo) RestoreHike(ctx context.Context, id int64, timestamp string) error {
	_, err := r.conn.Exec(ctx, `UPDATE hikes SET is_deleted = 0, last_updated = ? WHERE id = ?`, timestamp, id)
	return err
}

func (r *SQLiteRepo) GetHikeByID(ctx context.Context, id int64) (*models.Hike, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE id = ? AND is_deleted = 0`, id)
	return scanHike(row)
}

// GetHikeByIDIncludingDeleted is the lookup sync uses when transmitting a
// deletion: the row's visibility flag may already be flipped by then.
func (r *SQLiteRepo) GetHikeByIDIncludingDeleted(ctx context.Context, id int64) (*models.Hike, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE id = ?`, id)
	return scanHike(row)
}

func (r *SQLiteRepo) ListHikesByUser(ctx context.Context, userID int64) ([]models.Hike, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE user_id = ? AND is_deleted = 0 ORDER BY hike_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHikes(rows)
}

func (r *SQLiteRepo) SearchHikesByName(ctx context.Context, userID int64, name string) ([]models.Hike, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE user_id = ? AND is_deleted = 0 AND name LIKE '%' || ? || '%' ORDER BY hike_date DESC`, userID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHikes(rows)
}

func (r *SQLiteRepo) SearchHikesByLengthRange(ctx context.Context, userID int64, minLength, maxLength float64) ([]models.Hike, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE user_id = ? AND is_deleted = 0 AND length BETWEEN ? AND ? ORDER BY hike_date DESC`, userID, minLength, maxLength)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHikes(rows)
}

func scanHike(row *sql.Row) (*models.Hike, error) {
	var h models.Hike
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Location, &h.Latitude, &h.Longitude, &h.HikeDate, &h.ParkingAvailable, &h.Length, &h.Difficulty, &h.Description, &h.WeatherCondition, &h.Temperature, &h.EstimatedDuration, &h.CreatedAt, &h.LastUpdated, &h.IsDeleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &h, nil
}

func collectHikes(rows *sql.Rows) ([]models.Hike, error) {
	var out []models.Hike
	for rows.Next() {
		var h models.Hike
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Location, &h.Latitude, &h.Longitude, &h.HikeDate, &h.ParkingAvailable, &h.Length, &h.Difficulty, &h.Description, &h.WeatherCondition, &h.Temperature, &h.EstimatedDuration, &h.CreatedAt, &h.LastUpdated, &h.IsDeleted); err != nil {
			return nil, err
		}

		out = append(out, h)
	}

	return out, rows.Err()
}
