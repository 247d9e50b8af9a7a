package models

import "time"

// Timestamps are stored as strings, matching the column format the mobile
// clients write: "YYYY-MM-DD HH:mm:ss" for row timestamps and "YYYY-MM-DD"
// for calendar dates.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Timestamp returns the current time in the canonical row-timestamp format.
func Timestamp() string {
	return time.Now().Format(TimestampLayout)
}

// Difficulty levels for a hike.
const (
	DifficultyEasy    = "Easy"
	DifficultyMedium  = "Medium"
	DifficultyHard    = "Hard"
	DifficultyExtreme = "Extreme"
)

// ValidDifficulty reports whether s is one of the known difficulty levels.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme:
		return true
	}
	return false
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	CreatedAt    string `json:"created_at" db:"created_at"`
}

// Hike is a user-owned excursion record. A latitude/longitude of 0/0 means
// "unset". Deletion is a visibility flag: deleted rows stay in storage and
// are reachable through the including-deleted lookups.
type Hike struct {
	ID                int64   `json:"id" db:"id"`
	UserID            int64   `json:"user_id" db:"user_id"`
	Name              string  `json:"name" db:"name"`
	Location          string  `json:"location" db:"location"`
	Latitude          float64 `json:"latitude" db:"latitude"`
	Longitude         float64 `json:"longitude" db:"longitude"`
	HikeDate          string  `json:"hike_date" db:"hike_date"`
	ParkingAvailable  bool    `json:"parking_available" db:"parking_available"`
	Length            float64 `json:"length" db:"length"`
	Difficulty        string  `json:"difficulty" db:"difficulty"`
	Description       string  `json:"description" db:"description"`
	WeatherCondition  string  `json:"weather_condition" db:"weather_condition"`
	Temperature       float64 `json:"temperature" db:"temperature"`
	EstimatedDuration float64 `json:"estimated_duration" db:"estimated_duration"`
	CreatedAt         string  `json:"created_at" db:"created_at"`
	LastUpdated       string  `json:"last_updated" db:"last_updated"`
	IsDeleted         bool    `json:"is_deleted" db:"is_deleted"`
}

// Touch stamps LastUpdated with the current time.
func (h *Hike) Touch() {
	h.LastUpdated = Timestamp()
}

// Observation is a dated field note attached to exactly one hike. The parent
// hike is fixed at creation and never changes.
type Observation struct {
	ID              int64  `json:"id" db:"id"`
	HikeID          int64  `json:"hike_id" db:"hike_id"`
	ObservationText string `json:"observation_text" db:"observation_text"`
	ObservationTime string `json:"observation_time" db:"observation_time"`
	Comments        string `json:"comments" db:"comments"`
	PhotoPath       string `json:"photo_path" db:"photo_path"`
	CreatedAt       string `json:"created_at" db:"created_at"`
	LastUpdated     string `json:"last_updated" db:"last_updated"`
	IsDeleted       bool   `json:"is_deleted" db:"is_deleted"`
}

// Touch stamps LastUpdated with the current time.
func (o *Observation) Touch() {
	o.LastUpdated = Timestamp()
}

// ChatMessage is one side of an assistant conversation, kept locally so the
// history survives offline.
type ChatMessage struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	Message   string `json:"message" db:"message"`
	FromUser  bool   `json:"from_user" db:"from_user"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// ReportStats aggregates a user's journal for the report screen.
type ReportStats struct {
	HikeCount        int64            `json:"hike_count"`
	TotalLengthKm    float64          `json:"total_length_km"`
	ObservationCount int64            `json:"observation_count"`
	ByDifficulty     map[string]int64 `json:"by_difficulty"`
}
