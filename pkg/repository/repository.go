package repository

import (
	"context"

	"github.com/garnizeh/hikelog/pkg/models"
)

// Repository interfaces for the entity store. These are the public contracts
// consumers should depend on; the sqlite implementation lives under internal/.
//
// Lookups return (nil, nil) when no row matches; callers decide whether a
// missing row is an error. Soft-delete operations take the timestamp from the
// caller so that a hike-plus-children cascade shares exactly one value.

type HikeStore interface {
	InsertHike(ctx context.Context, h *models.Hike) (int64, error)
	UpdateHike(ctx context.Context, h *models.Hike) error
	SoftDeleteHike(ctx context.Context, id int64, timestamp string) error
	RestoreHike(ctx context.Context, id int64, timestamp string) error

	GetHikeByID(ctx context.Context, id int64) (*models.Hike, error)
	GetHikeByIDIncludingDeleted(ctx context.Context, id int64) (*models.Hike, error)
	ListHikesByUser(ctx context.Context, userID int64) ([]models.Hike, error)

	SearchHikesByName(ctx context.Context, userID int64, name string) ([]models.Hike, error)
	SearchHikesByLengthRange(ctx context.Context, userID int64, minLength, maxLength float64) ([]models.Hike, error)
}

type ObservationStore interface {
	InsertObservation(ctx context.Context, o *models.Observation) (int64, error)
	UpdateObservation(ctx context.Context, o *models.Observation) error
	SoftDeleteObservation(ctx context.Context, id int64, timestamp string) error
	SoftDeleteObservationsByHike(ctx context.Context, hikeID int64, timestamp string) error

	GetObservationByID(ctx context.Context, id int64) (*models.Observation, error)
	ListObservationsByHike(ctx context.Context, hikeID int64) ([]models.Observation, error)
	ListObservationsByHikeIncludingDeleted(ctx context.Context, hikeID int64) ([]models.Observation, error)
	CountObservationsByHike(ctx context.Context, hikeID int64) (int64, error)
	SearchObservations(ctx context.Context, query string) ([]models.Observation, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ChatStore interface {
	SaveChatMessage(ctx context.Context, m *models.ChatMessage) (int64, error)
	ListChatMessages(ctx context.Context, userID int64) ([]models.ChatMessage, error)
	ClearChatHistory(ctx context.Context, userID int64) error
}

type ReportStore interface {
	UserStats(ctx context.Context, userID int64) (*models.ReportStats, error)
}
