package journal

import (
	"context"
	"log/slog"

	"github.com/garnizeh/hikelog/internal/syncer"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/garnizeh/hikelog/pkg/repository"
)

// SyncCallback receives exactly one terminal outcome per sync: the server
// message on success, or one of syncer.AuthError / NotFoundError /
// RemoteError. It is invoked from a background worker and must be safe to
// call off the caller's goroutine.
type SyncCallback func(message string, err error)

// HikeService owns hike mutations and their sync triggers. Every mutating
// operation commits locally first, then schedules a sync of the full bundle;
// a sync failure never undoes the local write. From the caller's point of
// view "saved" and "synced" are independent outcomes: the local error comes
// back synchronously, the sync outcome arrives on the callback.
type HikeService struct {
	hikes        repository.HikeStore
	observations repository.ObservationStore
	coordinator  *syncer.Coordinator
	pool         *workerPool
	logger       *slog.Logger
}

func NewHikeService(
	hikes repository.HikeStore,
	observations repository.ObservationStore,
	coordinator *syncer.Coordinator,
	workers int,
	logger *slog.Logger,
) *HikeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HikeService{
		hikes:        hikes,
		observations: observations,
		coordinator:  coordinator,
		pool:         newWorkerPool(workers),
		logger:       logger,
	}
}

// InsertAndSync inserts the hike, then schedules a sync of the new bundle.
// The returned id is valid regardless of how the sync turns out.
func (s *HikeService) InsertAndSync(ctx context.Context, h *models.Hike, cb SyncCallback) (int64, error) {
	now := models.Timestamp()
	if h.CreatedAt == "" {
		h.CreatedAt = now
	}
	if h.LastUpdated == "" {
		h.LastUpdated = now
	}

	id, err := s.hikes.InsertHike(ctx, h)
	if err != nil {
		return 0, err
	}
	h.ID = id

	s.SyncHike(id, false, cb)
	return id, nil
}

// UpdateAndSync stamps LastUpdated, persists the hike, then schedules a sync.
func (s *HikeService) UpdateAndSync(ctx context.Context, h *models.Hike, cb SyncCallback) error {
	h.Touch()
	if err := s.hikes.UpdateHike(ctx, h); err != nil {
		return err
	}

	s.SyncHike(h.ID, false, cb)
	return nil
}

// SoftDeleteAndSync flags the hike and all of its observations deleted as one
// logical operation sharing a single timestamp, then schedules a deletion
// sync so the remote mirror sees the final bundle.
func (s *HikeService) SoftDeleteAndSync(ctx context.Context, hikeID int64, cb SyncCallback) error {
	timestamp := models.Timestamp()

	if err := s.hikes.SoftDeleteHike(ctx, hikeID, timestamp); err != nil {
		return err
	}
	if err := s.observations.SoftDeleteObservationsByHike(ctx, hikeID, timestamp); err != nil {
		return err
	}

	s.logger.Info("soft deleted hike and observations", slog.Int64("hike_id", hikeID))

	s.SyncHike(hikeID, true, cb)
	return nil
}

// Restore un-deletes a hike locally. The next mutation re-syncs it.
func (s *HikeService) Restore(ctx context.Context, hikeID int64) error {
	return s.hikes.RestoreHike(ctx, hikeID, models.Timestamp())
}

// SyncHike schedules a sync of the hike's current bundle on a background
// worker. isDeleted states the intent to transmit; it is not derived from the
// row, whose own flag may already be flipped. If the pool is shut down the
// callback fires immediately with the pool error.
func (s *HikeService) SyncHike(hikeID int64, isDeleted bool, cb SyncCallback) {
	err := s.pool.Submit(func() {
		msg, err := s.coordinator.SyncHike(context.Background(), hikeID, isDeleted)
		if cb != nil {
			cb(msg, err)
		}
	})
	if err != nil && cb != nil {
		cb("", err)
	}
}

// Read helpers used by the API layer.

func (s *HikeService) GetHike(ctx context.Context, id int64) (*models.Hike, error) {
	return s.hikes.GetHikeByID(ctx, id)
}

func (s *HikeService) ListHikes(ctx context.Context, userID int64) ([]models.Hike, error) {
	return s.hikes.ListHikesByUser(ctx, userID)
}

func (s *HikeService) SearchByName(ctx context.Context, userID int64, name string) ([]models.Hike, error) {
	return s.hikes.SearchHikesByName(ctx, userID, name)
}

func (s *HikeService) SearchByLengthRange(ctx context.Context, userID int64, minLength, maxLength float64) ([]models.Hike, error) {
	return s.hikes.SearchHikesByLengthRange(ctx, userID, minLength, maxLength)
}

// Close releases the worker pool. Syncs triggered just before Close are not
// guaranteed to run; delivery to the remote mirror is best-effort by design.
func (s *HikeService) Close() {
	s.pool.Stop()
}
