package journal

import (
	"context"
	"log/slog"

	"github.com/garnizeh/hikelog/internal/syncer"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/garnizeh/hikelog/pkg/repository"
)

// ObservationService owns observation mutations. Observations are never
// synced as independent wire entities: every mutation triggers a full re-sync
// of the owning hike, so the remote bundle always reflects the complete
// current child set.
type ObservationService struct {
	observations repository.ObservationStore
	hikes        *HikeService
	logger       *slog.Logger
}

func NewObservationService(observations repository.ObservationStore, hikes *HikeService, logger *slog.Logger) *ObservationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObservationService{
		observations: observations,
		hikes:        hikes,
		logger:       logger,
	}
}

// InsertAndSync inserts the observation, then re-syncs the owning hike.
func (s *ObservationService) InsertAndSync(ctx context.Context, o *models.Observation, cb SyncCallback) (int64, error) {
	now := models.Timestamp()
	if o.CreatedAt == "" {
		o.CreatedAt = now
	}
	if o.LastUpdated == "" {
		o.LastUpdated = now
	}

	id, err := s.observations.InsertObservation(ctx, o)
	if err != nil {
		return 0, err
	}
	o.ID = id

	s.hikes.SyncHike(o.HikeID, false, cb)
	return id, nil
}

// UpdateAndSync stamps LastUpdated, persists, then re-syncs the owning hike.
func (s *ObservationService) UpdateAndSync(ctx context.Context, o *models.Observation, cb SyncCallback) error {
	o.Touch()
	if err := s.observations.UpdateObservation(ctx, o); err != nil {
		return err
	}

	s.hikes.SyncHike(o.HikeID, false, cb)
	return nil
}

// SoftDeleteAndSync flags one observation deleted, then re-syncs the owning
// hike. The bundle itself is NOT marked deleted: only the child row's flag
// changes, and the re-read at sync time picks it up. The observation is
// looked up first to discover its parent; if it does not exist the operation
// fails without any remote call.
func (s *ObservationService) SoftDeleteAndSync(ctx context.Context, observationID int64, cb SyncCallback) error {
	o, err := s.observations.GetObservationByID(ctx, observationID)
	if err != nil {
		return err
	}
	if o == nil {
		return &syncer.NotFoundError{Kind: "observation", ID: observationID}
	}

	if err := s.observations.SoftDeleteObservation(ctx, observationID, models.Timestamp()); err != nil {
		return err
	}

	s.logger.Info("soft deleted observation", slog.Int64("observation_id", observationID), slog.Int64("hike_id", o.HikeID))

	s.hikes.SyncHike(o.HikeID, false, cb)
	return nil
}

// Read helpers used by the API layer.

func (s *ObservationService) GetObservation(ctx context.Context, id int64) (*models.Observation, error) {
	return s.observations.GetObservationByID(ctx, id)
}

func (s *ObservationService) ListByHike(ctx context.Context, hikeID int64) ([]models.Observation, error) {
	return s.observations.ListObservationsByHike(ctx, hikeID)
}

func (s *ObservationService) CountByHike(ctx context.Context, hikeID int64) (int64, error) {
	return s.observations.CountObservationsByHike(ctx, hikeID)
}

func (s *ObservationService) Search(ctx context.Context, query string) ([]models.Observation, error) {
	return s.observations.SearchObservations(ctx, query)
}
