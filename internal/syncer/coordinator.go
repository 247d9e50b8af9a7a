package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/garnizeh/hikelog/internal/auth"
	"github.com/garnizeh/hikelog/internal/metrics"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/garnizeh/hikelog/pkg/repository"
)

// Coordinator owns the "sync a hike and its observations" operation. It is
// read-only against the entity store: the only durable effect is the outbound
// network call, and a failed sync never touches local state.
type Coordinator struct {
	hikes        repository.HikeStore
	observations repository.ObservationStore
	tokens       auth.TokenSource
	gateway      Gateway
	logger       *slog.Logger
}

func NewCoordinator(
	hikes repository.HikeStore,
	observations repository.ObservationStore,
	tokens auth.TokenSource,
	gateway Gateway,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		hikes:        hikes,
		observations: observations,
		tokens:       tokens,
		gateway:      gateway,
		logger:       logger,
	}
}

// SyncHike assembles the current local state of the hike and transmits it.
//
// isDeleted is the caller's intent for this sync, not a re-read of the row:
// by the time a deletion sync runs the row's own flag has already flipped, so
// the caller must state which semantics to transmit. When isDeleted is true
// the hike and its observations are read through the including-deleted
// lookups; a freshly created or updated hike is never itself deleted, so the
// default lookups suffice otherwise. The deletion bundle therefore carries
// the full final child set, including children that were individually
// soft-deleted earlier.
//
// Returns the server's message on success, or exactly one of AuthError,
// NotFoundError, RemoteError. Never retries.
func (c *Coordinator) SyncHike(ctx context.Context, hikeID int64, isDeleted bool) (string, error) {
	start := time.Now()
	msg, err := c.syncHike(ctx, hikeID, isDeleted)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	metrics.SyncAttemptsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		c.logger.Warn("sync failed",
			slog.Int64("hike_id", hikeID),
			slog.Bool("is_deleted", isDeleted),
			slog.String("err", err.Error()),
		)
		return "", err
	}

	c.logger.Info("sync ok", slog.Int64("hike_id", hikeID), slog.Bool("is_deleted", isDeleted))
	return msg, nil
}

func (c *Coordinator) syncHike(ctx context.Context, hikeID int64, isDeleted bool) (string, error) {
	if _, err := c.tokens.Principal(); err != nil {
		return "", &AuthError{Reason: "no signed-in user", Err: err}
	}

	token, err := c.tokens.FreshToken(ctx)
	if err != nil {
		return "", &AuthError{Reason: "token retrieval failed", Err: err}
	}

	var hike *models.Hike
	if isDeleted {
		hike, err = c.hikes.GetHikeByIDIncludingDeleted(ctx, hikeID)
	} else {
		hike, err = c.hikes.GetHikeByID(ctx, hikeID)
	}
	if err != nil {
		return "", err
	}
	if hike == nil {
		return "", &NotFoundError{Kind: "hike", ID: hikeID}
	}

	obs, err := c.observationsForSync(ctx, hikeID, isDeleted)
	if err != nil {
		return "", err
	}

	req := NewSyncRequest(hike, obs, isDeleted)
	metrics.SyncBundleObservations.Observe(float64(len(req.Observations)))

	resp, err := c.gateway.SyncHike(ctx, token, req)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &RemoteError{Message: resp.Message}
	}

	return resp.Message, nil
}

// observationsForSync applies the same visibility rule as the hike lookup so
// a deletion bundle carries children that were already individually deleted.
func (c *Coordinator) observationsForSync(ctx context.Context, hikeID int64, isDeleted bool) ([]models.Observation, error) {
	if isDeleted {
		return c.observations.ListObservationsByHikeIncludingDeleted(ctx, hikeID)
	}
	return c.observations.ListObservationsByHike(ctx, hikeID)
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return metrics.ResultAuth
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return metrics.ResultNotFound
	}
	return metrics.ResultRemote
}
