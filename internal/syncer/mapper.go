package syncer

import "github.com/garnizeh/hikelog/pkg/models"

// Pure projections from persisted entities to the wire schema. The wire never
// carries nulls where the backend expects a value: an unset date maps to ""
// and an absent observation list maps to [].

func ToHikeSyncData(h *models.Hike) HikeSyncData {
	temperature := h.Temperature
	duration := h.EstimatedDuration
	return HikeSyncData{
		IDLocal:           h.ID,
		Name:              h.Name,
		Location:          h.Location,
		HikeDate:          h.HikeDate,
		ParkingAvailable:  h.ParkingAvailable,
		Length:            h.Length,
		Difficulty:        h.Difficulty,
		Description:       h.Description,
		WeatherCondition:  h.WeatherCondition,
		Temperature:       &temperature,
		EstimatedDuration: &duration,
	}
}

func ToObservationSyncData(o *models.Observation) ObservationSyncData {
	return ObservationSyncData{
		IDLocal:         o.ID,
		ObservationText: o.ObservationText,
		ObservationTime: o.ObservationTime,
		Comments:        o.Comments,
		ImagePath:       o.PhotoPath,
	}
}

// ToObservationSyncDataList preserves input order. A nil input yields an
// empty, non-nil list so the wire carries [] and never null.
func ToObservationSyncDataList(observations []models.Observation) []ObservationSyncData {
	out := make([]ObservationSyncData, 0, len(observations))
	for i := range observations {
		out = append(out, ToObservationSyncData(&observations[i]))
	}
	return out
}

// NewSyncRequest composes the full bundle. isDeleted is the caller's intent
// for the whole bundle, not the hike row's own flag.
func NewSyncRequest(h *models.Hike, observations []models.Observation, isDeleted bool) *SyncRequest {
	return &SyncRequest{
		Hike:         ToHikeSyncData(h),
		Observations: ToObservationSyncDataList(observations),
		IsDeleted:    isDeleted,
	}
}
