package syncer

// Wire schema for the remote vector store. Field names match what the backend
// indexes; id_local is the locally assigned row id, never a remote identity.

type HikeSyncData struct {
	IDLocal           int64    `json:"id_local"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	HikeDate          string   `json:"hike_date"`
	ParkingAvailable  bool     `json:"parking_available"`
	Length            float64  `json:"length"`
	Difficulty        string   `json:"difficulty"`
	Description       string   `json:"description"`
	WeatherCondition  string   `json:"weather_condition"`
	Temperature       *float64 `json:"temperature"`
	EstimatedDuration *float64 `json:"estimated_duration"`
}

type ObservationSyncData struct {
	IDLocal         int64  `json:"id_local"`
	ObservationText string `json:"observation_text"`
	ObservationTime string `json:"observation_time"`
	Comments        string `json:"comments"`
	ImagePath       string `json:"image_path"`
}

// SyncRequest is the bundle transmitted in one sync call: the hike, its full
// current child set, and the bundle-level deletion flag. It is built fresh
// for every call and never persisted.
type SyncRequest struct {
	Hike         HikeSyncData          `json:"hike"`
	Observations []ObservationSyncData `json:"observations"`
	IsDeleted    bool                  `json:"is_deleted"`
}

type SyncResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	HikeID           string `json:"hike_id"`
	DocumentsUpdated int    `json:"documents_updated"`
}
