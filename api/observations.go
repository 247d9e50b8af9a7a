package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/garnizeh/hikelog/pkg/models"
)

func (d *Deps) CreateObservationHandler(w http.ResponseWriter, r *http.Request) {
	h := d.ownedHike(w, r)
	if h == nil {
		return
	}

	var o models.Observation
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if o.ObservationText == "" {
		http.Error(w, "observation_text is required", http.StatusBadRequest)
		return
	}
	o.ID = 0
	o.HikeID = h.ID
	o.IsDeleted = false
	if o.ObservationTime == "" {
		o.ObservationTime = models.Timestamp()
	}

	id, err := d.Observations.InsertAndSync(r.Context(), &o, logSync(h.ID))
	if err != nil {
		logger.Error("insert observation", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	o.ID = id

	writeJSON(w, o, http.StatusCreated)
}

func (d *Deps) ListObservationsHandler(w http.ResponseWriter, r *http.Request) {
	h := d.ownedHike(w, r)
	if h == nil {
		return
	}

	obs, err := d.Observations.ListByHike(r.Context(), h.ID)
	if err != nil {
		logger.Error("list observations", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, obs, http.StatusOK)
}

func (d *Deps) SearchObservationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	obs, err := d.Observations.Search(r.Context(), query)
	if err != nil {
		logger.Error("search observations", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, obs, http.StatusOK)
}

func (d *Deps) GetObservationHandler(w http.ResponseWriter, r *http.Request) {
	o := d.ownedObservation(w, r)
	if o == nil {
		return
	}
	writeJSON(w, o, http.StatusOK)
}

func (d *Deps) UpdateObservationHandler(w http.ResponseWriter, r *http.Request) {
	existing := d.ownedObservation(w, r)
	if existing == nil {
		return
	}

	o := *existing
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if o.ObservationText == "" {
		http.Error(w, "observation_text is required", http.StatusBadRequest)
		return
	}
	// parent and identity are fixed at creation
	o.ID = existing.ID
	o.HikeID = existing.HikeID
	o.CreatedAt = existing.CreatedAt
	o.IsDeleted = existing.IsDeleted

	if err := d.Observations.UpdateAndSync(r.Context(), &o, logSync(o.HikeID)); err != nil {
		logger.Error("update observation", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, o, http.StatusOK)
}

func (d *Deps) DeleteObservationHandler(w http.ResponseWriter, r *http.Request) {
	o := d.ownedObservation(w, r)
	if o == nil {
		return
	}

	if err := d.Observations.SoftDeleteAndSync(r.Context(), o.ID, logSync(o.HikeID)); err != nil {
		logger.Error("delete observation", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedObservation resolves {id} to a non-deleted observation whose parent
// hike belongs to the caller.
func (d *Deps) ownedObservation(w http.ResponseWriter, r *http.Request) *models.Observation {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid observation id", http.StatusBadRequest)
		return nil
	}

	o, err := d.Observations.GetObservation(r.Context(), id)
	if err != nil {
		logger.Error("get observation", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if o == nil {
		http.Error(w, "observation not found", http.StatusNotFound)
		return nil
	}

	h, err := d.Hikes.GetHike(r.Context(), o.HikeID)
	if err != nil {
		logger.Error("get parent hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if h == nil || h.UserID != userID {
		http.Error(w, "observation not found", http.StatusNotFound)
		return nil
	}

	return o
}
