package api

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/garnizeh/hikelog/internal/journal"
	"github.com/garnizeh/hikelog/internal/syncer"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"
)

//go:embed hike_schema.json
var hikeSchemaJSON []byte

var hikeSchema = &jsonschema.Schema{}

func init() {
	if err := json.Unmarshal(hikeSchemaJSON, hikeSchema); err != nil {
		panic("invalid hike schema: " + err.Error())
	}
}

// validateHikeBody checks the raw body against the hike schema and reports
// the violations to the client. Returns false when the request was rejected.
func validateHikeBody(w http.ResponseWriter, r *http.Request, body []byte) bool {
	keyErrs, err := hikeSchema.ValidateBytes(r.Context(), body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		writeJSON(w, map[string]any{"errors": msgs}, http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// logSync is the default callback for syncs triggered by HTTP mutations: the
// response has already been sent by the time the outcome arrives, so it only
// gets logged.
func logSync(hikeID int64) journal.SyncCallback {
	return func(message string, err error) {
		if err != nil {
			logger.Warn("background sync failed", slog.Int64("hike_id", hikeID), slog.Any("err", err))
			return
		}
		logger.Info("background sync done", slog.Int64("hike_id", hikeID), slog.String("message", message))
	}
}

func (d *Deps) CreateHikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !validateHikeBody(w, r, body) {
		return
	}

	var h models.Hike
	if err := json.Unmarshal(body, &h); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.ID = 0
	h.UserID = userID
	h.IsDeleted = false

	id, err := d.Hikes.InsertAndSync(r.Context(), &h, logSync(0))
	if err != nil {
		logger.Error("insert hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.ID = id

	writeJSON(w, h, http.StatusCreated)
}

func (d *Deps) GetHikeHandler(w http.ResponseWriter, r *http.Request) {
	h := d.ownedHike(w, r)
	if h == nil {
		return
	}
	writeJSON(w, h, http.StatusOK)
}

func (d *Deps) ListHikesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	var (
		hikes []models.Hike
		err   error
	)
	switch {
	case q.Get("name") != "":
		hikes, err = d.Hikes.SearchByName(r.Context(), userID, q.Get("name"))
	case q.Get("min_length") != "" || q.Get("max_length") != "":
		minLen, perr := parseFloatDefault(q.Get("min_length"), 0)
		if perr != nil {
			http.Error(w, "invalid min_length", http.StatusBadRequest)
			return
		}
		maxLen, perr := parseFloatDefault(q.Get("max_length"), 1e9)
		if perr != nil {
			http.Error(w, "invalid max_length", http.StatusBadRequest)
			return
		}
		hikes, err = d.Hikes.SearchByLengthRange(r.Context(), userID, minLen, maxLen)
	default:
		hikes, err = d.Hikes.ListHikes(r.Context(), userID)
	}
	if err != nil {
		logger.Error("list hikes", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, hikes, http.StatusOK)
}

func parseFloatDefault(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func (d *Deps) UpdateHikeHandler(w http.ResponseWriter, r *http.Request) {
	existing := d.ownedHike(w, r)
	if existing == nil {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !validateHikeBody(w, r, body) {
		return
	}

	h := *existing
	if err := json.Unmarshal(body, &h); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.ID = existing.ID
	h.UserID = existing.UserID
	h.CreatedAt = existing.CreatedAt
	h.IsDeleted = existing.IsDeleted

	if err := d.Hikes.UpdateAndSync(r.Context(), &h, logSync(h.ID)); err != nil {
		logger.Error("update hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h, http.StatusOK)
}

func (d *Deps) DeleteHikeHandler(w http.ResponseWriter, r *http.Request) {
	h := d.ownedHike(w, r)
	if h == nil {
		return
	}

	if err := d.Hikes.SoftDeleteAndSync(r.Context(), h.ID, logSync(h.ID)); err != nil {
		logger.Error("delete hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (d *Deps) RestoreHikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid hike id", http.StatusBadRequest)
		return
	}

	if err := d.Hikes.Restore(r.Context(), id); err != nil {
		logger.Error("restore hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SyncHikeHandler triggers a sync and, unlike the mutation endpoints, waits
// for the outcome so the client can see it. ?deleted=true transmits the
// bundle as a deletion.
func (d *Deps) SyncHikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid hike id", http.StatusBadRequest)
		return
	}
	isDeleted := r.URL.Query().Get("deleted") == "true"

	type outcome struct {
		msg string
		err error
	}
	done := make(chan outcome, 1)
	d.Hikes.SyncHike(id, isDeleted, func(message string, err error) {
		done <- outcome{msg: message, err: err}
	})

	select {
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
	case out := <-done:
		if out.err != nil {
			writeSyncError(w, out.err)
			return
		}
		writeJSON(w, map[string]string{"message": out.msg}, http.StatusOK)
	}
}

func writeSyncError(w http.ResponseWriter, err error) {
	var (
		authErr     *syncer.AuthError
		notFoundErr *syncer.NotFoundError
		remoteErr   *syncer.RemoteError
	)
	switch {
	case errors.As(err, &authErr):
		http.Error(w, authErr.Error(), http.StatusUnauthorized)
	case errors.As(err, &notFoundErr):
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
	case errors.As(err, &remoteErr):
		http.Error(w, remoteErr.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HikeWeatherHandler looks up the forecast for the hike's coordinates on its
// planned date.
func (d *Deps) HikeWeatherHandler(w http.ResponseWriter, r *http.Request) {
	h := d.ownedHike(w, r)
	if h == nil {
		return
	}

	if h.Latitude == 0 && h.Longitude == 0 {
		http.Error(w, "hike has no coordinates", http.StatusUnprocessableEntity)
		return
	}
	if h.HikeDate == "" {
		http.Error(w, "hike has no date", http.StatusUnprocessableEntity)
		return
	}
	if !d.Weather.WithinForecastRange(h.HikeDate) {
		http.Error(w, "hike date is outside the forecast range", http.StatusUnprocessableEntity)
		return
	}

	info, err := d.Weather.PointForecast(r.Context(), h.Latitude, h.Longitude, h.HikeDate)
	if err != nil {
		logger.Error("fetch forecast", slog.Int64("hike_id", h.ID), slog.Any("err", err))
		http.Error(w, "weather service unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, info, http.StatusOK)
}

// ownedHike resolves {id} to a non-deleted hike owned by the caller, writing
// the error response itself when that fails.
func (d *Deps) ownedHike(w http.ResponseWriter, r *http.Request) *models.Hike {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid hike id", http.StatusBadRequest)
		return nil
	}

	h, err := d.Hikes.GetHike(r.Context(), id)
	if err != nil {
		logger.Error("get hike", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if h == nil || h.UserID != userID {
		http.Error(w, "hike not found", http.StatusNotFound)
		return nil
	}

	return h
}
