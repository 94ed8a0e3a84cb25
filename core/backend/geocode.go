package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/campusmaps/studyspot/core/logger"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

func (b *Backend) handleGeocodeRoutes(router *mux.Router) {
	router.HandleFunc("/studyspots/{studyspot_id}/geocode", b.startGeocode).
		Methods(http.MethodOptions, http.MethodPost)
	router.HandleFunc("/jobs/{job_id}", b.readJob).
		Methods(http.MethodOptions, http.MethodGet)
}

// startGeocode kicks off a background job that resolves the spot's
// address and writes the coordinates back. The job id is returned
// immediately; clients poll /jobs/{job_id} for the outcome.
func (b *Backend) startGeocode(w http.ResponseWriter, r *http.Request) {
	rlog := logger.FromContext(r.Context())
	rlog.Debugln("called route for", r.URL, r.Method)

	if b.geocoder == nil {
		http.Error(w, "geocoding is not configured", http.StatusServiceUnavailable)
		return
	}

	param := mux.Vars(r)["studyspot_id"]
	id, err := uuid.Parse(param)
	if err != nil {
		http.Error(w, fmt.Sprintf("path parameter '%s' is not a valid id", param), http.StatusBadRequest)
		return
	}

	spot, err := b.store.StudySpots().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "studyspot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		rlog.WithError(err).Errorln("cannot read studyspot for geocoding")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	jobID := b.jobs.Run(r.Context(), func(ctx context.Context) (interface{}, error) {
		result, err := b.geocoder.Geocode(ctx, addressQuery(spot.Address))
		if err != nil {
			return nil, err
		}
		if err := b.store.StudySpots().SetCoordinates(ctx, spot.ID, result.Latitude, result.Longitude); err != nil {
			return nil, err
		}
		return result, nil
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	jsonData, _ := json.Marshal(map[string]uuid.UUID{"job_id": jobID})
	w.Write(jsonData)
}

func (b *Backend) readJob(w http.ResponseWriter, r *http.Request) {
	rlog := logger.FromContext(r.Context())
	rlog.Debugln("called route for", r.URL, r.Method)

	param := mux.Vars(r)["job_id"]
	id, err := uuid.Parse(param)
	if err != nil {
		http.Error(w, fmt.Sprintf("path parameter '%s' is not a valid id", param), http.StatusBadRequest)
		return
	}

	job, ok := b.jobs.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// addressQuery renders the address as a single free-form search string.
func addressQuery(a model.Address) string {
	parts := []string{a.Street, a.City, a.State, a.PostalCode}
	return strings.Join(parts, ", ")
}
