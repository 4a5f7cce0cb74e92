package adapthttp

import (
	"log"
	"net/http"

	"carbontrack/internal/domain"
)

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	grouped := make(map[domain.Category][]string, len(domain.Categories))
	for _, c := range domain.Categories {
		grouped[c] = domain.ActivityKeysByCategory(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"activities": domain.ActivityKeys(),
		"categories": grouped,
	})
}

type calculateResponse struct {
	domain.EmissionEstimate
	ID        *int64 `json:"id,omitempty"`
	Saved     bool   `json:"saved"`
	SaveError string `json:"saveError,omitempty"`
	UserID    *int64 `json:"userId,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Activity string  `json:"activity"`
		Value    float64 `json:"value"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, string(domain.CodeInvalidInput), err.Error())
		return
	}

	estimate, err := s.estimator.Calculate(r.Context(), body.Activity, body.Value)
	if err != nil {
		writeEstimateError(w, err)
		return
	}

	resp := calculateResponse{EmissionEstimate: *estimate}
	var userID *int64
	if user := userFromContext(r); user != nil {
		userID = &user.ID
		resp.UserID = userID
	}

	// Persistence is best effort: a failed save is a warning on the
	// successful calculation, never a calculation failure.
	id, err := s.footprints.Record(r.Context(), *estimate, userID)
	if err != nil {
		log.Printf("failed to save footprint entry: %v", err)
		resp.SaveError = "Database save failed"
	} else {
		resp.ID = &id
		resp.Saved = true
	}

	writeJSON(w, http.StatusOK, resp)
}
