package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"carbontrack/internal/app"
	"carbontrack/internal/domain"
)

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		CO2e      float64   `json:"co2e"`
		Activity  string    `json:"activity"`
		Value     float64   `json:"value"`
		Unit      string    `json:"unit"`
		Timestamp time.Time `json:"timestamp"`
		Region    string    `json:"region"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user := userFromContext(r)
	entry, err := s.footprints.LogManual(r.Context(), user.ID, domain.FootprintEntry{
		Activity:   body.Activity,
		Value:      body.Value,
		Unit:       body.Unit,
		CO2e:       body.CO2e,
		Region:     body.Region,
		RecordedAt: body.Timestamp,
	})
	if errors.Is(err, app.ErrEntryInvalid) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save emission entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": entry})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var userID *int64
	if user := userFromContext(r); user != nil {
		userID = &user.ID
	}
	limit := intQuery(r, "limit", 100)

	entries, err := s.footprints.ListRecent(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve emission entries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    entries,
		"count":   len(entries),
		"userId":  userID,
	})
}
