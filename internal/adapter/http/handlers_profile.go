package adapthttp

import (
	"errors"
	"net/http"

	"carbontrack/internal/app"
	"carbontrack/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleProfileGet(w, r)
	case http.MethodPut:
		s.handleProfileUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	profile, err := s.profiles.GetOrCreate(r.Context(), user.ID, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve user profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profile})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	var body struct {
		FullName   *string  `json:"fullName"`
		Location   *string  `json:"location"`
		CarbonGoal *float64 `json:"carbonGoal"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	profile, err := s.profiles.Update(r.Context(), user.ID, domain.ProfileUpdate{
		FullName:   body.FullName,
		Location:   body.Location,
		CarbonGoal: body.CarbonGoal,
	})
	if errors.Is(err, app.ErrGoalInvalid) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profile})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	stats, err := s.profiles.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve user statistics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}
