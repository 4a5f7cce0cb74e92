package adapthttp

import (
	"net/http"
	"time"
)

func (s *Server) handleChartsDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	days := intQuery(r, "days", 30)

	points, err := s.dashboard.GetDaily(r.Context(), user.ID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retrieve chart data")
		return
	}

	// Echo the clamped window, which can be narrower than the query value.
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  len(points),
		"today": localDayString(time.Now()),
		"items": points,
	})
}

func (s *Server) handleOffsets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	projects, source := s.offsets.Suggestions(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    projects,
		"count":   len(projects),
		"source":  source,
	})
}
