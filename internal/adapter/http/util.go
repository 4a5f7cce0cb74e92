package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"carbontrack/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "code": code})
}

// estimateStatus maps the calculation error taxonomy onto HTTP statuses.
var estimateStatus = map[domain.EstimateCode]int{
	domain.CodeInvalidInput:         http.StatusBadRequest,
	domain.CodeUnsupportedActivity:  http.StatusBadRequest,
	domain.CodeServiceMisconfigured: http.StatusInternalServerError,
	domain.CodeExternalAuth:         http.StatusBadGateway,
	domain.CodeRateLimited:          http.StatusTooManyRequests,
	domain.CodeTimeout:              http.StatusGatewayTimeout,
	domain.CodeExternalService:      http.StatusInternalServerError,
}

func writeEstimateError(w http.ResponseWriter, err error) {
	var estErr *domain.EstimateError
	if !errors.As(err, &estErr) {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	status, ok := estimateStatus[estErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if estErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(estErr.RetryAfter/time.Second)))
	}
	writeError(w, status, string(estErr.Code), estErr.Error())
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func localDayString(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")
	dashboardPath := path.Join(dir, "dashboard.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}
		if reqPath == "/dashboard" {
			http.ServeFile(w, r, dashboardPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
