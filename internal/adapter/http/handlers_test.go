package adapthttp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adapthttp "carbontrack/internal/adapter/http"
	"carbontrack/internal/adapter/memory"
	"carbontrack/internal/app"
	"carbontrack/internal/domain"
)

// sourceFunc adapts a function to the EmissionSource port.
type sourceFunc func(ctx context.Context, req domain.FactorRequest) (float64, error)

func (f sourceFunc) Estimate(ctx context.Context, req domain.FactorRequest) (float64, error) {
	return f(ctx, req)
}

type catalogFunc func(ctx context.Context, country string, limit int) ([]domain.OffsetProject, error)

func (f catalogFunc) ActiveProjects(ctx context.Context, country string, limit int) ([]domain.OffsetProject, error) {
	return f(ctx, country, limit)
}

type serverOptions struct {
	source      domain.EmissionSource
	catalog     domain.OffsetCatalog
	footprints  domain.FootprintRepository
	disableAuth bool
}

func newTestHandler(t *testing.T, opts serverOptions) (http.Handler, *memory.DB) {
	t.Helper()

	db := memory.New()
	if opts.source == nil {
		opts.source = sourceFunc(func(context.Context, domain.FactorRequest) (float64, error) {
			return 42.5, nil
		})
	}
	if opts.catalog == nil {
		opts.catalog = catalogFunc(func(context.Context, string, int) ([]domain.OffsetProject, error) {
			return nil, errors.New("registry down")
		})
	}
	if opts.footprints == nil {
		opts.footprints = db
	}

	srv := adapthttp.New(adapthttp.Deps{
		Estimator:   app.NewEstimatorService(opts.source),
		Footprints:  app.NewFootprintService(opts.footprints, "IN"),
		Dashboard:   app.NewDashboardService(opts.footprints),
		Profiles:    app.NewProfileService(db, opts.footprints),
		Offsets:     app.NewOffsetService(opts.catalog, "IN"),
		Auth:        app.NewAuthService(db, memory.NewSessionRepo(db)),
		DisableAuth: opts.disableAuth,
	})
	return srv.Handler(), db
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestActivities(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodGet, "/api/activities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	activities, ok := body["activities"].([]any)
	if !ok || len(activities) != 16 {
		t.Fatalf("expected 16 activities, got %v", body["activities"])
	}
	categories, ok := body["categories"].(map[string]any)
	if !ok {
		t.Fatalf("expected grouped categories, got %v", body["categories"])
	}
	total := 0
	for _, keys := range categories {
		total += len(keys.([]any))
	}
	if total != 16 {
		t.Errorf("expected category groups to cover all 16 activities, got %d", total)
	}
}

func TestCalculate_SavesEntry(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPost, "/api/calculate",
		`{"activity":"electricity_residential","value":120}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["co2e"] != 42.5 {
		t.Errorf("expected co2e 42.5, got %v", body["co2e"])
	}
	if body["saved"] != true {
		t.Errorf("expected saved entry, got %v", body)
	}
	if body["id"] == nil {
		t.Error("expected entry id in response")
	}

	rec, list := doJSON(t, h, http.MethodGet, "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if list["count"] != 1.0 {
		t.Errorf("expected 1 persisted entry, got %v", list["count"])
	}
}

func TestCalculate_SaveFailureIsSoft(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{
		disableAuth: true,
		footprints:  &failingFootprintRepo{},
	})

	rec, body := doJSON(t, h, http.MethodPost, "/api/calculate",
		`{"activity":"lpg","value":14.2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("a failed save must not fail the calculation, got %d", rec.Code)
	}
	if body["saved"] != false {
		t.Errorf("expected saved=false, got %v", body["saved"])
	}
	if body["saveError"] != "Database save failed" {
		t.Errorf("expected save warning, got %v", body["saveError"])
	}
	if body["co2e"] != 42.5 {
		t.Errorf("expected calculation result intact, got %v", body["co2e"])
	}
}

func TestCalculate_UnsupportedActivity(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPost, "/api/calculate",
		`{"activity":"rocket_fuel","value":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != string(domain.CodeUnsupportedActivity) {
		t.Errorf("unexpected code: %v", body["code"])
	}
}

func TestCalculate_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *domain.EstimateError
		wantStatus int
	}{
		{"auth", &domain.EstimateError{Code: domain.CodeExternalAuth, Message: "Invalid API credentials"}, http.StatusBadGateway},
		{"rate limit", &domain.EstimateError{Code: domain.CodeRateLimited, Message: "API rate limit exceeded. Please try again later."}, http.StatusTooManyRequests},
		{"timeout", &domain.EstimateError{Code: domain.CodeTimeout, Message: "Request timeout. Please try again."}, http.StatusGatewayTimeout},
		{"misconfigured", &domain.EstimateError{Code: domain.CodeServiceMisconfigured, Message: "Climatiq API key not configured"}, http.StatusInternalServerError},
		{"external", &domain.EstimateError{Code: domain.CodeExternalService, Message: "External API error", UpstreamStatus: 500}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, serverOptions{
				disableAuth: true,
				source: sourceFunc(func(context.Context, domain.FactorRequest) (float64, error) {
					return 0, tt.err
				}),
			})

			rec, body := doJSON(t, h, http.MethodPost, "/api/calculate",
				`{"activity":"car_petrol","value":25}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if body["code"] != string(tt.err.Code) {
				t.Errorf("expected code %s, got %v", tt.err.Code, body["code"])
			}
		})
	}
}

func TestCalculate_RateLimitSetsRetryAfter(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{
		disableAuth: true,
		source: sourceFunc(func(context.Context, domain.FactorRequest) (float64, error) {
			return 0, &domain.EstimateError{
				Code:       domain.CodeRateLimited,
				Message:    "API rate limit exceeded. Please try again later.",
				RetryAfter: 30 * time.Second,
			}
		}),
	})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/calculate",
		`{"activity":"rice","value":2}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("expected Retry-After 30, got %q", got)
	}
}

func TestLog_CreatesEntry(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPost, "/api/log",
		`{"activity":"train_urban_metro","value":18,"unit":"passenger-km","co2e":1.2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Errorf("unexpected body: %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected entry in response, got %v", body["data"])
	}
	if data["region"] != "IN" {
		t.Errorf("expected default region IN, got %v", data["region"])
	}
	if data["timestamp"] == nil {
		t.Error("expected defaulted timestamp")
	}
}

func TestLog_RejectsInvalidEntry(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPost, "/api/log",
		`{"activity":"rice","value":2,"unit":"kg","co2e":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("unexpected code: %v", body["code"])
	}
}

func TestChartsDaily(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/log",
		`{"activity":"wheat","value":1,"unit":"kg","co2e":1.6}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed entry failed: %d", rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodGet, "/api/charts/daily?days=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["days"] != 7.0 {
		t.Errorf("expected days 7, got %v", body["days"])
	}
	items, ok := body["items"].([]any)
	if !ok || len(items) != 7 {
		t.Fatalf("expected 7 day points, got %v", body["items"])
	}
	last, _ := items[len(items)-1].(map[string]any)
	if last["totalKg"] != 1.6 {
		t.Errorf("expected today's total 1.6 kg, got %v", last["totalKg"])
	}
}

func TestChartsDaily_ClampsOversizedWindow(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodGet, "/api/charts/daily?days=9999", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items, ok := body["items"].([]any)
	if !ok || len(items) != 366 {
		t.Fatalf("expected window clamped to 366 day points, got %v", len(items))
	}
	if body["days"] != 366.0 {
		t.Errorf("expected days to match the clamped window, got %v", body["days"])
	}
}

func TestOffsets_FallsBackToCurated(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodGet, "/api/offsets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["source"] != app.SourceCurated {
		t.Errorf("expected curated source, got %v", body["source"])
	}
	if body["count"] != 5.0 {
		t.Errorf("expected 5 curated projects, got %v", body["count"])
	}
}

func TestProfile_GetCreatesDefault(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodGet, "/api/user/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true || body["data"] == nil {
		t.Errorf("expected created profile, got %v", body)
	}
}

func TestProfile_UpdateRejectsNegativeGoal(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPut, "/api/user/profile", `{"carbonGoal":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("unexpected code: %v", body["code"])
	}
}

func TestProfile_Update(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, body := doJSON(t, h, http.MethodPut, "/api/user/profile",
		`{"fullName":"Asha Nair","carbonGoal":150}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if data["fullName"] != "Asha Nair" || data["carbonGoal"] != 150.0 {
		t.Errorf("unexpected profile: %v", data)
	}
}

func TestStats(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{disableAuth: true})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/log",
		`{"activity":"eggs","value":6,"unit":"kg","co2e":3.1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed entry failed: %d", rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodGet, "/api/user/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if data["totalKg"] != 3.1 || data["entries"] != 1.0 {
		t.Errorf("unexpected stats: %v", data)
	}
}

func TestRequireAuth_Unauthorized(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{})

	for _, path := range []string{"/api/log", "/api/charts/daily", "/api/user/profile", "/api/user/stats"} {
		method := http.MethodGet
		if path == "/api/log" {
			method = http.MethodPost
		}
		rec, body := doJSON(t, h, method, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
			continue
		}
		if body["code"] != "MISSING_TOKEN" {
			t.Errorf("%s: unexpected code %v", path, body["code"])
		}
	}
}

func TestSessionCookieAuth(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/setup",
		`{"username":"asha@example.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("setup failed: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/login",
		`{"username":"asha@example.com","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected session cookie after login")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	req.AddCookie(session)
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to pass, got %d", rec2.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(session)
	rec3 := httptest.NewRecorder()
	h.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec3.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	req.AddCookie(session)
	rec4 := httptest.NewRecorder()
	h.ServeHTTP(rec4, req)
	if rec4.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec4.Code)
	}
}

func TestSetup_RejectsSecondUser(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/setup",
		`{"username":"first","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first setup failed: %d", rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodPost, "/api/auth/setup",
		`{"username":"second","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for second setup, got %d", rec.Code)
	}
	if body["code"] != "SETUP_ERROR" {
		t.Errorf("unexpected code: %v", body["code"])
	}
}

func TestAuthConfig(t *testing.T) {
	h, _ := newTestHandler(t, serverOptions{})

	rec, body := doJSON(t, h, http.MethodGet, "/api/auth/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["sso_enabled"] != false {
		t.Errorf("expected sso disabled, got %v", body["sso_enabled"])
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/config", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}

// failingFootprintRepo errors on every persistence call.
type failingFootprintRepo struct{}

func (failingFootprintRepo) AddEntry(context.Context, domain.FootprintEntry) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingFootprintRepo) ListRecentEntries(context.Context, *int64, int) ([]domain.FootprintEntry, error) {
	return nil, errors.New("connection refused")
}

func (failingFootprintRepo) EntriesForLocalDay(context.Context, int64, string) ([]domain.FootprintEntry, error) {
	return nil, errors.New("connection refused")
}

func (failingFootprintRepo) TotalCO2e(context.Context, int64, time.Time) (float64, int, error) {
	return 0, 0, errors.New("connection refused")
}
