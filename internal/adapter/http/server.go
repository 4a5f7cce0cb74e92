// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"carbontrack/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional SSO configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Deps bundles everything the Server routes to.
type Deps struct {
	Estimator  *app.EstimatorService
	Footprints *app.FootprintService
	Dashboard  *app.DashboardService
	Profiles   *app.ProfileService
	Offsets    *app.OffsetService
	Auth       *app.AuthService
	OIDC       OIDCConfig
	WebDir     string

	// DisableAuth makes every request act as a fixed test user. Tests only.
	DisableAuth bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	estimator   *app.EstimatorService
	footprints  *app.FootprintService
	dashboard   *app.DashboardService
	profiles    *app.ProfileService
	offsets     *app.OffsetService
	authSvc     *app.AuthService
	oidcConfig  OIDCConfig
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(deps Deps) *Server {
	return &Server{
		estimator:   deps.Estimator,
		footprints:  deps.Footprints,
		dashboard:   deps.Dashboard,
		profiles:    deps.Profiles,
		offsets:     deps.Offsets,
		authSvc:     deps.Auth,
		oidcConfig:  deps.OIDC,
		webDir:      deps.WebDir,
		disableAuth: deps.DisableAuth,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Server is up and running"})
	})

	api.HandleFunc("/activities", s.handleActivities)
	api.HandleFunc("/calculate", s.optionalAuth(s.handleCalculate))
	api.HandleFunc("/log", s.requireAuth(s.handleLog))
	api.HandleFunc("/entries", s.optionalAuth(s.handleEntries))

	api.HandleFunc("/charts/daily", s.requireAuth(s.handleChartsDaily))
	api.HandleFunc("/offsets", s.handleOffsets)

	api.HandleFunc("/user/profile", s.requireAuth(s.handleProfile))
	api.HandleFunc("/user/stats", s.requireAuth(s.handleStats))

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(root))
}
