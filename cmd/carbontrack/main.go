package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"carbontrack/internal/adapter/climatiq"
	"carbontrack/internal/adapter/goldstandard"
	adapthttp "carbontrack/internal/adapter/http"
	"carbontrack/internal/adapter/postgres"
	"carbontrack/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")
	region := env("DEFAULT_REGION", "IN")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	if os.Getenv("CLIMATIQ_API_KEY") == "" {
		log.Print("CLIMATIQ_API_KEY is not set; calculations will fail until it is configured")
	}
	source := climatiq.New(climatiq.Config{
		APIKey:  os.Getenv("CLIMATIQ_API_KEY"),
		BaseURL: os.Getenv("CLIMATIQ_BASE_URL"),
	})
	catalog := goldstandard.New(os.Getenv("OFFSET_REGISTRY_URL"))

	sessionRepo := postgres.NewSessionRepo(db)

	h := adapthttp.New(adapthttp.Deps{
		Estimator:  app.NewEstimatorService(source),
		Footprints: app.NewFootprintService(db, region),
		Dashboard:  app.NewDashboardService(db),
		Profiles:   app.NewProfileService(db, db),
		Offsets:    app.NewOffsetService(catalog, region),
		Auth:       app.NewAuthService(db, sessionRepo),
		OIDC:       oidcConfig(),
		WebDir:     webDir,
	}).Handler()

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// oidcConfig enables Google (or any OIDC) sign-in when the provider env vars
// are present. Identity verification is fully delegated to the provider.
func oidcConfig() adapthttp.OIDCConfig {
	issuer := os.Getenv("OIDC_ISSUER")
	clientID := os.Getenv("OIDC_CLIENT_ID")
	clientSecret := os.Getenv("OIDC_CLIENT_SECRET")
	redirectURL := os.Getenv("OIDC_REDIRECT_URL")
	if issuer == "" || clientID == "" || clientSecret == "" || redirectURL == "" {
		return adapthttp.OIDCConfig{}
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		log.Printf("oidc provider init failed, sso disabled: %v", err)
		return adapthttp.OIDCConfig{}
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
