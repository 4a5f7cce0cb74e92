// Package goldstandard implements the OffsetCatalog port against the Gold
// Standard project registry.
package goldstandard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"carbontrack/internal/domain"
)

const (
	// DefaultBaseURL is the public Gold Standard registry.
	DefaultBaseURL = "https://registry.goldstandard.org"
	// defaultTimeout is short: suggestions degrade to a curated list, so a
	// slow registry must not hold up the dashboard.
	defaultTimeout = 5 * time.Second

	userAgent = "carbontrack/1.0"
)

// Client queries the registry's project search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. baseURL falls back to the public registry if empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// registryProject tolerates the registry's drifting field names.
type registryProject struct {
	ID               string   `json:"id"`
	ProjectID        string   `json:"project_id"`
	Title            string   `json:"title"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Summary          string   `json:"summary"`
	Location         string   `json:"location"`
	Country          string   `json:"country"`
	ProjectType      string   `json:"project_type"`
	Type             string   `json:"type"`
	Status           string   `json:"status"`
	URL              string   `json:"url"`
	Link             string   `json:"link"`
	CreditPrice      *float64 `json:"credit_price"`
	AvailableCredits *int64   `json:"available_credits"`
}

// ActiveProjects returns active offset projects registered in country.
func (c *Client) ActiveProjects(ctx context.Context, country string, limit int) ([]domain.OffsetProject, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("status", "active")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry search: unexpected status %d", resp.StatusCode)
	}

	var raw []registryProject
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("registry search: decode: %w", err)
	}

	projects := make([]domain.OffsetProject, 0, len(raw))
	for _, p := range raw {
		projects = append(projects, mapProject(p))
	}
	return projects, nil
}

func mapProject(p registryProject) domain.OffsetProject {
	id := coalesce(p.ID, p.ProjectID)
	out := domain.OffsetProject{
		ID:               id,
		Title:            coalesce(p.Title, p.Name, "Untitled Project"),
		Description:      coalesce(p.Description, p.Summary, "No description available"),
		Location:         coalesce(p.Location, p.Country, "India"),
		ProjectType:      coalesce(p.ProjectType, p.Type, "Carbon Offset"),
		Status:           coalesce(p.Status, "active"),
		URL:              coalesce(p.URL, p.Link),
		CreditPrice:      p.CreditPrice,
		AvailableCredits: p.AvailableCredits,
	}
	if out.URL == "" {
		out.URL = DefaultBaseURL + "/projects/details/" + id
	}
	return out
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
