package domain

import "context"

// OffsetProject is a purchasable carbon-offset project suggestion.
type OffsetProject struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	ProjectType      string   `json:"projectType"`
	Status           string   `json:"status"`
	URL              string   `json:"url"`
	CreditPrice      *float64 `json:"creditPrice"`
	AvailableCredits *int64   `json:"availableCredits"`
}

// OffsetCatalog is the port for an external offset-project registry.
type OffsetCatalog interface {
	ActiveProjects(ctx context.Context, country string, limit int) ([]OffsetProject, error)
}
