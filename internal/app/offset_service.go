package app

import (
	"context"
	"log"

	"carbontrack/internal/domain"
)

// OffsetService suggests carbon-offset projects. It prefers live registry
// data and falls back to a curated list when the registry is unreachable or
// returns nothing.
type OffsetService struct {
	catalog domain.OffsetCatalog
	country string
}

// NewOffsetService creates an OffsetService querying the given catalog for
// projects in country.
func NewOffsetService(catalog domain.OffsetCatalog, country string) *OffsetService {
	return &OffsetService{catalog: catalog, country: country}
}

// Source labels reported alongside offset suggestions.
const (
	SourceRegistry = "Gold Standard Registry"
	SourceCurated  = "Curated India Projects"
)

// Suggestions returns up to ten active offset projects and the label of the
// data source that supplied them. Registry failures degrade to the curated
// list rather than erroring: offset suggestions must never take the core
// tracking functionality down with them.
func (s *OffsetService) Suggestions(ctx context.Context) ([]domain.OffsetProject, string) {
	projects, err := s.catalog.ActiveProjects(ctx, s.country, 10)
	if err != nil {
		log.Printf("offset registry unavailable, using curated projects: %v", err)
	}
	if err == nil && len(projects) > 0 {
		return projects, SourceRegistry
	}

	curated := make([]domain.OffsetProject, len(curatedProjects))
	copy(curated, curatedProjects)
	return curated, SourceCurated
}

func price(v float64) *float64 { return &v }
func credits(v int64) *int64   { return &v }

// curatedProjects is the static suggestion list served when the registry is
// unavailable.
var curatedProjects = []domain.OffsetProject{
	{
		ID:               "gs-001-in",
		Title:            "Solar Power Project - Rajasthan",
		Description:      "Large-scale solar photovoltaic power generation project in Rajasthan, India. This project generates clean renewable energy and displaces grid electricity from fossil fuel sources.",
		Location:         "Rajasthan, India",
		ProjectType:      "Renewable Energy",
		Status:           "active",
		URL:              "https://registry.goldstandard.org/projects/details/2156",
		CreditPrice:      price(12.50),
		AvailableCredits: credits(50000),
	},
	{
		ID:               "gs-002-in",
		Title:            "Wind Power Project - Tamil Nadu",
		Description:      "Wind energy generation project in Tamil Nadu contributing to India's renewable energy targets and reducing carbon emissions from the electricity grid.",
		Location:         "Tamil Nadu, India",
		ProjectType:      "Renewable Energy",
		Status:           "active",
		URL:              "https://registry.goldstandard.org/projects/details/1847",
		CreditPrice:      price(11.75),
		AvailableCredits: credits(75000),
	},
	{
		ID:               "gs-003-in",
		Title:            "Improved Cookstoves - Rural India",
		Description:      "Distribution of efficient cookstoves to rural households across India, reducing fuel consumption and indoor air pollution while generating carbon credits.",
		Location:         "Multiple States, India",
		ProjectType:      "Energy Efficiency",
		Status:           "active",
		URL:              "https://registry.goldstandard.org/projects/details/1923",
		CreditPrice:      price(15.00),
		AvailableCredits: credits(25000),
	},
	{
		ID:               "gs-004-in",
		Title:            "Biogas Plant - Maharashtra",
		Description:      "Community biogas project converting agricultural waste into clean energy for rural communities in Maharashtra, reducing methane emissions.",
		Location:         "Maharashtra, India",
		ProjectType:      "Waste Management",
		Status:           "active",
		URL:              "https://registry.goldstandard.org/projects/details/2089",
		CreditPrice:      price(13.25),
		AvailableCredits: credits(30000),
	},
	{
		ID:               "gs-005-in",
		Title:            "Afforestation Project - Himachal Pradesh",
		Description:      "Large-scale tree plantation and forest restoration project in Himachal Pradesh, sequestering carbon while providing livelihood opportunities.",
		Location:         "Himachal Pradesh, India",
		ProjectType:      "Forestry",
		Status:           "active",
		URL:              "https://registry.goldstandard.org/projects/details/1756",
		CreditPrice:      price(18.00),
		AvailableCredits: credits(40000),
	},
}
