package app

import (
	"context"
	"time"

	"carbontrack/internal/domain"
)

// DashboardService encapsulates chart data retrieval use cases.
type DashboardService struct {
	repo domain.FootprintRepository
}

// NewDashboardService creates a DashboardService backed by the given
// repository.
func NewDashboardService(repo domain.FootprintRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day        string                      `json:"day"`
	TotalKg    float64                     `json:"totalKg"`
	ByCategory map[domain.Category]float64 `json:"byCategory"`
}

// GetDaily returns per-day CO2e totals for the last days days, split by
// activity category. Activities no longer in the registry are counted in the
// total but not attributed to a category.
func (s *DashboardService) GetDaily(ctx context.Context, userID int64, days int) ([]DayPoint, error) {
	if days > 366 {
		days = 366
	}
	if days < 1 {
		days = 1
	}

	today := time.Now().In(time.Local)
	points := make([]DayPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		dayStr := d.Format("2006-01-02")

		entries, err := s.repo.EntriesForLocalDay(ctx, userID, dayStr)
		if err != nil {
			return nil, err
		}

		point := DayPoint{Day: dayStr, ByCategory: make(map[domain.Category]float64)}
		for _, e := range entries {
			point.TotalKg += e.CO2e
			if def, ok := domain.LookupActivity(e.Activity); ok {
				point.ByCategory[def.Category] += e.CO2e
			}
		}
		points = append(points, point)
	}
	return points, nil
}
