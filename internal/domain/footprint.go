package domain

import (
	"context"
	"time"
)

// FootprintEntry is a persisted emission record. UserID is nil for entries
// logged by anonymous calculations.
type FootprintEntry struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"userId,omitempty"`
	Activity   string    `json:"activity"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	CO2e       float64   `json:"co2e"`
	Region     string    `json:"region"`
	RecordedAt time.Time `json:"timestamp"`
}

// FootprintRepository is the port for footprint-entry persistence.
type FootprintRepository interface {
	AddEntry(ctx context.Context, entry FootprintEntry) (int64, error)
	ListRecentEntries(ctx context.Context, userID *int64, limit int) ([]FootprintEntry, error)
	EntriesForLocalDay(ctx context.Context, userID int64, localDay string) ([]FootprintEntry, error)
	TotalCO2e(ctx context.Context, userID int64, since time.Time) (total float64, count int, err error)
}
