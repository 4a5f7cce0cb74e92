package app

import (
	"context"
	"errors"
	"time"

	"carbontrack/internal/domain"
)

// ErrEntryInvalid indicates a manually logged entry is missing required
// fields or carries non-positive numbers.
var ErrEntryInvalid = errors.New("co2e, activity, value and unit are required and must be positive")

// FootprintService encapsulates footprint-entry use cases.
type FootprintService struct {
	repo          domain.FootprintRepository
	defaultRegion string
}

// NewFootprintService creates a FootprintService backed by the given
// repository. defaultRegion tags entries that do not specify one.
func NewFootprintService(repo domain.FootprintRepository, defaultRegion string) *FootprintService {
	return &FootprintService{repo: repo, defaultRegion: defaultRegion}
}

// Record persists a calculated estimate as a footprint entry. userID is nil
// for anonymous calculations.
func (s *FootprintService) Record(ctx context.Context, est domain.EmissionEstimate, userID *int64) (int64, error) {
	entry := domain.FootprintEntry{
		UserID:     userID,
		Activity:   est.Activity,
		Value:      est.Value,
		Unit:       est.Unit,
		CO2e:       est.CO2e,
		Region:     s.defaultRegion,
		RecordedAt: est.Timestamp,
	}
	return s.repo.AddEntry(ctx, entry)
}

// LogManual validates and persists an entry the client computed earlier, for
// example one calculated while offline. The entry is always associated with
// the authenticated user.
func (s *FootprintService) LogManual(ctx context.Context, userID int64, entry domain.FootprintEntry) (domain.FootprintEntry, error) {
	if entry.Activity == "" || entry.Unit == "" || entry.CO2e <= 0 || entry.Value <= 0 {
		return domain.FootprintEntry{}, ErrEntryInvalid
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	if entry.Region == "" {
		entry.Region = s.defaultRegion
	}
	entry.UserID = &userID

	id, err := s.repo.AddEntry(ctx, entry)
	if err != nil {
		return domain.FootprintEntry{}, err
	}
	entry.ID = id
	return entry, nil
}

// ListRecent returns the most recent entries up to limit, scoped to a user
// when userID is non-nil.
func (s *FootprintService) ListRecent(ctx context.Context, userID *int64, limit int) ([]domain.FootprintEntry, error) {
	return s.repo.ListRecentEntries(ctx, userID, limit)
}
