package app

import (
	"context"
	"errors"
	"time"

	"carbontrack/internal/domain"
)

// ErrGoalInvalid indicates a negative monthly carbon goal.
var ErrGoalInvalid = errors.New("carbonGoal must be >= 0")

// ProfileService encapsulates user-profile and statistics use cases.
type ProfileService struct {
	profiles   domain.ProfileRepository
	footprints domain.FootprintRepository
}

// NewProfileService creates a ProfileService backed by the given
// repositories.
func NewProfileService(profiles domain.ProfileRepository, footprints domain.FootprintRepository) *ProfileService {
	return &ProfileService{profiles: profiles, footprints: footprints}
}

// GetOrCreate returns the user's profile, creating an empty one seeded with
// fullName on first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID int64, fullName string) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	return s.profiles.CreateProfile(ctx, domain.UserProfile{
		UserID:    userID,
		FullName:  fullName,
		UpdatedAt: time.Now().UTC(),
	})
}

// Update applies a partial profile change.
func (s *ProfileService) Update(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	if upd.CarbonGoal != nil && *upd.CarbonGoal < 0 {
		return nil, ErrGoalInvalid
	}
	if _, err := s.GetOrCreate(ctx, userID, ""); err != nil {
		return nil, err
	}
	return s.profiles.UpdateProfile(ctx, userID, upd)
}

// EmissionStats summarises a user's recorded footprint.
type EmissionStats struct {
	TotalKg      float64 `json:"totalKg"`
	Entries      int     `json:"entries"`
	AverageKg    float64 `json:"averageKg"`
	Last30DaysKg float64 `json:"last30DaysKg"`
}

// Stats returns all-time and trailing-30-day aggregates for a user.
func (s *ProfileService) Stats(ctx context.Context, userID int64) (EmissionStats, error) {
	total, count, err := s.footprints.TotalCO2e(ctx, userID, time.Time{})
	if err != nil {
		return EmissionStats{}, err
	}
	recent, _, err := s.footprints.TotalCO2e(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return EmissionStats{}, err
	}

	stats := EmissionStats{TotalKg: total, Entries: count, Last30DaysKg: recent}
	if count > 0 {
		stats.AverageKg = total / float64(count)
	}
	return stats, nil
}
