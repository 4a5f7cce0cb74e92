package domain

import (
	"context"
	"time"
)

// UserProfile holds dashboard preferences for a user. CarbonGoal is the
// monthly CO2e target in kilograms; zero means no goal set.
type UserProfile struct {
	UserID     int64     `json:"userId"`
	FullName   string    `json:"fullName"`
	Location   string    `json:"location"`
	CarbonGoal float64   `json:"carbonGoal"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	FullName   *string
	Location   *string
	CarbonGoal *float64
}

// ProfileRepository is the port for user-profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (*UserProfile, error)
	CreateProfile(ctx context.Context, profile UserProfile) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*UserProfile, error)
}
