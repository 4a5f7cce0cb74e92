package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carbontrack/internal/domain"
)

// GetProfile returns a user's profile, or nil if none exists yet.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, full_name, location, carbon_goal, updated_at FROM user_profiles WHERE user_id=$1;",
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Location, &p.CarbonGoal, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new profile row.
func (d *DB) CreateProfile(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	var p domain.UserProfile
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO user_profiles(user_id, full_name, location, carbon_goal, updated_at) VALUES($1, $2, $3, $4, $5) RETURNING user_id, full_name, location, carbon_goal, updated_at;",
		profile.UserID, profile.FullName, profile.Location, profile.CarbonGoal, profile.UpdatedAt,
	).Scan(&p.UserID, &p.FullName, &p.Location, &p.CarbonGoal, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies a partial update; nil fields keep their stored value.
func (d *DB) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := d.sql.QueryRowContext(ctx,
		"UPDATE user_profiles SET full_name=COALESCE($2, full_name), location=COALESCE($3, location), carbon_goal=COALESCE($4, carbon_goal), updated_at=$5 WHERE user_id=$1 RETURNING user_id, full_name, location, carbon_goal, updated_at;",
		userID, upd.FullName, upd.Location, upd.CarbonGoal, time.Now().UTC(),
	).Scan(&p.UserID, &p.FullName, &p.Location, &p.CarbonGoal, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
