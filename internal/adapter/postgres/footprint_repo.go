package postgres

import (
	"context"
	"database/sql"
	"time"

	"carbontrack/internal/domain"
)

// AddEntry inserts a footprint entry and returns its generated id.
func (d *DB) AddEntry(ctx context.Context, entry domain.FootprintEntry) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO footprint_entries(user_id, activity, value, unit, co2e, region, recorded_at) VALUES($1, $2, $3, $4, $5, $6, $7) RETURNING id;",
		entry.UserID, entry.Activity, entry.Value, entry.Unit, entry.CO2e, entry.Region, entry.RecordedAt.UTC(),
	).Scan(&id)
	return id, err
}

// ListRecentEntries returns the most recent entries up to limit. A nil
// userID returns entries across all users, anonymous ones included.
func (d *DB) ListRecentEntries(ctx context.Context, userID *int64, limit int) ([]domain.FootprintEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID != nil {
		rows, err = d.sql.QueryContext(ctx,
			"SELECT id, user_id, activity, value, unit, co2e, region, recorded_at FROM footprint_entries WHERE user_id=$1 ORDER BY recorded_at DESC LIMIT $2;",
			*userID, limit)
	} else {
		rows, err = d.sql.QueryContext(ctx,
			"SELECT id, user_id, activity, value, unit, co2e, region, recorded_at FROM footprint_entries ORDER BY recorded_at DESC LIMIT $1;",
			limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return scanEntries(rows, limit)
}

// EntriesForLocalDay returns a user's entries recorded within a local
// calendar day.
func (d *DB) EntriesForLocalDay(ctx context.Context, userID int64, localDay string) ([]domain.FootprintEntry, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, user_id, activity, value, unit, co2e, region, recorded_at FROM footprint_entries WHERE user_id=$1 AND recorded_at >= $2 AND recorded_at < $3 ORDER BY recorded_at DESC;",
		userID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return scanEntries(rows, 0)
}

// TotalCO2e returns the summed CO2e and entry count for a user since the
// given instant; a zero time covers everything.
func (d *DB) TotalCO2e(ctx context.Context, userID int64, since time.Time) (float64, int, error) {
	var (
		total float64
		count int
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(co2e), 0), COUNT(*) FROM footprint_entries WHERE user_id=$1 AND recorded_at >= $2;",
		userID, since.UTC(),
	).Scan(&total, &count)
	return total, count, err
}

func scanEntries(rows *sql.Rows, sizeHint int) ([]domain.FootprintEntry, error) {
	out := make([]domain.FootprintEntry, 0, sizeHint)
	for rows.Next() {
		var (
			e      domain.FootprintEntry
			userID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &userID, &e.Activity, &e.Value, &e.Unit, &e.CO2e, &e.Region, &e.RecordedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := userID.Int64
			e.UserID = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
