// Package memory implements in-memory repositories for development and
// testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"carbontrack/internal/domain"
)

// DB implements the domain repositories with in-memory storage.
type DB struct {
	mu       sync.Mutex
	entries  []domain.FootprintEntry
	profiles map[int64]domain.UserProfile
	users    []domain.User
	sessions map[string]domain.Session

	entryIDCounter int64
	userIDCounter  int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[int64]domain.UserProfile),
		sessions: make(map[string]domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.FootprintRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- FootprintRepository ---

// AddEntry stores a footprint entry.
func (db *DB) AddEntry(ctx context.Context, entry domain.FootprintEntry) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entryIDCounter++
	entry.ID = db.entryIDCounter
	entry.RecordedAt = entry.RecordedAt.UTC()
	db.entries = append(db.entries, entry)
	return entry.ID, nil
}

// ListRecentEntries lists the most recent entries, optionally user-scoped.
func (db *DB) ListRecentEntries(ctx context.Context, userID *int64, limit int) ([]domain.FootprintEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.FootprintEntry, 0, len(db.entries))
	for _, e := range db.entries {
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			continue
		}
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// EntriesForLocalDay returns a user's entries within a local calendar day.
func (db *DB) EntriesForLocalDay(ctx context.Context, userID int64, localDay string) ([]domain.FootprintEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var result []domain.FootprintEntry
	for _, e := range db.entries {
		if e.UserID == nil || *e.UserID != userID {
			continue
		}
		// Compare in UTC, matching how Postgres stores and compares.
		if !e.RecordedAt.Before(dayStart.UTC()) && e.RecordedAt.Before(dayEnd.UTC()) {
			result = append(result, e)
		}
	}
	return result, nil
}

// TotalCO2e sums a user's CO2e since the given instant.
func (db *DB) TotalCO2e(ctx context.Context, userID int64, since time.Time) (float64, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var (
		total float64
		count int
	)
	for _, e := range db.entries {
		if e.UserID == nil || *e.UserID != userID {
			continue
		}
		if e.RecordedAt.Before(since.UTC()) {
			continue
		}
		total += e.CO2e
		count++
	}
	return total, count, nil
}

// --- ProfileRepository ---

// GetProfile returns a profile, or nil if none exists.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if p, ok := db.profiles[userID]; ok {
		ret := p
		return &ret, nil
	}
	return nil, nil
}

// CreateProfile stores a new profile.
func (db *DB) CreateProfile(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.profiles[profile.UserID]; exists {
		return nil, errors.New("profile already exists")
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	db.profiles[profile.UserID] = profile
	ret := profile
	return &ret, nil
}

// UpdateProfile applies a partial update.
func (db *DB) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	if upd.CarbonGoal != nil {
		p.CarbonGoal = *upd.CarbonGoal
	}
	p.UpdatedAt = time.Now().UTC()
	db.profiles[userID] = p
	ret := p
	return &ret, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username, nil if not found.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Username == username {
			ret := db.users[i]
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID, nil if not found.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].ID == id {
			ret := db.users[i]
			return &ret, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	ret := u
	return &ret, nil
}

// Count returns the number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements domain.SessionRepository on the shared DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token, nil if not found.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		ret := s
		return &ret, nil
	}
	return nil, nil
}

// Delete removes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired removes expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	for token, s := range r.db.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.db.sessions, token)
		}
	}
	return nil
}
