package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/bird/internal/cursor"
)

// Profile is a named cursor tuning.
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ProcessVariance float64   `json:"process_variance"`
	RScale          float64   `json:"r_scale"`
	SelectDepth     float64   `json:"select_depth"`
	ReleaseDepth    float64   `json:"release_depth"`
	Near            float64   `json:"near"`
	Far             float64   `json:"far"`
	TwistReverse    bool      `json:"twist_reverse"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileFromConfig copies the tuning of c into a new profile.
func ProfileFromConfig(id, name string, c cursor.Config) *Profile {
	return &Profile{
		ID:              id,
		Name:            name,
		ProcessVariance: c.ProcessVariance,
		RScale:          c.RScale,
		SelectDepth:     c.SelectDepth,
		ReleaseDepth:    c.ReleaseDepth,
		Near:            c.Range.Near,
		Far:             c.Range.Far,
		TwistReverse:    c.TwistReverse,
	}
}

// CursorConfig returns the profile applied over the cursor defaults.
func (p *Profile) CursorConfig() cursor.Config {
	c := cursor.DefaultConfig()
	c.ProcessVariance = p.ProcessVariance
	c.RScale = p.RScale
	c.SelectDepth = p.SelectDepth
	c.ReleaseDepth = p.ReleaseDepth
	c.Range = cursor.RangeMapper{Near: p.Near, Far: p.Far}
	c.TwistReverse = p.TwistReverse
	return c
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, process_variance, r_scale, select_depth, release_depth, near, far, twist_reverse, created_at, updated_at`

// Create inserts a new profile. The tuning must pass cursor validation.
func (r *ProfileRepository) Create(p *Profile) error {
	if err := p.CursorConfig().Validate(); err != nil {
		return err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.ProcessVariance, p.RScale, p.SelectDepth, p.ReleaseDepth,
		p.Near, p.Far, boolInt(p.TwistReverse), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

// GetByName retrieves a profile by its unique name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
}

// List retrieves all profiles ordered by name.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	if err := p.CursorConfig().Validate(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, process_variance = ?, r_scale = ?, select_depth = ?,
		 release_depth = ?, near = ?, far = ?, twist_reverse = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.ProcessVariance, p.RScale, p.SelectDepth, p.ReleaseDepth,
		p.Near, p.Far, boolInt(p.TwistReverse), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a profile by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*Profile, error) {
	p := &Profile{}
	var reverse int
	err := s.Scan(&p.ID, &p.Name, &p.ProcessVariance, &p.RScale, &p.SelectDepth, &p.ReleaseDepth,
		&p.Near, &p.Far, &reverse, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.TwistReverse = reverse != 0
	return p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
