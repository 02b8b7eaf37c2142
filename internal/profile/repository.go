// Package profile resolves user profiles for the status lookup screen.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound indicates that no profile matches the supplied credentials.
var ErrNotFound = errors.New("profile not found")

// Profile is the key-value record behind the status screen.
type Profile struct {
	Email      string
	LicenseKey string
	BalanceUSD int
	ValidUntil time.Time
}

// Finder resolves a profile by its credentials.
type Finder interface {
	Find(ctx context.Context, email, licenseKey string) (*Profile, error)
}

// Repository is the SQL-backed Finder implementation.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRepository creates a SQL-backed profile repository.
func NewRepository(db *sql.DB, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}

	return &Repository{
		db:  db,
		log: log,
	}
}

// Find retrieves the profile matching both the email and the license key.
func (r *Repository) Find(ctx context.Context, email, licenseKey string) (*Profile, error) {
	const query = `
		SELECT email, license_key, balance_usd, valid_until
		FROM profiles
		WHERE email = $1 AND license_key = $2
	`

	row := r.db.QueryRowContext(ctx, query, email, licenseKey)

	var p Profile
	if err := row.Scan(&p.Email, &p.LicenseKey, &p.BalanceUSD, &p.ValidUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.log.Error("failed to fetch profile", slog.String("email", email), slog.Any("error", err))
		return nil, fmt.Errorf("select profile: %w", err)
	}

	return &p, nil
}
