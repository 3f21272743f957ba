package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/outfitcal/daybook/internal/common"
	"github.com/outfitcal/daybook/internal/dbx"
	"github.com/outfitcal/daybook/internal/server/models"
)

// PostgresRepository persists the one-row-per-account user_settings table.
// The location mode is stored as the legacy location_enabled boolean and
// converted to models.LocationMode at this boundary.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query :=
		`SELECT user_id, location_enabled, city, lat, lon, updated_at FROM user_settings
		 WHERE user_id = $1
		 `

	s := &models.Settings{}
	var deviceEnabled bool
	var lat, lon sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &deviceEnabled, &s.City, &lat, &lon, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.Mode = models.ModeFromDeviceEnabled(deviceEnabled)
	if lat.Valid {
		s.Lat = &lat.Float64
	}
	if lon.Valid {
		s.Lon = &lon.Float64
	}

	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Settings) (*models.Settings, error) {
	query :=
		`INSERT INTO user_settings (user_id, location_enabled, city, lat, lon, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET location_enabled = EXCLUDED.location_enabled,
		     city = EXCLUDED.city,
		     lat = EXCLUDED.lat,
		     lon = EXCLUDED.lon,
		     updated_at = now()
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.Mode.DeviceEnabled(), s.City, nullFloat(s.Lat), nullFloat(s.Lon)).
		Scan(&s.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
