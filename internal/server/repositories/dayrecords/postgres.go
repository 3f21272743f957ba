package dayrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/outfitcal/daybook/internal/common"
	"github.com/outfitcal/daybook/internal/dbx"
	"github.com/outfitcal/daybook/internal/server/models"
)

// PostgresRepository persists the day_records table. Empty comment, image
// path and place strings are stored as NULL; the weather snapshot columns
// are written together or not at all.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, date string) (*models.DayRecord, error) {
	query :=
		`SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), comment, image_path, location_enabled,
		        lat, lon, place, weather_temp_c, weather_code, weather_label,
		        created_at, updated_at
		 FROM day_records
		 WHERE user_id = $1 AND date = $2
		 `

	rec := &models.DayRecord{}
	var deviceEnabled bool
	var comment, imagePath, place, weatherLabel sql.NullString
	var lat, lon, tempC sql.NullFloat64
	var code sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&rec.ID, &rec.UserID, &rec.Date, &comment, &imagePath, &deviceEnabled,
		&lat, &lon, &place, &tempC, &code, &weatherLabel,
		&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.Mode = models.ModeFromDeviceEnabled(deviceEnabled)
	rec.Comment = comment.String
	rec.ImagePath = imagePath.String
	rec.Place = place.String
	if lat.Valid {
		rec.Lat = &lat.Float64
	}
	if lon.Valid {
		rec.Lon = &lon.Float64
	}
	if tempC.Valid && code.Valid {
		rec.Weather = &models.Weather{
			TempC: tempC.Float64,
			Code:  int(code.Int64),
			Label: weatherLabel.String,
		}
	}

	return rec, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.DayRecord) (*models.DayRecord, error) {
	query :=
		`INSERT INTO day_records
		     (user_id, date, comment, image_path, location_enabled, lat, lon, place,
		      weather_temp_c, weather_code, weather_label)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET comment = EXCLUDED.comment,
		     image_path = EXCLUDED.image_path,
		     location_enabled = EXCLUDED.location_enabled,
		     lat = EXCLUDED.lat,
		     lon = EXCLUDED.lon,
		     place = EXCLUDED.place,
		     weather_temp_c = EXCLUDED.weather_temp_c,
		     weather_code = EXCLUDED.weather_code,
		     weather_label = EXCLUDED.weather_label,
		     updated_at = now()
		 RETURNING id, created_at, updated_at
		 `

	var tempC sql.NullFloat64
	var code sql.NullInt64
	var label sql.NullString
	if rec.Weather != nil {
		tempC = sql.NullFloat64{Float64: rec.Weather.TempC, Valid: true}
		code = sql.NullInt64{Int64: int64(rec.Weather.Code), Valid: true}
		label = sql.NullString{String: rec.Weather.Label, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Date,
		nullString(rec.Comment), nullString(rec.ImagePath),
		rec.Mode.DeviceEnabled(),
		nullFloat(rec.Lat), nullFloat(rec.Lon),
		nullString(rec.Place),
		tempC, code, label).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
