package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/outfitcal/daybook/internal/common"
	"github.com/outfitcal/daybook/internal/geo"
	"github.com/outfitcal/daybook/internal/meteo"
	sc "github.com/outfitcal/daybook/internal/server/config"
	"github.com/outfitcal/daybook/internal/server/models"
	"github.com/outfitcal/daybook/internal/server/repositories/repomanager"
	"github.com/outfitcal/daybook/internal/weathercode"
)

// Geocoder resolves a free-text place name to its best match.
type Geocoder interface {
	Search(ctx context.Context, query string) (*geo.Place, error)
}

// WeatherSource resolves a coordinate to the current conditions.
type WeatherSource interface {
	Fetch(ctx context.Context, lat, lon float64) (*meteo.Current, error)
}

// Coordinate is a device-supplied location fix.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ImageUpload is a newly attached photo to be stored on save.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// DayView is what a page load renders: the record fields plus a short-lived
// signed URL for the stored photo, when one exists. Persisted is false when
// the date has never been saved and Record is a blank draft.
type DayView struct {
	Record    *models.DayRecord
	ImageURL  string
	Persisted bool
}

// WeatherStage is the result of one weather resolution. It is staged into
// the caller's working state and persists nothing on the day record by
// itself. Weather is nil when the upstream payload omitted the temperature
// or the condition code; a partial snapshot is never produced.
type WeatherStage struct {
	Mode       models.LocationMode
	Lat        float64
	Lon        float64
	Place      string
	Weather    *models.Weather
	ObservedAt string
}

// DaybookService orchestrates the per-day record workflow: loading a date's
// record, resolving weather for the active location mode, and persisting
// saves. All collaborators are interfaces so tests can fake each of them
// independently.
type DaybookService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	storage      ObjectStorage
	geocoder     Geocoder
	weather      WeatherSource
	signedURLTTL time.Duration
}

func NewDaybookService(db *sql.DB, m repomanager.RepositoryManager, storage ObjectStorage,
	geocoder Geocoder, weather WeatherSource, cfg *sc.Config) *DaybookService {
	return &DaybookService{
		db:           db,
		repomanager:  m,
		storage:      storage,
		geocoder:     geocoder,
		weather:      weather,
		signedURLTTL: cfg.SignedURLTTL,
	}
}

// Settings returns the account's settings row, creating it on first use
// with device mode, an empty city and no coordinate.
func (s *DaybookService) Settings(ctx context.Context, userID string) (*models.Settings, error) {
	repo := s.repomanager.Settings(s.db)

	st, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return repo.Upsert(ctx, &models.Settings{UserID: userID, Mode: models.ModeDeviceLocation})
		}
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	return st, nil
}

// UpdateSettings changes the location mode and city while keeping the last
// resolved coordinate. NamedCity mode does not require the city to be
// filled in yet; the blank-city check happens on weather refresh.
func (s *DaybookService) UpdateSettings(ctx context.Context, userID string, mode models.LocationMode, city string) (*models.Settings, error) {
	st, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	st.Mode = mode
	st.City = strings.TrimSpace(city)

	repo := s.repomanager.Settings(s.db)
	updated, err := repo.Upsert(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	return updated, nil
}

// Load fetches the record for (userID, date). An unsaved date yields a
// blank draft, not a persisted row. A stored photo is resolved to a fresh
// signed display URL; a signing failure degrades to an empty URL rather
// than failing the load, so loading stays idempotent.
func (s *DaybookService) Load(ctx context.Context, userID, date string) (*DayView, error) {
	if !models.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)
	}

	repo := s.repomanager.DayRecords(s.db)
	rec, err := repo.Get(ctx, userID, date)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			blank := &models.DayRecord{UserID: userID, Date: date, Mode: models.ModeDeviceLocation}
			return &DayView{Record: blank}, nil
		}
		return nil, fmt.Errorf("error loading day record: %w", err)
	}

	return &DayView{Record: rec, ImageURL: s.signImage(ctx, rec.ImagePath), Persisted: true}, nil
}

// RefreshWeather resolves current weather for the account's stored location
// mode and returns the staged result. Nothing is written to the day record;
// the mode choice (and, in city mode, the city and resolved coordinate) is
// persisted back to Settings. On any failure no partial stage is returned,
// leaving the caller's working state untouched.
//
// In device mode the caller must supply the coordinate fix it acquired
// (browser/device geolocation, bounded by the client's timeout); a missing
// fix is a validation error.
func (s *DaybookService) RefreshWeather(ctx context.Context, userID string, fix *Coordinate) (*WeatherStage, error) {
	st, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch st.Mode {
	case models.ModeNamedCity:
		return s.refreshByCity(ctx, st)
	default:
		return s.refreshByDevice(ctx, st, fix)
	}
}

func (s *DaybookService) refreshByDevice(ctx context.Context, st *models.Settings, fix *Coordinate) (*WeatherStage, error) {
	if fix == nil {
		return nil, fmt.Errorf("%w: no device location fix available", common.ErrValidation)
	}

	cur, err := s.weather.Fetch(ctx, fix.Lat, fix.Lon)
	if err != nil {
		return nil, err
	}

	stage := &WeatherStage{
		Mode:       models.ModeDeviceLocation,
		Lat:        fix.Lat,
		Lon:        fix.Lon,
		Weather:    snapshotFromCurrent(cur),
		ObservedAt: cur.ObservedAt,
	}

	// Mode confirmation only: city and last coordinate keep their values.
	st.Mode = models.ModeDeviceLocation
	if _, err := s.repomanager.Settings(s.db).Upsert(ctx, st); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}

	return stage, nil
}

func (s *DaybookService) refreshByCity(ctx context.Context, st *models.Settings) (*WeatherStage, error) {
	city := strings.TrimSpace(st.City)
	if city == "" {
		return nil, fmt.Errorf("%w: enter a city to resolve weather while device location is off", common.ErrValidation)
	}

	place, err := s.geocoder.Search(ctx, city)
	if err != nil {
		return nil, err
	}

	cur, err := s.weather.Fetch(ctx, place.Lat, place.Lon)
	if err != nil {
		return nil, err
	}

	stage := &WeatherStage{
		Mode:       models.ModeNamedCity,
		Lat:        place.Lat,
		Lon:        place.Lon,
		Place:      place.DisplayName,
		Weather:    snapshotFromCurrent(cur),
		ObservedAt: cur.ObservedAt,
	}

	st.Mode = models.ModeNamedCity
	st.City = city
	st.Lat = &place.Lat
	st.Lon = &place.Lon
	if _, err := s.repomanager.Settings(s.db).Upsert(ctx, st); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}

	return stage, nil
}

// Save commits the working record for (userID, date). A newly attached
// image is uploaded first under a fresh unique key; the previous object, if
// any, is abandoned rather than deleted. When the draft carries no weather
// snapshot, one refresh pass runs first, best-effort: its result is merged
// into the draft before the upsert payload is built, and its failure is
// swallowed so the save proceeds with null weather. The upsert conflicts on
// (user_id, date), so a second save overwrites the same row. On success the
// photo URL is re-derived fresh; earlier signed URLs are time-limited and
// must not be reused.
func (s *DaybookService) Save(ctx context.Context, userID, date string, draft *models.DayRecord, image *ImageUpload, fix *Coordinate) (*DayView, error) {
	if !models.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)
	}
	if draft == nil {
		draft = &models.DayRecord{}
	}
	draft.UserID = userID
	draft.Date = date

	if image != nil {
		key := storageKey(userID, date, image.FileName)
		if err := s.storage.Upload(ctx, key, image.Data, image.ContentType); err != nil {
			return nil, err
		}
		draft.ImagePath = key
	}

	if draft.Weather == nil {
		// Best effort: a failed refresh must not block the save.
		if stage, err := s.RefreshWeather(ctx, userID, fix); err == nil {
			draft.Mode = stage.Mode
			draft.Lat = &stage.Lat
			draft.Lon = &stage.Lon
			draft.Place = stage.Place
			draft.Weather = stage.Weather
		}
	}

	repo := s.repomanager.DayRecords(s.db)
	rec, err := repo.Upsert(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("error saving day record: %w", err)
	}

	return &DayView{Record: rec, ImageURL: s.signImage(ctx, rec.ImagePath), Persisted: true}, nil
}

// signImage derives a fresh signed display URL, or an empty string when
// there is no photo or signing fails.
func (s *DaybookService) signImage(ctx context.Context, imagePath string) string {
	if imagePath == "" {
		return ""
	}
	url, err := s.storage.SignedURL(ctx, imagePath, s.signedURLTTL)
	if err != nil {
		return ""
	}
	return url
}

// snapshotFromCurrent builds an all-or-nothing weather snapshot. A payload
// missing the temperature or the code yields no snapshot at all.
func snapshotFromCurrent(cur *meteo.Current) *models.Weather {
	if cur == nil || cur.TemperatureC == nil || cur.Code == nil {
		return nil
	}
	return &models.Weather{
		TempC: *cur.TemperatureC,
		Code:  *cur.Code,
		Label: weathercode.Label(*cur.Code),
	}
}

// storageKey builds the object key for an uploaded photo, scoped by account
// and date with a random filename. The extension is taken from the original
// filename, defaulting to .jpg.
func storageKey(userID, date, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%s%s", userID, date, uuid.New(), ext)
}
