// Package daybook holds the client-side working state for one calendar
// date: the loaded record, edits in progress, a staged weather snapshot and
// an optional photo to attach. Results of operations started for a
// previously selected date are dropped, so switching dates mid-flight never
// corrupts the view.
package daybook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/outfitcal/daybook/internal/client/api"
	"github.com/outfitcal/daybook/internal/common"
)

// State describes where the session is in the load/stage/save cycle.
type State int

const (
	StateUnloaded State = iota
	StateLoadedEmpty
	StateLoadedPersisted
	StateWeatherStaged
	StateSaving
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateLoadedEmpty:
		return "empty"
	case StateLoadedPersisted:
		return "loaded"
	case StateWeatherStaged:
		return "weather staged"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	default:
		return "no date"
	}
}

// FixTimeout bounds how long a device location fix may take before the
// refresh gives up.
const FixTimeout = 8 * time.Second

// Locator acquires the device's current coordinate.
type Locator interface {
	CurrentFix(ctx context.Context) (*api.Coordinate, error)
}

// API is the server surface the session drives.
type API interface {
	Settings(ctx context.Context) (*api.Settings, error)
	UpdateSettings(ctx context.Context, mode, city string) (*api.Settings, error)
	LoadDay(ctx context.Context, date string) (*api.Day, error)
	RefreshWeather(ctx context.Context, fix *api.Coordinate) (*api.WeatherStage, error)
	SaveDay(ctx context.Context, date string, draft api.SaveDraft, photo *api.Photo) (*api.Day, error)
}

type Session struct {
	mu      sync.Mutex
	api     API
	locator Locator

	state State
	date  string
	gen   uint64 // bumped on every date switch, results from older gens are dropped

	day     *api.Day
	comment string
	photo   *api.Photo
	stage   *api.WeatherStage
}

func NewSession(a API, locator Locator) *Session {
	return &Session{api: a, locator: locator}
}

func validDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return false
	}
	return t.Format("2006-01-02") == s
}

// SetDate switches the session to another calendar date. All working state
// belonging to the previous date is discarded and in-flight results for it
// will be dropped on arrival.
func (s *Session) SetDate(date string) error {
	if !validDate(date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.gen++
	s.state = StateUnloaded
	s.day = nil
	s.comment = ""
	s.photo = nil
	s.stage = nil
	return nil
}

// Load fetches the selected date's record. An unsaved date comes back as a
// blank draft. Loading again is harmless.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.date == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: no date selected", common.ErrValidation)
	}
	date, gen := s.date, s.gen
	s.mu.Unlock()

	day, err := s.api.LoadDay(ctx, date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// a newer date selection superseded this load
		return nil
	}
	s.day = day
	s.comment = day.Comment
	if day.Persisted {
		s.state = StateLoadedPersisted
	} else {
		s.state = StateLoadedEmpty
	}
	return nil
}

// SetComment replaces the working comment.
func (s *Session) SetComment(comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return fmt.Errorf("%w: load a date first", common.ErrValidation)
	}
	s.comment = comment
	return nil
}

// AttachPhoto stages a photo to upload on the next save.
func (s *Session) AttachPhoto(photo *api.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return fmt.Errorf("%w: load a date first", common.ErrValidation)
	}
	s.photo = photo
	return nil
}

// RefreshWeather stages a fresh weather snapshot for the selected date. In
// device mode the locator is asked for a coordinate fix first, bounded by
// FixTimeout. A failed refresh leaves the working state untouched.
func (s *Session) RefreshWeather(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateUnloaded {
		s.mu.Unlock()
		return fmt.Errorf("%w: load a date first", common.ErrValidation)
	}
	gen := s.gen
	s.mu.Unlock()

	settings, err := s.api.Settings(ctx)
	if err != nil {
		return err
	}

	var fix *api.Coordinate
	if settings.Mode == "device" {
		fix, err = s.currentFix(ctx)
		if err != nil {
			return fmt.Errorf("%w: no device location fix available: %v", common.ErrValidation, err)
		}
	}

	stage, err := s.api.RefreshWeather(ctx, fix)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.stage = stage
	s.state = StateWeatherStaged
	return nil
}

func (s *Session) currentFix(ctx context.Context) (*api.Coordinate, error) {
	if s.locator == nil {
		return nil, fmt.Errorf("no locator configured")
	}
	ctx, cancel := context.WithTimeout(ctx, FixTimeout)
	defer cancel()
	return s.locator.CurrentFix(ctx)
}

// Save commits the working state. The staged snapshot, when present, wins
// over whatever the loaded record carried. Without any snapshot the server
// resolves one during the save; a device coordinate is attached best-effort
// so that resolution can work in device mode.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateUnloaded {
		s.mu.Unlock()
		return fmt.Errorf("%w: load a date first", common.ErrValidation)
	}
	if s.state == StateSaving {
		s.mu.Unlock()
		return fmt.Errorf("%w: save already in progress", common.ErrValidation)
	}

	date, gen := s.date, s.gen
	prev := s.state
	s.state = StateSaving

	draft := api.SaveDraft{Comment: s.comment}
	if s.day != nil {
		draft.ImagePath = s.day.ImagePath
		draft.Mode = s.day.Mode
		draft.Lat = s.day.Lat
		draft.Lon = s.day.Lon
		draft.Place = s.day.Place
		draft.Weather = s.day.Weather
	}
	if s.stage != nil {
		draft.Mode = s.stage.Mode
		lat, lon := s.stage.Lat, s.stage.Lon
		draft.Lat = &lat
		draft.Lon = &lon
		draft.Place = s.stage.Place
		draft.Weather = s.stage.Weather
	}
	photo := s.photo
	s.mu.Unlock()

	if draft.Weather == nil {
		if fix, err := s.currentFix(ctx); err == nil {
			draft.Fix = fix
		}
	}

	day, err := s.api.SaveDay(ctx, date, draft, photo)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	if err != nil {
		s.state = prev
		return err
	}

	s.day = day
	s.comment = day.Comment
	s.photo = nil
	s.stage = nil
	s.state = StateSaved
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Date returns the selected calendar date, if any.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Day returns the loaded or saved record view, which may be nil.
func (s *Session) Day() *api.Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Comment returns the working comment.
func (s *Session) Comment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comment
}

// Stage returns the staged weather snapshot, which may be nil.
func (s *Session) Stage() *api.WeatherStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Photo returns the photo staged for the next save, which may be nil.
func (s *Session) Photo() *api.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}
