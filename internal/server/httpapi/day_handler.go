package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/outfitcal/daybook/internal/common"
	"github.com/outfitcal/daybook/internal/server/models"
	"github.com/outfitcal/daybook/internal/server/services"
)

const maxSaveBodyBytes = 20 << 20 // photo uploads included

// DayService is the slice of DaybookService the day and settings endpoints
// need.
type DayService interface {
	Settings(ctx context.Context, userID string) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID string, mode models.LocationMode, city string) (*models.Settings, error)
	Load(ctx context.Context, userID, date string) (*services.DayView, error)
	RefreshWeather(ctx context.Context, userID string, fix *services.Coordinate) (*services.WeatherStage, error)
	Save(ctx context.Context, userID, date string, draft *models.DayRecord, image *services.ImageUpload, fix *services.Coordinate) (*services.DayView, error)
}

type DayHandler struct {
	service DayService
}

func NewDayHandler(svc DayService) *DayHandler {
	return &DayHandler{service: svc}
}

type weatherDTO struct {
	TempC float64 `json:"temp_c"`
	Code  int     `json:"code"`
	Label string  `json:"label"`
}

type coordinateDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type dayResponse struct {
	Date      string      `json:"date"`
	Comment   string      `json:"comment"`
	ImagePath string      `json:"image_path,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`
	Mode      string      `json:"mode"`
	Lat       *float64    `json:"lat,omitempty"`
	Lon       *float64    `json:"lon,omitempty"`
	Place     string      `json:"place,omitempty"`
	Weather   *weatherDTO `json:"weather,omitempty"`
	Persisted bool        `json:"persisted"`
	UpdatedAt time.Time   `json:"updated_at,omitzero"`
}

type weatherStageResponse struct {
	Mode       string      `json:"mode"`
	Lat        float64     `json:"lat"`
	Lon        float64     `json:"lon"`
	Place      string      `json:"place,omitempty"`
	Weather    *weatherDTO `json:"weather,omitempty"`
	ObservedAt string      `json:"observed_at,omitempty"`
}

// saveRequest is the "record" part of the multipart save body. Weather, the
// coordinate and the place are the staged snapshot the client holds; a nil
// Weather asks the server to resolve one during the save. Fix carries the
// device coordinate when the account is in device mode.
type saveRequest struct {
	Comment   string         `json:"comment"`
	ImagePath string         `json:"image_path"`
	Mode      string         `json:"mode"`
	Lat       *float64       `json:"lat"`
	Lon       *float64       `json:"lon"`
	Place     string         `json:"place"`
	Weather   *weatherDTO    `json:"weather"`
	Fix       *coordinateDTO `json:"fix"`
}

func modeFromString(s string) (models.LocationMode, error) {
	switch s {
	case "", "device":
		return models.ModeDeviceLocation, nil
	case "city":
		return models.ModeNamedCity, nil
	default:
		return 0, fmt.Errorf("%w: unknown location mode %q", common.ErrValidation, s)
	}
}

func toWeatherDTO(w *models.Weather) *weatherDTO {
	if w == nil {
		return nil
	}
	return &weatherDTO{TempC: w.TempC, Code: w.Code, Label: w.Label}
}

func toDayResponse(view *services.DayView) dayResponse {
	rec := view.Record
	return dayResponse{
		Date:      rec.Date,
		Comment:   rec.Comment,
		ImagePath: rec.ImagePath,
		ImageURL:  view.ImageURL,
		Mode:      rec.Mode.String(),
		Lat:       rec.Lat,
		Lon:       rec.Lon,
		Place:     rec.Place,
		Weather:   toWeatherDTO(rec.Weather),
		Persisted: view.Persisted,
		UpdatedAt: rec.UpdatedAt,
	}
}

// HandleGetDay handles GET /api/v1/days/{date}. Unknown dates come back as
// a blank draft with persisted=false, never a 404.
func (h *DayHandler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	view, err := h.service.Load(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayResponse(view))
}

// HandleRefreshWeather handles POST /api/v1/weather/refresh. The optional
// JSON body carries the device coordinate fix; city mode needs no body.
func (h *DayHandler) HandleRefreshWeather(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var fix *services.Coordinate
	var req coordinateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		fix = &services.Coordinate{Lat: req.Lat, Lon: req.Lon}
	} else if !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	stage, err := h.service.RefreshWeather(r.Context(), userID, fix)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, weatherStageResponse{
		Mode:       stage.Mode.String(),
		Lat:        stage.Lat,
		Lon:        stage.Lon,
		Place:      stage.Place,
		Weather:    toWeatherDTO(stage.Weather),
		ObservedAt: stage.ObservedAt,
	})
}

// HandleSaveDay handles PUT /api/v1/days/{date}. The body is multipart: a
// "record" part with the JSON draft and an optional "photo" file part with
// a newly attached image.
func (h *DayHandler) HandleSaveDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBodyBytes)
	if err := r.ParseMultipartForm(maxSaveBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		return
	}

	var req saveRequest
	if raw := r.FormValue("record"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid record part"))
			return
		}
	}

	mode, err := modeFromString(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	draft := &models.DayRecord{
		Comment:   req.Comment,
		ImagePath: req.ImagePath,
		Mode:      mode,
		Lat:       req.Lat,
		Lon:       req.Lon,
		Place:     req.Place,
	}
	if req.Weather != nil {
		draft.Weather = &models.Weather{TempC: req.Weather.TempC, Code: req.Weather.Code, Label: req.Weather.Label}
	}

	var fix *services.Coordinate
	if req.Fix != nil {
		fix = &services.Coordinate{Lat: req.Fix.Lat, Lon: req.Fix.Lon}
	}

	image, err := readPhotoPart(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid photo part"))
		return
	}

	view, err := h.service.Save(r.Context(), userID, chi.URLParam(r, "date"), draft, image, fix)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayResponse(view))
}

func readPhotoPart(r *http.Request) (*services.ImageUpload, error) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &services.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
