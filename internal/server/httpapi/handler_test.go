package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitcal/daybook/internal/common"
	"github.com/outfitcal/daybook/internal/logging"
	"github.com/outfitcal/daybook/internal/server/auth"
	"github.com/outfitcal/daybook/internal/server/models"
	"github.com/outfitcal/daybook/internal/server/services"
)

var testSecret = []byte("test-secret")

type fakeAuthService struct {
	registerErr error
	loginErr    error
	refreshErr  error
}

func (f *fakeAuthService) Register(_ context.Context, email, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "user-1", Email: email, CreatedAt: time.Now()}, nil
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeAuthService) RefreshToken(_ context.Context, _ string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "access2", RefreshToken: "refresh2"}, nil
}

type fakeDayService struct {
	settings *models.Settings
	view     *services.DayView
	stage    *services.WeatherStage
	err      error

	lastUserID string
	lastDate   string
	lastDraft  *models.DayRecord
	lastImage  *services.ImageUpload
	lastFix    *services.Coordinate
	lastMode   models.LocationMode
	lastCity   string
}

func (f *fakeDayService) Settings(_ context.Context, userID string) (*models.Settings, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func (f *fakeDayService) UpdateSettings(_ context.Context, userID string, mode models.LocationMode, city string) (*models.Settings, error) {
	f.lastUserID, f.lastMode, f.lastCity = userID, mode, city
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func (f *fakeDayService) Load(_ context.Context, userID, date string) (*services.DayView, error) {
	f.lastUserID, f.lastDate = userID, date
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeDayService) RefreshWeather(_ context.Context, userID string, fix *services.Coordinate) (*services.WeatherStage, error) {
	f.lastUserID, f.lastFix = userID, fix
	if f.err != nil {
		return nil, f.err
	}
	return f.stage, nil
}

func (f *fakeDayService) Save(_ context.Context, userID, date string, draft *models.DayRecord, image *services.ImageUpload, fix *services.Coordinate) (*services.DayView, error) {
	f.lastUserID, f.lastDate, f.lastDraft, f.lastImage, f.lastFix = userID, date, draft, image, fix
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func newTestRouter(authSvc *fakeAuthService, daySvc *fakeDayService) http.Handler {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(log, testSecret, NewAuthHandler(authSvc), NewDayHandler(daySvc))
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, h http.Handler, method, path, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegister_Created(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register",
		`{"email":"jane@example.com","password":"password123"}`, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jane@example.com", resp["email"])
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: invalid email", common.ErrValidation), http.StatusBadRequest},
		{"duplicate", common.ErrAlreadyExists, http.StatusConflict},
		{"internal", common.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeAuthService{registerErr: tt.err}, &fakeDayService{})
			rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register",
				`{"email":"jane@example.com","password":"x"}`, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	h := newTestRouter(&fakeAuthService{loginErr: common.ErrUnauthorized}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login",
		`{"email":"jane@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_ReturnsNewPair(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/refresh",
		`{"refresh_token":"refresh"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access2", resp.AccessToken)
	assert.Equal(t, "refresh2", resp.RefreshToken)
}

func TestProtectedRoutes_RequireBearer(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/days/2025-06-01", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/days/2025-06-01", "", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/days/2025-06-01", "", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDay_BlankDraft(t *testing.T) {
	svc := &fakeDayService{view: &services.DayView{
		Record: &models.DayRecord{UserID: "user-1", Date: "2025-06-01"},
	}}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/days/2025-06-01", "", bearerFor(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "user-1", svc.lastUserID)
	assert.Equal(t, "2025-06-01", svc.lastDate)

	var resp dayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
	assert.Equal(t, "device", resp.Mode)
	assert.Nil(t, resp.Weather)
}

func TestGetDay_InvalidDateIsBadRequest(t *testing.T) {
	svc := &fakeDayService{err: fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation)}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/days/June-1st", "", bearerFor(t, "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshWeather_PassesFix(t *testing.T) {
	lat, lon := 35.6895, 139.6917
	svc := &fakeDayService{stage: &services.WeatherStage{
		Mode: models.ModeDeviceLocation, Lat: lat, Lon: lon,
		Weather: &models.Weather{TempC: 21.5, Code: 2, Label: "sunny"},
	}}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/weather/refresh",
		`{"lat":35.6895,"lon":139.6917}`, bearerFor(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.lastFix)
	assert.InDelta(t, 35.6895, svc.lastFix.Lat, 1e-9)

	var resp weatherStageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "device", resp.Mode)
	require.NotNil(t, resp.Weather)
	assert.Equal(t, "sunny", resp.Weather.Label)
}

func TestRefreshWeather_EmptyBodyMeansNoFix(t *testing.T) {
	svc := &fakeDayService{stage: &services.WeatherStage{Mode: models.ModeNamedCity, Place: "Tokyo, Japan"}}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/weather/refresh", "", bearerFor(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastFix)
}

func TestRefreshWeather_UpstreamDownIsBadGateway(t *testing.T) {
	svc := &fakeDayService{err: fmt.Errorf("%w: weather request failed", common.ErrServiceUnavailable)}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/weather/refresh", "", bearerFor(t, "user-1"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func multipartSaveBody(t *testing.T, record string, photoName string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if record != "" {
		require.NoError(t, mw.WriteField("record", record))
	}
	if photoName != "" {
		part, err := mw.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestSaveDay_MultipartWithPhoto(t *testing.T) {
	svc := &fakeDayService{view: &services.DayView{
		Record: &models.DayRecord{
			UserID: "user-1", Date: "2025-06-01", Comment: "picnic",
			ImagePath: "user-1/2025-06-01/key.jpg",
		},
		ImageURL:  "https://storage.test/user-1/2025-06-01/key.jpg?sig=1",
		Persisted: true,
	}}
	h := newTestRouter(&fakeAuthService{}, svc)

	record := `{"comment":"picnic","mode":"city","place":"Tokyo, Japan","weather":{"temp_c":21.5,"code":2,"label":"sunny"}}`
	body, contentType := multipartSaveBody(t, record, "me.jpg", []byte("jpeg-bytes"))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/days/2025-06-01", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.lastDraft)
	assert.Equal(t, "picnic", svc.lastDraft.Comment)
	assert.Equal(t, models.ModeNamedCity, svc.lastDraft.Mode)
	require.NotNil(t, svc.lastDraft.Weather)
	assert.Equal(t, "sunny", svc.lastDraft.Weather.Label)

	require.NotNil(t, svc.lastImage)
	assert.Equal(t, "me.jpg", svc.lastImage.FileName)
	assert.Equal(t, []byte("jpeg-bytes"), svc.lastImage.Data)

	var resp dayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Persisted)
	assert.Contains(t, resp.ImageURL, "sig=1")
}

func TestSaveDay_NoPhotoKeepsExistingPath(t *testing.T) {
	svc := &fakeDayService{view: &services.DayView{
		Record:    &models.DayRecord{UserID: "user-1", Date: "2025-06-01", ImagePath: "user-1/2025-06-01/old.jpg"},
		Persisted: true,
	}}
	h := newTestRouter(&fakeAuthService{}, svc)

	record := `{"comment":"still here","image_path":"user-1/2025-06-01/old.jpg"}`
	body, contentType := multipartSaveBody(t, record, "", nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/days/2025-06-01", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastImage)
	assert.Equal(t, "user-1/2025-06-01/old.jpg", svc.lastDraft.ImagePath)
}

func TestSaveDay_UnknownModeRejected(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	body, contentType := multipartSaveBody(t, `{"mode":"satellite"}`, "", nil)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/days/2025-06-01", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "user-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings_GetAndUpdate(t *testing.T) {
	svc := &fakeDayService{settings: &models.Settings{
		UserID: "user-1", Mode: models.ModeNamedCity, City: "Tokyo",
	}}
	h := newTestRouter(&fakeAuthService{}, svc)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/settings", "", bearerFor(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp settingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "city", resp.Mode)
	assert.Equal(t, "Tokyo", resp.City)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/settings",
		`{"mode":"city","city":"Paris"}`, bearerFor(t, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ModeNamedCity, svc.lastMode)
	assert.Equal(t, "Paris", svc.lastCity)
}

func TestSettings_UnknownModeRejected(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodPut, "/api/v1/settings",
		`{"mode":"compass"}`, bearerFor(t, "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeAuthService{}, &fakeDayService{})

	rec := doJSON(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
