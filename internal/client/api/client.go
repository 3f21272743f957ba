// Package api is a typed HTTP client for the Daybook server. It keeps the
// issued token pair and maps error responses back onto the shared sentinel
// errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/outfitcal/daybook/internal/common"
)

const requestTimeout = 30 * time.Second

type Weather struct {
	TempC float64 `json:"temp_c"`
	Code  int     `json:"code"`
	Label string  `json:"label"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Day struct {
	Date      string    `json:"date"`
	Comment   string    `json:"comment"`
	ImagePath string    `json:"image_path"`
	ImageURL  string    `json:"image_url"`
	Mode      string    `json:"mode"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	Place     string    `json:"place"`
	Weather   *Weather  `json:"weather"`
	Persisted bool      `json:"persisted"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WeatherStage struct {
	Mode       string   `json:"mode"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Place      string   `json:"place"`
	Weather    *Weather `json:"weather"`
	ObservedAt string   `json:"observed_at"`
}

type Settings struct {
	Mode string   `json:"mode"`
	City string   `json:"city"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// SaveDraft is the record part of a save request. A nil Weather lets the
// server resolve a snapshot during the save.
type SaveDraft struct {
	Comment   string      `json:"comment"`
	ImagePath string      `json:"image_path"`
	Mode      string      `json:"mode"`
	Lat       *float64    `json:"lat,omitempty"`
	Lon       *float64    `json:"lon,omitempty"`
	Place     string      `json:"place,omitempty"`
	Weather   *Weather    `json:"weather,omitempty"`
	Fix       *Coordinate `json:"fix,omitempty"`
}

// Photo is a locally selected image to attach on save.
type Photo struct {
	FileName    string
	ContentType string
	Data        []byte
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Client struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// LoggedIn reports whether the client holds an access token.
func (c *Client) LoggedIn() bool {
	return c.accessToken != ""
}

// Logout drops the held token pair.
func (c *Client) Logout() {
	c.accessToken = ""
	c.refreshToken = ""
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var pair tokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", body, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

// Refresh exchanges the held refresh token for a new pair. The old refresh
// token becomes invalid.
func (c *Client) Refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return common.ErrUnauthorized
	}
	body := map[string]string{"refresh_token": c.refreshToken}
	var pair tokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var st Settings
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/settings", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) UpdateSettings(ctx context.Context, mode, city string) (*Settings, error) {
	body := map[string]string{"mode": mode, "city": city}
	var st Settings
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/settings", body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) LoadDay(ctx context.Context, date string) (*Day, error) {
	var day Day
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/days/"+date, nil, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (c *Client) RefreshWeather(ctx context.Context, fix *Coordinate) (*WeatherStage, error) {
	var stage WeatherStage
	var body any
	if fix != nil {
		body = fix
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/weather/refresh", body, &stage); err != nil {
		return nil, err
	}
	return &stage, nil
}

// SaveDay commits the draft for a date. The body is multipart so a photo
// can ride along with the record JSON.
func (c *Client) SaveDay(ctx context.Context, date string, draft SaveDraft, photo *Photo) (*Day, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	record, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	if err := mw.WriteField("record", string(record)); err != nil {
		return nil, err
	}

	if photo != nil {
		part, err := mw.CreateFormFile("photo", photo.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/days/"+date, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var day Day
	if err := c.send(req, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, msg)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", common.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrInternal, msg)
	}
}
