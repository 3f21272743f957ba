package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/outfitcal/daybook/internal/server/models"
)

type settingsRequest struct {
	Mode string `json:"mode"`
	City string `json:"city"`
}

type settingsResponse struct {
	Mode      string    `json:"mode"`
	City      string    `json:"city"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func toSettingsResponse(st *models.Settings) settingsResponse {
	return settingsResponse{
		Mode:      st.Mode.String(),
		City:      st.City,
		Lat:       st.Lat,
		Lon:       st.Lon,
		UpdatedAt: st.UpdatedAt,
	}
}

// HandleGetSettings handles GET /api/v1/settings. A first call creates the
// row with device mode defaults.
func (h *DayHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	st, err := h.service.Settings(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(st))
}

// HandleUpdateSettings handles PUT /api/v1/settings.
func (h *DayHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	mode, err := modeFromString(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := h.service.UpdateSettings(r.Context(), userID, mode, req.City)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(st))
}
