package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/outfitcal/daybook/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps service sentinels onto HTTP status codes. Anything not
// recognized is reported as a plain 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse("already exists"))
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
	case errors.Is(err, common.ErrServiceUnavailable),
		errors.Is(err, common.ErrStorage):
		writeJSON(w, http.StatusBadGateway, errorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
