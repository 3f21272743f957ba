package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/outfitcal/daybook/internal/logging"
)

// NewRouter assembles the public HTTP surface. Auth endpoints are open;
// everything else sits behind Bearer token auth.
func NewRouter(log logging.Logger, jwtSecret []byte, auth *AuthHandler, day *DayHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Post("/api/v1/auth/register", auth.HandleRegister)
		r.Post("/api/v1/auth/login", auth.HandleLogin)
		r.Post("/api/v1/auth/refresh", auth.HandleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret))

		r.Get("/api/v1/settings", day.HandleGetSettings)
		r.Put("/api/v1/settings", day.HandleUpdateSettings)

		r.Get("/api/v1/days/{date}", day.HandleGetDay)
		r.Put("/api/v1/days/{date}", day.HandleSaveDay)

		r.Post("/api/v1/weather/refresh", day.HandleRefreshWeather)
	})

	return r
}
