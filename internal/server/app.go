// Package server initializes and runs the application server. It opens the
// database, runs migrations, wires the services to the HTTP API and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/outfitcal/daybook/internal/geo"
	"github.com/outfitcal/daybook/internal/logging"
	"github.com/outfitcal/daybook/internal/meteo"
	"github.com/outfitcal/daybook/internal/server/config"
	"github.com/outfitcal/daybook/internal/server/httpapi"
	"github.com/outfitcal/daybook/internal/server/repositories/repomanager"
	"github.com/outfitcal/daybook/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	userSvc *services.UserService
	daySvc  *services.DaybookService
}

func NewApp(c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	storage := services.NewS3Storage(c)
	geocoder := geo.NewClient(c.GeocodingBaseURL)
	weather := meteo.NewClient(c.WeatherBaseURL)

	userSvc := services.NewUserService(db, m, c)
	daySvc := services.NewDaybookService(db, m, storage, geocoder, weather, c)

	return &App{config: c, logger: logger, db: db, userSvc: userSvc, daySvc: daySvc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	router := httpapi.NewRouter(app.logger, []byte(app.config.SecretKey),
		httpapi.NewAuthHandler(app.userSvc), httpapi.NewDayHandler(app.daySvc))

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "server forced shutdown", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	app.logger.Info(ctx, "server stopped")
}
