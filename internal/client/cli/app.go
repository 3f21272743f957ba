package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/outfitcal/daybook/internal/client/api"
	"github.com/outfitcal/daybook/internal/client/config"
	"github.com/outfitcal/daybook/internal/client/daybook"
)

type App struct {
	config  *config.Config
	client  *api.Client
	session *daybook.Session
	locator *manualLocator
	reader  *bufio.Reader
}

// manualLocator is the CLI stand-in for device geolocation: the user enters
// a coordinate with the fix command and it is served as the current fix.
type manualLocator struct {
	mu  sync.Mutex
	fix *api.Coordinate
}

func (l *manualLocator) Set(lat, lon float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fix = &api.Coordinate{Lat: lat, Lon: lon}
}

func (l *manualLocator) CurrentFix(ctx context.Context) (*api.Coordinate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fix == nil {
		return nil, fmt.Errorf("no coordinate set, use the fix command first")
	}
	fix := *l.fix
	return &fix, nil
}

func NewApp(c *config.Config) *App {
	client := api.NewClient(c.ServerEndpointAddr)
	locator := &manualLocator{}

	return &App{
		config:  c,
		client:  client,
		session: daybook.NewSession(client, locator),
		locator: locator,
		reader:  bufio.NewReader(os.Stdin),
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "logged out"
	}
	if a.session.Date() == "" {
		return "no date"
	}
	return fmt.Sprintf("%s [%s]", a.session.Date(), a.session.State())
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
