package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DAC098/tj2/internal/client/capture"
	"github.com/DAC098/tj2/internal/client/client"
	"github.com/DAC098/tj2/internal/client/config"
	"github.com/DAC098/tj2/internal/client/models"
	"github.com/DAC098/tj2/internal/client/repositories/metadata"
	"github.com/DAC098/tj2/internal/client/services"
	"github.com/DAC098/tj2/internal/logging"
)

// Mode reflects server reachability, reported in the prompt.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the CLI: local store, API client, services, and the capture
// device, plus the REPL's transient state (current draft, live session).
type App struct {
	config       *config.Config
	repos        *client.Repositories
	authService  services.AuthService
	entryService services.EntryService
	device       capture.Device
	log          logging.Logger

	reader   *bufio.Reader
	userName string
	Mode     Mode

	draft   *models.Entry
	session *capture.Session
}

// NewApp opens the local database, restores any persisted session tokens,
// and wires the services.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	access, _ := repos.Metadata.Get(ctx, metadata.KeyAccessToken)
	refresh, _ := repos.Metadata.Get(ctx, metadata.KeyRefreshToken)

	apiClient := client.NewHTTPClient(c.ServerURL,
		client.WithTokens(string(access), string(refresh)),
		client.WithTokenListener(func(access, refresh string) {
			if err := repos.Metadata.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
				log.Warn(ctx, "failed to persist access token", "error", err)
			}
			if err := repos.Metadata.Set(ctx, metadata.KeyRefreshToken, []byte(refresh)); err != nil {
				log.Warn(ctx, "failed to persist refresh token", "error", err)
			}
		}),
	)

	device := capture.NewFFmpegDevice()
	device.AudioInput = c.AudioInput
	device.VideoInput = c.VideoInput

	app := &App{
		config:       c,
		repos:        repos,
		authService:  services.NewAuthService(apiClient, repos.Metadata),
		entryService: services.NewEntryService(apiClient, repos.Entries, repos.Attachments, c.UploadWorkers, log),
		device:       device,
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
	}

	if user, err := app.authService.CurrentUser(ctx); err == nil {
		app.userName = user
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	defer a.repos.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		printlnFn("switched to", string(mode), "mode")
	}
}

// StartOnlineStatusWatcher periodically probes the server and flips the
// prompt's mode indicator.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
