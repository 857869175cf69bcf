package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/noteshq/notesctl/internal/apiclient"
	"github.com/noteshq/notesctl/internal/authapi"
	"github.com/noteshq/notesctl/internal/broadcast"
	"github.com/noteshq/notesctl/internal/config"
	"github.com/noteshq/notesctl/internal/db"
	"github.com/noteshq/notesctl/internal/health"
	"github.com/noteshq/notesctl/internal/notes"
	"github.com/noteshq/notesctl/internal/sessions"
)

var logLevel = new(slog.LevelVar)
var jsonLogger *slog.Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

// app bundles everything a subcommand can reach. All dependencies are built
// once here and injected, no package-level singletons.
type app struct {
	config      config.Config
	sessions    *sessions.SessionStore
	api         *apiclient.Client
	notes       *notes.Client
	health      *health.Client
	broadcaster *broadcast.Broadcaster
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: notesctl <command> [options]

Commands:
  login    log in and store the session
  logout   clear the stored session
  status   show the current session state
  list     list notes
  create   create a note
  show     show a single note
  edit     update a note
  delete   delete a note
  health   check the notes service health
  watch    follow session events and keep the token fresh`)
}

func main() {
	// Logging setup
	slog.SetDefault(jsonLogger)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]
	// Load configuration
	ch := config.NewConfigHandler()
	appConfig, err := ch.Config()
	if err != nil {
		slog.Error("loading the configuration failed", "error", err)
		os.Exit(1)
	}
	// Set log level to "debug" if activated
	if appConfig.DebugMode {
		logLevel.Set(slog.LevelDebug)
	}
	slog.Debug("loaded config", "config", appConfig)
	// Initialize the token repository for the configured storage backend
	tokenRepository, err := db.NewTokenRepository(appConfig.Storage)
	if err != nil {
		slog.Error("token repository initialization failed", "error", err)
		os.Exit(1)
	}
	// Create the session store
	sessionStore, err := sessions.NewSessionStore(sessions.WithTokenRepository(tokenRepository))
	if err != nil {
		slog.Error("session store initialization failed", "error", err)
		os.Exit(1)
	}
	// The error broadcaster carries user-facing failure messages to the
	// banner printer and, when enabled, to Sentry
	broadcaster := broadcast.NewBroadcaster()
	broadcaster.Subscribe(func(message string) {
		fmt.Fprintf(os.Stderr, "error: %s\n", message)
	})
	// Sentry
	if appConfig.Monitoring.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              string(appConfig.Monitoring.Sentry.Dsn),
			TracesSampleRate: appConfig.Monitoring.Sentry.SampleRate,
			Environment:      appConfig.Monitoring.Sentry.Environment,
		})
		if err != nil {
			slog.Error("sentry initialization failed", "error", err)
		} else {
			broadcaster.Subscribe(func(message string) {
				sentry.CaptureMessage(message)
			})
		}
	}
	// The raw auth transport, never routed through the authenticated client
	authClient, err := authapi.NewClient(authapi.WithAPIConfig(appConfig.API))
	if err != nil {
		slog.Error("auth client initialization failed", "error", err)
		os.Exit(1)
	}
	// The authenticated client
	api, err := apiclient.NewClient(
		apiclient.WithAPIConfig(appConfig.API),
		apiclient.WithSessionStore(sessionStore),
		apiclient.WithAuthTransport(authClient),
		apiclient.WithBroadcaster(broadcaster),
	)
	if err != nil {
		slog.Error("API client initialization failed", "error", err)
		os.Exit(1)
	}
	healthClient, err := health.NewClient(health.WithAPIConfig(appConfig.API))
	if err != nil {
		slog.Error("health client initialization failed", "error", err)
		os.Exit(1)
	}
	a := &app{
		config:      appConfig,
		sessions:    sessionStore,
		api:         api,
		notes:       notes.NewClient(api),
		health:      healthClient,
		broadcaster: broadcaster,
	}
	ctx := context.Background()
	if err := a.run(ctx, command, args); err != nil {
		slog.Debug("command failed", "command", command, "error", err)
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "list":
		return a.cmdList(ctx)
	case "create":
		return a.cmdCreate(ctx, args)
	case "show":
		return a.cmdShow(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "health":
		return a.cmdHealth(ctx, args)
	case "watch":
		return a.cmdWatch(ctx)
	default:
		usage()
		return fmt.Errorf("unrecognized command %q", command)
	}
}
