// Package app wires configuration, storage, Google services and the
// campaign runner together for the CLI commands.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/greenmice/sheetsend/internal/campaign"
	"github.com/greenmice/sheetsend/internal/config"
	"github.com/greenmice/sheetsend/internal/contact"
	"github.com/greenmice/sheetsend/internal/gmailer"
	"github.com/greenmice/sheetsend/internal/metrics"
	"github.com/greenmice/sheetsend/internal/pending"
	"github.com/greenmice/sheetsend/internal/retry"
	"github.com/greenmice/sheetsend/internal/sheet"
	"github.com/greenmice/sheetsend/internal/template"
)

// Scopes requested from Google. Send and modify cover dispatching and
// labeling, readonly covers the Message-ID metadata fetch.
var googleScopes = []string{
	gmail.GmailSendScope,
	gmail.GmailReadonlyScope,
	gmail.GmailModifyScope,
	sheets.SpreadsheetsScope,
}

// App is the assembled application
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Templates *template.Storage
	Pending   *pending.Store
	Metrics   *metrics.Metrics

	gmail  *gmailer.Client
	sheets *sheet.Client

	db            *bolt.DB
	metricsServer *metrics.Server
}

// New creates the application: logger, local storage and metrics. Google
// services are connected separately, so commands that never touch the
// network (template management, config validation) work offline.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	db, err := openStorage(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	templates, err := template.NewStorage(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	pendingStore, err := pending.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Templates: templates,
		Pending:   pendingStore,
		Metrics:   metrics.New(),
		db:        db,
	}, nil
}

func openStorage(path string) (*bolt.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
}

// ConnectGoogle authenticates against the Google APIs and builds the
// Gmail and Sheets clients. A credentials problem is fatal here, before
// anything is sent.
func (a *App) ConnectGoogle(ctx context.Context) error {
	opt, err := clientOption(ctx, a.Config.Google)
	if err != nil {
		return fmt.Errorf("google authentication failed: %w", err)
	}

	gmailSvc, err := gmail.NewService(ctx, opt)
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, opt)
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}

	a.gmail = gmailer.NewClient(gmailSvc, a.Logger)

	spreadsheetID, err := sheet.ParseSpreadsheetID(a.Config.Sheet.Spreadsheet)
	if err != nil {
		return err
	}
	a.sheets = sheet.NewClient(sheetsSvc, spreadsheetID, a.Logger)

	a.Logger.Info("connected to Google APIs",
		"auth_mode", a.Config.Google.AuthMode, "spreadsheet_id", spreadsheetID)
	return nil
}

// clientOption builds the API client option for the configured auth mode.
func clientOption(ctx context.Context, cfg config.GoogleConfig) (option.ClientOption, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	switch cfg.AuthMode {
	case config.AuthServiceAccount:
		jwtCfg, err := google.JWTConfigFromJSON(data, googleScopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid service account credentials: %w", err)
		}
		return option.WithHTTPClient(jwtCfg.Client(ctx)), nil
	case config.AuthAuthorizedUser:
		creds, err := google.CredentialsFromJSON(ctx, data, googleScopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid user credentials: %w", err)
		}
		return option.WithTokenSource(creds.TokenSource), nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}

// TableStore returns the contact table backend: a local CSV file when a
// path is given, otherwise the configured spreadsheet. The spreadsheet
// path requires ConnectGoogle first.
func (a *App) TableStore(ctx context.Context, csvPath string) (campaign.TableStore, error) {
	if csvPath != "" {
		return &contact.FileStore{Path: csvPath}, nil
	}

	if a.sheets == nil {
		return nil, fmt.Errorf("not connected to Google APIs")
	}

	name := a.Config.Sheet.Name
	if name == "" {
		first, err := a.sheets.FirstSheetName(ctx)
		if err != nil {
			return nil, err
		}
		a.Logger.Debug("using first sheet", "name", first)
		name = first
	}
	return &sheet.Store{Client: a.sheets, SheetName: name}, nil
}

// Runner builds a campaign runner over the given table store.
func (a *App) Runner(store campaign.TableStore) (*campaign.Runner, error) {
	if a.gmail == nil {
		return nil, fmt.Errorf("not connected to Google APIs")
	}

	cfg := campaign.Config{
		WarmupDelay: a.Config.Campaign.WarmupDelay,
		Retry: retry.Policy{
			MaxAttempts: a.Config.Campaign.MaxAttempts,
			BaseDelay:   a.Config.Campaign.BaseDelay,
		},
		Location: a.Config.Location(),
	}
	return campaign.NewRunner(store, a.gmail, a.Pending, cfg, a.Metrics, a.Logger), nil
}

// ResolveLabelID resolves a Gmail label name to its id. An empty name
// resolves to an empty id, meaning no labeling.
func (a *App) ResolveLabelID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if a.gmail == nil {
		return "", fmt.Errorf("not connected to Google APIs")
	}
	return a.gmail.LabelID(ctx, name)
}

// StartMetrics starts the Prometheus endpoint if enabled.
func (a *App) StartMetrics() {
	if !a.Config.Metrics.Enabled {
		return
	}
	a.metricsServer = metrics.NewServer(a.Metrics, a.Config.Metrics.ListenAddr, a.Config.Metrics.Path, a.Logger)
	a.metricsServer.Start()
}

// Close releases local resources.
func (a *App) Close() error {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metricsServer.Stop(ctx)
	}
	return a.db.Close()
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
