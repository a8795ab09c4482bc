// Package app wires configuration, logging, storage and the ledger into
// one handle shared by every command.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nhle/order-incidents/internal/keys"
	"github.com/nhle/order-incidents/internal/ledger"
	"github.com/nhle/order-incidents/internal/logging"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/store"
	"github.com/nhle/order-incidents/internal/ui/board"
)

// Options override what the config file provides.
type Options struct {
	ConfigPath  string
	StoragePath string
	LogLevel    string
	LogOutput   io.Writer
}

// App holds the opened ledger and its collaborators.
type App struct {
	Config *model.AppConfig
	Log    *logrus.Logger
	Ledger *ledger.Ledger
	Keys   *keys.KeyMap

	store *store.SQLiteStore
}

// Open loads the configuration, opens the store and loads the ledger.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.StoragePath != "" {
		cfg.Storage.Path = opts.StoragePath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, opts.LogOutput)
	if err != nil {
		return nil, err
	}

	s, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logging.LogError(logger, "app", "Open", "opening store", cfg.Storage.Path, err)
		return nil, err
	}

	l, err := ledger.Open(ctx, s, reconcile.DefaultEnv(), logger)
	if err != nil {
		s.Close()
		logging.LogError(logger, "app", "Open", "loading ledger", cfg.Storage.Path, err)
		return nil, err
	}

	logger.WithField("path", cfg.Storage.Path).Debug("ledger opened")
	return &App{
		Config: cfg,
		Log:    logger,
		Ledger: l,
		Keys:   keys.DefaultKeyMap(),
		store:  s,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	a.Ledger.Close()
	return a.store.Close()
}

// RunBoard starts the interactive board.
func (a *App) RunBoard() error {
	return board.Run(a.Ledger, a.Keys)
}

// Mapping suggests a column mapping for an import of kind from the sheet
// headers and the configured aliases, then applies explicit overrides.
// Override keys are field names and values must be existing headers.
func (a *App) Mapping(kind model.ImportKind, headers []string, overrides map[string]string) (reconcile.Mapping, error) {
	fields, aliases := reconcile.OrderFields, a.Config.Import.OrderAliases
	if kind == model.ImportIncidents {
		fields, aliases = reconcile.IncidentFields, a.Config.Import.IncidentAliases
	}

	m := reconcile.SuggestMapping(headers, fields, aliases)
	for field, header := range overrides {
		if !contains(fields, field) {
			return nil, fmt.Errorf("unknown %s field %q (want one of %s)", kind, field, strings.Join(fields, ", "))
		}
		if !contains(headers, header) {
			return nil, fmt.Errorf("no column %q in sheet", header)
		}
		m[field] = header
	}
	return m, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
