package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/borghese/vitrine/internal/catalog"
	"github.com/borghese/vitrine/internal/config"
	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/db"
	"github.com/borghese/vitrine/internal/inbox"
	"github.com/borghese/vitrine/internal/logging"
	"github.com/borghese/vitrine/internal/prefs"
	"github.com/borghese/vitrine/internal/source"
)

// app bundles what the commands share: settings, the catalog loader and
// the local database.
type app struct {
	cfg    config.Config
	db     *sql.DB
	loader *catalog.Loader
	prefs  *prefs.Store
	inbox  *inbox.Repository
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cfg), nil
}

// applyFlags overrides cfg with the global flags the user set.
func applyFlags(cfg config.Config) config.Config {
	if flagSiteURL != "" {
		cfg.Site.URL, cfg.Site.Dir = flagSiteURL, ""
	}
	if flagSiteDir != "" {
		cfg.Site.URL, cfg.Site.Dir = "", flagSiteDir
	}
	if flagDB != "" {
		cfg.Database = flagDB
	}
	return cfg
}

// openApp loads the config, opens the database and wires the loader.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.DevMode)

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	src, err := newSource(cfg.Site)
	if err != nil {
		closeDB(database)
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		db:    database,
		prefs: prefs.NewStore(database),
		inbox: inbox.NewRepository(database),
	}

	relay, err := newRelay(cfg.Contact, a.inbox)
	if err != nil {
		closeDB(database)
		return nil, err
	}

	opts := []catalog.Option{}
	if relay != nil {
		opts = append(opts, catalog.WithRelay(relay))
	}
	a.loader = catalog.New(src, source.NewResolver(cfg.Site.Page), opts...)

	return a, nil
}

func (a *app) close() {
	closeDB(a.db)
}

// newSource picks the HTTP or directory source for the site.
func newSource(site config.SiteConfig) (source.Source, error) {
	if site.URL != "" {
		return source.NewHTTPSource(site.URL, site.Timeout)
	}
	return source.NewDirSource(site.Dir, site.Page)
}

// newRelay builds the configured contact relay, recording every submission
// in the inbox. It returns nil when relaying is off.
func newRelay(cfg config.ContactConfig, repo *inbox.Repository) (contact.Relay, error) {
	var next contact.Relay
	switch cfg.Relay {
	case config.RelayNone:
		return nil, nil
	case config.RelaySMTP:
		r, err := contact.NewSMTPRelay(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("configuring smtp relay: %w", err)
		}
		next = r
	default:
		next = contact.NewHTTPRelay(cfg.Endpoint, 0)
	}
	slog.Debug("contact relay configured", "relay", cfg.Relay)
	return inbox.NewRecordingRelay(next, repo, cfg.Relay), nil
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
