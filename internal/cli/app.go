package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lazypower/halflife/internal/analyzer"
	"github.com/lazypower/halflife/internal/config"
	"github.com/lazypower/halflife/internal/logging"
	"github.com/lazypower/halflife/internal/store"
	"github.com/lazypower/halflife/internal/tracker"
)

// app is everything a command needs, opened from config and flags.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	db      *store.DB
	tracker *tracker.Tracker
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if p := os.Getenv("HALFLIFE_CONFIG"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// openApp loads config, opens the database and builds the tracker. quiet
// commands log warnings only unless --verbose is set.
func openApp(quiet bool) (*app, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if quiet && !verbose {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	path = dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	if path == "" {
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	t, err := tracker.New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}
	t.SetLocation(loc)
	t.SetAnalyzer(newAnalyzer(cfg, logger))

	return &app{cfg: cfg, logger: logger, db: db, tracker: t}, nil
}

func (a *app) Close() {
	a.tracker.Stop()
	a.db.Close()
	a.logger.Sync()
}

// newAnalyzer wraps the configured provider. A missing key or disabled
// provider leaves scans on the fallback estimate.
func newAnalyzer(cfg config.Config, logger *zap.Logger) *analyzer.Fallback {
	inner, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		logger.Info("image analysis unavailable", zap.Error(err))
	}
	return analyzer.WithFallback(inner, cfg.AnalyzerTimeout(), cfg.Analyzer.RequestsPerMinute, logger)
}
