package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Infineon/mtb-manifest-checker/pkg/assetcache"
	"github.com/Infineon/mtb-manifest-checker/pkg/config"
	"github.com/Infineon/mtb-manifest-checker/pkg/gitref"
	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/manifest"
	"github.com/Infineon/mtb-manifest-checker/pkg/remote"
)

// Constructors swapped out by tests.
var (
	newStrategies = gitref.NewStrategies
	newFetcher    = func(cfg *config.Config) remote.HTTPFetcher {
		return remote.NewRealHTTPFetcher(remote.NewHTTPClient(cfg.HTTP.Timeout), cfg.HTTP.UserAgent)
	}
)

// environment is everything one validation run needs: settings, the session
// and its concrete collaborators (kept for reporting).
type environment struct {
	cfg        *config.Config
	session    *manifest.Session
	resolver   *gitref.Resolver
	checker    *remote.Checker
	reportPath string
	started    time.Time
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(config.Options{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", logger.String("file", cfg.File))
	}
	return cfg, nil
}

// newEnvironment loads configuration, seeds the asset cache from disk and
// wires the checkers for the configured git backend.
func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	scratch := gitref.NewScratch(cfg.ScratchDir)
	lister, prober, err := newStrategies(cfg.Git.Backend, cfg.Git.Executable, scratch)
	if err != nil {
		return nil, err
	}

	assets := assetcache.New()
	if err := assets.Load(cfg.AssetCache); err != nil {
		return nil, fmt.Errorf("failed to seed asset cache: %w", err)
	}
	logger.Debug("asset cache seeded", logger.String("path", cfg.AssetCache), logger.Int("entries", assets.Len()))

	resolver := gitref.NewResolver(lister, prober)
	checker := remote.NewChecker(newFetcher(cfg))

	session := manifest.NewSession(assets, resolver, checker)
	session.CachePath = cfg.AssetCache

	reportPath, _ := cmd.Flags().GetString("report")

	return &environment{
		cfg:        cfg,
		session:    session,
		resolver:   resolver,
		checker:    checker,
		reportPath: reportPath,
		started:    time.Now(),
	}, nil
}

// finish persists the asset cache and writes the session report. It runs
// after every validation, failed or not.
func (e *environment) finish() error {
	logger.Debug("session finished",
		logger.Int("manifests", len(e.session.Records())),
		logger.Int("assets", e.session.Assets.Len()),
		logger.Duration("elapsed", time.Since(e.started)))
	if err := e.session.Assets.Save(e.cfg.AssetCache); err != nil {
		return fmt.Errorf("failed to save asset cache: %w", err)
	}
	if e.reportPath != "" {
		if err := writeReport(e.reportPath, e.report()); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("session report written to %s", e.reportPath))
	}
	return nil
}
