package cmd

import (
	"errors"
	"fmt"
	"time"

	collectionfile "github.com/bnema/mmwall/internal/adapters/collection/file"
	"github.com/bnema/mmwall/internal/adapters/observe"
	statusadapter "github.com/bnema/mmwall/internal/adapters/render/status"
	sqliterepo "github.com/bnema/mmwall/internal/adapters/repo/sqlite"
	tomlrepo "github.com/bnema/mmwall/internal/adapters/repo/toml"
	"github.com/bnema/mmwall/internal/application"
	"github.com/bnema/mmwall/internal/config"
	"github.com/bnema/mmwall/internal/logger"
	"github.com/bnema/mmwall/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const skipWireAnnotation = "mmwall/skip-wire"

type app struct {
	settings       config.Settings
	log            zerolog.Logger
	service        *application.SlideshowService
	resultRenderer func(application.Result) (string, error)
	statusRenderer func(application.Status, statusadapter.RenderOptions) (string, error)
	ledgerRenderer func(application.LedgerStatus, statusadapter.RenderOptions) (string, error)
	poolRenderer   func(application.PoolView, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	closers        []func() error
}

func (a *app) wire(cmd *cobra.Command, configFile string) error {
	v := viper.New()
	settings, err := config.Load(v, configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(settings.LogLevel, settings.LogPretty, cmd.ErrOrStderr())

	state, err := a.wireStateRepository(v, settings)
	if err != nil {
		return err
	}

	source, err := collectionfile.NewSource(settings.CollectionPath)
	if err != nil {
		return fmt.Errorf("wire collection source: %w", err)
	}

	service, err := application.NewSlideshowService(state, source, ports.SystemClock{}, application.Options{
		Config:               settings.Selection,
		PersistRecentlyShown: settings.PersistRecentlyShown,
		Observer:             observe.NewLogger(logger.WithComponent(log, "selection"), settings.Debug),
	})
	if err != nil {
		return fmt.Errorf("wire slideshow service: %w", err)
	}

	a.settings = settings
	a.log = log
	a.service = service
	a.resultRenderer = statusadapter.RenderResult
	a.statusRenderer = statusadapter.RenderStatus
	a.ledgerRenderer = statusadapter.RenderLedger
	a.poolRenderer = statusadapter.RenderPool
	a.now = time.Now

	log.Debug().
		Str("config", settings.ConfigFile).
		Str("collection", settings.CollectionPath).
		Str("backend", settings.StateBackend).
		Str("state", settings.StatePath).
		Msg("wired")

	return nil
}

func (a *app) wireStateRepository(v *viper.Viper, settings config.Settings) (ports.StateRepository, error) {
	switch settings.StateBackend {
	case config.BackendSQLite:
		repo, err := sqliterepo.Open(settings.StatePath)
		if err != nil {
			return nil, fmt.Errorf("wire sqlite state repository: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		repo, err := tomlrepo.NewStateRepository(v)
		if err != nil {
			return nil, fmt.Errorf("wire toml state repository: %w", err)
		}
		return repo, nil
	}
}

func (a *app) close() error {
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer())
	}
	a.closers = nil
	return errors.Join(errs...)
}
