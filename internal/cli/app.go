package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dleifnesor/PAW/internal/assist"
	"github.com/Dleifnesor/PAW/internal/catalog"
	"github.com/Dleifnesor/PAW/internal/config"
	"github.com/Dleifnesor/PAW/internal/history"
	"github.com/Dleifnesor/PAW/internal/logging"
	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/render"
	"github.com/Dleifnesor/PAW/internal/resolver"
	"github.com/Dleifnesor/PAW/internal/store"
)

// app bundles what a single command invocation needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.FileStore
	out    render.Renderer
}

func newApp(cmd *cobra.Command, opts *Options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	st := store.New(cfg.Registry.Path, store.Options{
		LockTimeout: cfg.Registry.LockTimeout,
		Retry:       store.DefaultRetryPolicy(cfg.Registry.SaveRetries),
		Logger:      logging.Named(logger, "store"),
	})
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		out:    render.New(cfg.Output.Renderer, cfg.Output.Theme, cmd.OutOrStdout()),
	}, nil
}

// registry loads the registry for read-only commands, seeding a missing file
// when configured. A corrupt file is reported and treated as empty.
func (a *app) registry(ctx context.Context) (*registry.Registry, error) {
	reg, err := catalog.Open(ctx, a.store, a.cfg.Registry.SeedOnEmpty)
	if err == nil {
		return reg, nil
	}
	var corrupt *store.CorruptStoreError
	if errors.As(err, &corrupt) {
		a.logger.Warn("registry unreadable", zap.Error(err))
		_ = a.out.Notice(render.LevelWarn, fmt.Sprintf("%v; using an empty registry (run 'paw tools reset --seed' to recover)", err))
		return registry.New(), nil
	}
	return nil, err
}

func (a *app) service(reg *registry.Registry) *assist.Service {
	w := a.cfg.Resolver.Weights
	return assist.New(reg,
		assist.WithTopK(a.cfg.Resolver.TopK),
		assist.WithWeights(resolver.Weights{Name: w.Name, Description: w.Description, Category: w.Category}),
	)
}

// history returns the command log, or nil when history is disabled.
func (a *app) history() *history.Log {
	if !a.cfg.History.Enabled {
		return nil
	}
	return history.Open(a.cfg.History.Path)
}

func (a *app) close() {
	_ = a.logger.Sync()
}
