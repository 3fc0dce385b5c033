package app

import (
	"context"

	"github.com/dshills/winctl/internal/config"
	"github.com/dshills/winctl/internal/window"
)

// ApplyConfig applies the settings that can change at runtime: the last-view
// policy, the jump list capacity, the symbol settings, the default split
// orientation and the script timeout. A change of the symbol settings clears
// the symbol cache. Logger settings apply at startup only.
func (app *Application) ApplyConfig(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return app.Do(ctx, func(reg *window.Registry) error {
		app.applyConfig(reg, cfg)
		return nil
	})
}

// applyConfig must run on the UI loop.
func (app *Application) applyConfig(reg *window.Registry, cfg *config.Config) {
	reg.SetPolicy(cfg.Policy())
	reg.SetJumpListCapacity(cfg.JumpList.Capacity)
	if old := app.Config(); old == nil || old.Symbols != cfg.Symbols {
		// Changed symbol settings start from an empty cache.
		app.cache.Clear()
	}
	app.cache.SetMatchPolicy(cfg.MatchPolicy())
	app.cache.SetMaxFiltered(cfg.Symbols.MaxFiltered)
	app.handler.SetDefaultSplit(cfg.SplitOrientation())
	app.script.SetTimeout(cfg.Script.Timeout)

	app.cfgMu.Lock()
	app.cfg = cfg
	app.cfgMu.Unlock()
}

// onReload receives configurations from the watcher goroutine.
func (app *Application) onReload(cfg *config.Config) {
	err := app.loop.Post(func() {
		app.applyConfig(app.reg, cfg)
		app.log.Info("config reloaded",
			"lastView", cfg.Window.LastView,
			"jumplist", cfg.JumpList.Capacity,
			"match", cfg.Symbols.Match,
		)
	})
	if err != nil {
		app.log.Warn("config reload dropped", "err", err)
	}
	app.metrics.RecordReload(err != nil)
}
