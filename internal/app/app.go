// Package app wires the window registry and its collaborators into a running
// application and manages its lifecycle.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/command"
	"github.com/dshills/winctl/internal/config"
	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/editor"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/script"
	"github.com/dshills/winctl/internal/symbols"
	"github.com/dshills/winctl/internal/uiloop"
	"github.com/dshills/winctl/internal/window"
)

// Application is the central coordinator for all components.
//
// The registry is owned by the UI loop goroutine. Every method that touches
// window state posts to the loop and waits, so Application methods are safe
// for concurrent use.
type Application struct {
	cfgMu  sync.RWMutex
	cfg    *config.Config
	source config.Source

	log     pslog.Logger
	store   *editor.Store
	loop    *uiloop.Loop
	cache   *symbols.Cache
	cacheWt symbols.Subscription
	reg     *window.Registry
	handler *command.Handler
	script  *script.Host
	watcher *config.Watcher
	metrics *Metrics

	running atomic.Bool
	closed  atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses defaults
	// and the environment only.
	ConfigPath string

	// NoEnv ignores WINCTL_* environment overrides.
	NoEnv bool

	// Watch reloads ConfigPath when it changes on disk.
	Watch bool

	// Files are opened on start. The first replaces the current view and each
	// further file gets its own tab.
	Files []string

	// Output receives script print() output.
	Output io.Writer

	// LogOutput receives log records when Logger is nil.
	LogOutput io.Writer

	// Logger overrides the logger built from the configuration.
	Logger pslog.Logger

	// QueueSize bounds the UI loop queue.
	QueueSize int

	// OnOutline receives the re-parsed symbols of the current document after
	// it was edited. It runs on the UI loop.
	OnOutline func(id document.ID, entries []symbols.Entry)
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		done:    make(chan struct{}),
		metrics: NewMetrics(),
		source:  config.Source{NoEnv: opts.NoEnv},
	}
	if opts.ConfigPath != "" {
		app.source.Files = []string{opts.ConfigPath}
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	cfg, err := app.source.Load()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = cfg

	// 2. Logger
	app.log = app.opts.Logger
	if app.log == nil {
		logOpts := cfg.LoggingOptions()
		logOpts.Output = app.opts.LogOutput
		app.log = logging.New(logOpts)
	}

	// 3. Document store and UI loop
	app.store = editor.NewStore(app.log)
	app.loop = uiloop.New(app.opts.QueueSize, app.log)

	// 4. Symbol cache, invalidated by store edits; the current document's
	// outline is re-parsed in the background after each edit.
	app.cache = symbols.NewCache(app.store, symbols.Options{
		Match:       cfg.MatchPolicy(),
		MaxFiltered: cfg.Symbols.MaxFiltered,
		Poster:      app.loop,
		Logger:      app.log,
	})
	app.cacheWt = app.cache.Watch(app.store, app.onDocumentChange)

	// 5. Registry
	app.reg = window.New(window.Options{
		Policy:           cfg.Policy(),
		JumpListCapacity: cfg.JumpList.Capacity,
		Opener:           app.store,
		Placeholder:      app.store,
		Symbols:          app.cache,
		Logger:           app.log,
	})
	app.reg.AddListener(window.ListenerFuncs{
		OnCurrentView: func(slot *layout.ViewSlot) {
			if slot != nil {
				app.log.Debug("current view", "view", slot.ID(), "doc", slot.Document().ID())
			}
		},
	})

	// 6. Command handler and script host
	app.handler = command.NewHandler(app.reg, app.log)
	app.handler.SetDefaultSplit(cfg.SplitOrientation())
	app.script = script.NewHost(app.reg, script.Options{
		Timeout: cfg.Script.Timeout,
		Output:  app.opts.Output,
		Logger:  app.log,
	})

	// 7. Config watcher
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath, config.WatcherOptions{
			Load:   app.source.Load,
			Logger: app.log,
		})
		if err != nil {
			app.cacheWt.Unsubscribe()
			app.script.Close()
			return &InitError{Component: "config watcher", Err: err}
		}
		app.watcher = w
	}

	return nil
}

// Start launches the UI loop, opens the startup files and runs the init
// script. It returns once the application is ready for work.
func (app *Application) Start(ctx context.Context) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, app.cancel = context.WithCancel(ctx)
	app.ctx = ctx
	go func() {
		defer close(app.done)
		app.loop.Run(ctx)
	}()

	if app.watcher != nil {
		app.watcher.Start(app.onReload)
	}

	if err := app.OpenFiles(ctx, app.opts.Files...); err != nil {
		return err
	}
	if initScript := app.Config().Script.Init; initScript != "" {
		if err := app.RunScript(ctx, initScript); err != nil {
			return NewOperationError("run init script", initScript, err)
		}
	}

	app.log.Info("application started", "files", len(app.opts.Files), "watch", app.watcher != nil)
	return nil
}

// Run starts the application and blocks until ctx is cancelled or Shutdown
// is called.
func (app *Application) Run(ctx context.Context) error {
	if err := app.Start(ctx); err != nil {
		return err
	}
	<-app.done
	return nil
}

// Shutdown stops the watcher and the UI loop and releases resources. It is
// safe to call more than once.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.closed.Swap(true) {
		return nil
	}

	var errs ErrorList
	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}
	if app.cancel != nil {
		app.cancel()
	}
	app.loop.Close()

	if app.running.Load() {
		select {
		case <-app.done:
		case <-ctx.Done():
			errs.Add(ErrShutdownTimeout)
		}
	}
	app.running.Store(false)

	app.cacheWt.Unsubscribe()
	app.script.Close()

	processed, failed := app.loop.Stats()
	app.log.Info("application stopped", "processed", processed, "failed", failed)
	return errs.AsError()
}

// IsRunning reports whether Start succeeded and Shutdown has not run.
func (app *Application) IsRunning() bool {
	return app.running.Load() && !app.closed.Load()
}

// Do runs fn on the UI loop with exclusive access to the registry.
func (app *Application) Do(ctx context.Context, fn func(reg *window.Registry) error) error {
	if !app.IsRunning() {
		return ErrNotRunning
	}
	return app.loop.Do(ctx, func() error {
		return fn(app.reg)
	})
}

// Exec handles one window action.
func (app *Application) Exec(ctx context.Context, action command.Action) (command.Result, error) {
	var res command.Result
	timer := StartTimer()
	err := app.Do(ctx, func(*window.Registry) error {
		res = app.handler.HandleAction(ctx, action)
		return nil
	})
	if err != nil {
		return command.Result{}, err
	}
	app.metrics.RecordAction(timer.Elapsed(), res.IsError())
	return res, nil
}

// RunScript runs a Lua file against the registry.
func (app *Application) RunScript(ctx context.Context, path string) error {
	return app.runScript(ctx, func() error {
		return app.script.DoFile(ctx, path)
	})
}

// RunString runs a chunk of Lua against the registry.
func (app *Application) RunString(ctx context.Context, code string) error {
	return app.runScript(ctx, func() error {
		return app.script.DoString(ctx, code)
	})
}

func (app *Application) runScript(ctx context.Context, run func() error) error {
	timer := StartTimer()
	err := app.Do(ctx, func(*window.Registry) error {
		return run()
	})
	app.metrics.RecordScript(timer.Elapsed(), err != nil)
	return err
}

// OpenFiles opens paths. The first replaces the current view and the rest
// open in new tabs.
func (app *Application) OpenFiles(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return app.Do(ctx, func(reg *window.Registry) error {
		for i, p := range paths {
			id, err := editor.NormalizeID(p)
			if err != nil {
				return NewOperationError("open", p, err)
			}
			if i == 0 {
				if _, err := reg.Open(ctx, id); err != nil {
					return NewOperationError("open", p, err)
				}
				continue
			}
			doc, err := reg.Resolve(ctx, id)
			if err != nil {
				return NewOperationError("open", p, err)
			}
			if _, err := reg.OpenInNewTab(doc); err != nil {
				return NewOperationError("open", p, err)
			}
		}
		return nil
	})
}

// Snapshot returns the current window read model.
func (app *Application) Snapshot(ctx context.Context) (window.Snapshot, error) {
	var snap window.Snapshot
	err := app.Do(ctx, func(reg *window.Registry) error {
		snap = reg.Snapshot()
		return nil
	})
	return snap, err
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.cfgMu.RLock()
	defer app.cfgMu.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() pslog.Logger {
	return app.log
}

// Store returns the document store.
func (app *Application) Store() *editor.Store {
	return app.store
}

// Symbols returns the symbol cache.
func (app *Application) Symbols() *symbols.Cache {
	return app.cache
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// onDocumentChange runs on the editing goroutine after the cache dropped the
// changed document.
func (app *Application) onDocumentChange(ch symbols.Change) {
	if ch.Closed || !app.IsRunning() {
		return
	}
	err := app.loop.Post(func() {
		doc, ok := app.reg.CurrentDocument()
		if !ok || doc.ID() != ch.Document {
			return
		}
		app.cache.Refresh(app.ctx, ch.Document, "", func(entries []symbols.Entry) {
			app.log.Debug("outline refreshed", "document", ch.Document, "symbols", len(entries))
			if app.opts.OnOutline != nil {
				app.opts.OnOutline(ch.Document, entries)
			}
		})
	})
	if err != nil {
		app.log.Debug("outline refresh dropped", "document", ch.Document, "err", err)
	}
}

// shutdownTimeout bounds Close.
const shutdownTimeout = 5 * time.Second

// Close shuts the application down with a default timeout.
func (app *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Shutdown(ctx)
}
