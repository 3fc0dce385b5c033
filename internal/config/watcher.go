package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/logging"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce delays reloads until events stop for this long.
	Debounce time.Duration

	// Load reloads the configuration. Defaults to Load(path).
	Load func() (*Config, error)

	Logger pslog.Logger
}

// Watcher reloads a configuration file when it changes on disk.
//
// The parent directory is watched so that editors that save by renaming a
// temporary file are noticed. Invalid configurations are logged and skipped;
// the handler only sees configurations that loaded and validated.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	load     func() (*Config, error)
	log      pslog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	handler func(*Config)
	closed  bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, opts WatcherOptions) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: opts.Debounce,
		load:     opts.Load,
		log:      logging.WithComponent(opts.Logger, "config"),
		closeCh:  make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.load == nil {
		w.load = func() (*Config, error) { return Load(abs) }
	}
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins delivering reloaded configurations to handler.
func (w *Watcher) Start(handler func(*Config)) {
	w.mu.Lock()
	w.handler = handler
	w.mu.Unlock()

	w.wg.Add(1)
	go w.processLoop()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.load()
	if err != nil {
		var verr ValidationErrors
		if errors.As(err, &verr) {
			w.log.Warn("config rejected", "path", w.path, "err", err)
		} else {
			w.log.Warn("config reload failed", "path", w.path, "err", err)
		}
		return
	}

	w.mu.Lock()
	handler := w.handler
	closed := w.closed
	w.mu.Unlock()
	if closed || handler == nil {
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	handler(cfg)
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.closeCh)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
