// Package script runs window automation scripts in a sandboxed Lua state.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/window"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Errors for script execution.
var (
	// ErrHostClosed is returned when running a script on a closed host.
	ErrHostClosed = errors.New("script host is closed")

	// ErrTimeout is returned when a script exceeds its time budget.
	ErrTimeout = errors.New("script timeout")
)

// Options configures a Host.
type Options struct {
	// Timeout bounds each DoString/DoFile call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Output receives print() output. Defaults to io.Discard.
	Output io.Writer

	Logger pslog.Logger
}

// Host owns a Lua state with the win module installed.
//
// gopher-lua states are not goroutine-safe; the mutex serializes runs. The
// registry itself must only be touched from the window goroutine, so callers
// run scripts there (see uiloop.Loop.Do).
type Host struct {
	L   *lua.LState
	win *winModule

	mu      sync.Mutex
	timeout time.Duration
	out     io.Writer
	log     pslog.Logger
	closed  bool
}

// NewHost creates a host bound to reg.
func NewHost(reg *window.Registry, opts Options) *Host {
	h := &Host{
		timeout: opts.Timeout,
		out:     opts.Output,
		log:     logging.WithComponent(opts.Logger, "script"),
	}
	if h.timeout <= 0 {
		h.timeout = DefaultTimeout
	}
	if h.out == nil {
		h.out = io.Discard
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(h.print))

	h.L = L
	h.win = &winModule{reg: reg}
	h.win.register(L)
	return h
}

// openSafeLibraries opens the libraries without file system or process
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoString runs a chunk of Lua.
func (h *Host) DoString(ctx context.Context, code string) error {
	return h.run(ctx, "string", func() error {
		return h.L.DoString(code)
	})
}

// DoFile runs a Lua file.
func (h *Host) DoFile(ctx context.Context, path string) error {
	return h.run(ctx, path, func() error {
		return h.L.DoFile(path)
	})
}

func (h *Host) run(ctx context.Context, name string, fn func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	h.L.SetContext(ctx)
	h.win.ctx = ctx
	defer func() {
		h.L.RemoveContext()
		h.win.ctx = nil
	}()

	start := time.Now()
	err := doWithRecovery(fn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s after %s", ErrTimeout, name, h.timeout)
	}
	if err != nil {
		h.log.Warn("script failed", "script", name, "err", err)
		return err
	}
	h.log.Debug("script finished", "script", name, "elapsed", time.Since(start))
	return nil
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// SetTimeout changes the per-run time budget. Non-positive values restore
// DefaultTimeout.
func (h *Host) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	h.mu.Lock()
	h.timeout = d
	h.mu.Unlock()
}

// GetGlobal returns a global variable.
func (h *Host) GetGlobal(name string) lua.LValue {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return lua.LNil
	}
	return h.L.GetGlobal(name)
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.L.Close()
	h.closed = true
}

// print writes its arguments, tab-separated, to the host output.
func (h *Host) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	return 0
}
