// Package pluginhost implements the copy-and-load reload protocol for
// native plugins: watch a source .so/.dylib by mtime, copy it into a
// private scratch directory under a versioned name, open the copy, run the
// unload/load lifecycle transition, and only then retire the previous
// generation.
package pluginhost

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/google/renameio/v2"

	"github.com/joeycumines/corehost/dynlib"
	"github.com/joeycumines/corehost/tlsshim"
)

const (
	loadSymbol   = "load"
	updateSymbol = "update"
	unloadSymbol = "unload"
)

// Check reports the outcome of a Plugin.Check call.
type Check int

const (
	// Unchanged means no newer file was found on disk; no lifecycle
	// methods were invoked.
	Unchanged Check = iota
	// FoundNewVersion means a newer file was detected, copied, and loaded
	// (unloading the previous generation first, if any).
	FoundNewVersion
)

func (c Check) String() string {
	if c == FoundNewVersion {
		return "FoundNewVersion"
	}
	return "Unchanged"
}

// Plugin watches one source file, and presents a versioned, hot-reloadable
// handle to the loaded shared object. T is never stored by Plugin itself -
// it's supplied by the caller to every Check/CallUpdate, letting one Plugin
// value describe the lifecycle of arbitrarily many logical state instances
// over time, matching the reference's check(&mut self, state: &mut T)
// signature.
type Plugin[T any] struct {
	path          string
	name          string
	scratchDir    string
	checkInterval uint64

	lib     *dynlib.Library
	libPath string
	modTime time.Time
	version uint64

	updates      uint64
	lastReloaded uint64
}

// Open watches path, using name for both diagnostics and the scratch-file
// naming convention, checking for updates at most once every checkInterval
// calls to CallUpdate. Check must still be called at least once to perform
// the initial load.
func Open(path, name string, checkInterval uint64) (*Plugin[any], error) {
	return OpenTyped[any](path, name, checkInterval)
}

// OpenTyped is Open, parameterized explicitly over the plugin's state type.
func OpenTyped[T any](path, name string, checkInterval uint64) (*Plugin[T], error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataIO, err)
	}
	scratchDir, err := os.MkdirTemp("", "pluginhost-"+name+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempDirIO, err)
	}
	return &Plugin[T]{
		path:          path,
		name:          name,
		scratchDir:    scratchDir,
		checkInterval: checkInterval,
	}, nil
}

// Name returns the plugin's logical name.
func (p *Plugin[T]) Name() string { return p.name }

// Version returns how many times this Plugin has successfully loaded a new
// generation.
func (p *Plugin[T]) Version() uint64 { return p.version }

// shouldCheck gates mtime polling/reload to every checkInterval updates,
// forcing a check on the very first call (updates == 0).
func (p *Plugin[T]) shouldCheck() bool {
	return p.updates == 0 ||
		(p.updates > 0 &&
			p.checkInterval > 0 &&
			p.updates%p.checkInterval == 0 &&
			p.lastReloaded >= p.checkInterval)
}

// Check polls the source file's mtime and, if changed (or on the very
// first call), copies it into the scratch directory under a versioned
// name, opens the copy, unloads the previous generation (if any), and
// loads the new one.
func (p *Plugin[T]) Check(state *T) (Check, error) {
	if !p.shouldCheck() {
		return Unchanged, nil
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return Unchanged, fmt.Errorf("%w: %v", ErrMetadataIO, err)
	}
	modTime := info.ModTime()
	if modTime.Equal(p.modTime) {
		return Unchanged, nil
	}
	p.modTime = modTime

	stem := filepath.Base(p.path)
	if ext := filepath.Ext(stem); ext != "" {
		stem = stem[:len(stem)-len(ext)]
	}
	scratchPath := filepath.Join(p.scratchDir, fmt.Sprintf("%s_%d.plugin", stem, p.version))

	data, err := os.ReadFile(p.path)
	if err != nil {
		return Unchanged, fmt.Errorf("%w: %v", ErrCopyFile, err)
	}
	if err := renameio.WriteFile(scratchPath, data, 0o755); err != nil {
		return Unchanged, fmt.Errorf("%w: %v", ErrCopyFile, err)
	}

	lib, err := dynlib.Open(scratchPath)
	if err != nil {
		return Unchanged, fmt.Errorf("%w: %v", ErrOnOpen, err)
	}
	tlsshim.TrackPluginPath(scratchPath)

	if p.lib != nil {
		if err := p.callUnload(state); err != nil {
			tlsshim.UntrackPluginPath(scratchPath)
			_ = lib.Close()
			return Unchanged, err
		}
		if err := p.lib.Close(); err != nil {
			tlsshim.UntrackPluginPath(scratchPath)
			_ = lib.Close()
			return Unchanged, fmt.Errorf("%w: %v", ErrOnClose, err)
		}
		tlsshim.UntrackPluginPath(p.libPath)
	}

	p.lib = lib
	p.libPath = scratchPath
	p.version++
	if err := p.callLoad(state); err != nil {
		return Unchanged, err
	}
	p.lastReloaded = 0
	recordReload(p.name, p.version)

	return FoundNewVersion, nil
}

// CallUpdate invokes the loaded library's "update" lifecycle export,
// passing state and the elapsed time since the previous update, and
// returns how long the call took.
func (p *Plugin[T]) CallUpdate(state *T, deltaSeconds float64) (time.Duration, error) {
	if p.lib == nil {
		return 0, ErrUpdateNotLoaded
	}
	start := time.Now()

	sym, err := p.lib.Sym(updateSymbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMethodNotFound, updateSymbol, err)
	}
	callUpdate(sym, unsafe.Pointer(state), deltaSeconds)

	p.updates++
	p.lastReloaded++
	recordUpdate(p.name, p.lastReloaded)

	if p.shouldCheck() {
		reportMappedGenerations(p.name)
	}

	return time.Since(start), nil
}

func (p *Plugin[T]) callLoad(state *T) error {
	sym, err := p.lib.Sym(loadSymbol)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMethodNotFound, loadSymbol, err)
	}
	callLoad(sym, unsafe.Pointer(state))
	return nil
}

func (p *Plugin[T]) callUnload(state *T) error {
	sym, err := p.lib.Sym(unloadSymbol)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMethodNotFound, unloadSymbol, err)
	}
	callUnload(sym, unsafe.Pointer(state))
	return nil
}

// Close unloads the currently loaded generation (if any) and removes the
// scratch directory. It does not invoke the "unload" lifecycle export.
//
// A dlclose failure leaves the process with a shared object the OS could
// not unmap - state the reference's Drop impl treats as unrecoverable, so
// Close panics rather than returning the error. Scratch-directory cleanup
// failure is reported normally; a leftover temp dir is not.
func (p *Plugin[T]) Close() error {
	if p.lib != nil {
		if err := p.lib.Close(); err != nil {
			panic(fmt.Errorf("%w: %v", ErrOnClose, err))
		}
		tlsshim.UntrackPluginPath(p.libPath)
		p.lib = nil
	}
	return os.RemoveAll(p.scratchDir)
}
