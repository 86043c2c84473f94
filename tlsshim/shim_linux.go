// Package tlsshim intercepts glibc's TLS-destructor registration hook so
// that destructors registered by a plugin which has since been dlclose'd
// never fire against unmapped memory. Importing this package for its side
// effect (the cgo symbol it injects) is the only thing callers need to do -
// nothing here is meant to be called directly from Go, aside from
// TrackPluginPath/UntrackPluginPath around a plugin's load window.
//
// The underlying problem: glibc routes __cxa_thread_local_atexit through
// __cxa_thread_atexit_impl, which a dynamically loaded .so can register
// callbacks with. If that .so is later unloaded but the registering thread
// is still alive, thread exit invokes a destructor pointing into unmapped
// memory - a crash that has nothing to do with the plugin's own logic.
// Defining __cxa_thread_atexit_impl ourselves, ahead of glibc's definition
// being linked, shadows it: registrations attributed to a currently-tracked
// plugin's shared object are dropped, everything else (the host binary,
// libc, and any non-plugin library) is forwarded to the genuine
// implementation via dlsym(RTLD_NEXT, ...), so legitimate thread-exit
// cleanup outside the plugin boundary still runs.
package tlsshim

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stddef.h>

typedef int (*cxa_dtor_fn)(void *);
typedef int (*real_thread_atexit_fn)(cxa_dtor_fn, void *, void *);

extern int goTlsShimThreadAtexit(cxa_dtor_fn func, void *obj, void *dso_symbol);

int __cxa_thread_atexit_impl(cxa_dtor_fn func, void *obj, void *dso_symbol) {
	return goTlsShimThreadAtexit(func, obj, dso_symbol);
}

// tlsshim_lookup_real resolves the genuine __cxa_thread_atexit_impl that
// would have been linked had this package not shadowed it. Called at most
// once, from a sync.Once in Go.
static void *tlsshim_lookup_real(void) {
	return dlsym(RTLD_NEXT, "__cxa_thread_atexit_impl");
}

// tlsshim_call_real invokes the looked-up real implementation with the
// original arguments.
static int tlsshim_call_real(void *real, cxa_dtor_fn func, void *obj, void *dso_symbol) {
	return ((real_thread_atexit_fn)real)(func, obj, dso_symbol);
}

// tlsshim_dso_path resolves which shared object addr belongs to, via
// dladdr. Returns NULL if addr is NULL or unresolvable.
static const char *tlsshim_dso_path(void *addr) {
	Dl_info info;
	if (addr == NULL) {
		return NULL;
	}
	if (dladdr(addr, &info) == 0 || info.dli_fname == NULL) {
		return NULL;
	}
	return info.dli_fname;
}
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// suppressedCount tracks how many TLS-destructor registrations have been
// swallowed since process start, for diagnostics (hostloop includes it in
// the warning it logs for each swallowed registration).
var suppressedCount atomic.Uint64

// onSuppressed, if set via SetSuppressedHook, is invoked (outside of any
// lock) each time a registration is swallowed - hostloop uses this to emit
// a structured log line without this package needing to know about logiface.
var onSuppressed atomic.Pointer[func()]

// SuppressedCount reports how many registrations goTlsShimThreadAtexit has
// swallowed.
func SuppressedCount() uint64 {
	return suppressedCount.Load()
}

// SetSuppressedHook installs fn to run every time a registration is
// swallowed. Pass nil to clear it.
func SetSuppressedHook(fn func()) {
	if fn == nil {
		onSuppressed.Store(nil)
		return
	}
	onSuppressed.Store(&fn)
}

var (
	realOnce sync.Once
	realFn   unsafe.Pointer // looked-up real __cxa_thread_atexit_impl, or nil if absent
)

func realThreadAtexit() unsafe.Pointer {
	realOnce.Do(func() {
		realFn = C.tlsshim_lookup_real()
	})
	return realFn
}

// trackedPaths holds the scratch paths of plugins currently loaded, keyed
// by path, so registrations from those DSOs are swallowed rather than
// forwarded - the exact window in which an unload could later invalidate
// the registered destructor's memory.
var trackedPaths sync.Map // map[string]struct{}

// TrackPluginPath marks path as a currently-loaded plugin's shared object.
// Call this right after a successful dlopen, before the plugin's load
// export runs, so any TLS destructor it registers on the way in is
// swallowed rather than forwarded.
func TrackPluginPath(path string) {
	trackedPaths.Store(path, struct{}{})
}

// UntrackPluginPath reverses TrackPluginPath, once a plugin generation is
// closed and its destructors (if any survived to this point) are moot.
func UntrackPluginPath(path string) {
	trackedPaths.Delete(path)
}

func isTrackedPath(path string) bool {
	_, ok := trackedPaths.Load(path)
	return ok
}

//export goTlsShimThreadAtexit
func goTlsShimThreadAtexit(func_ C.cxa_dtor_fn, obj unsafe.Pointer, dsoSymbol unsafe.Pointer) C.int {
	real := realThreadAtexit()

	if real != nil {
		cPath := C.tlsshim_dso_path(dsoSymbol)
		if cPath != nil && !isTrackedPath(C.GoString(cPath)) {
			return C.tlsshim_call_real(real, func_, obj, dsoSymbol)
		}
	}

	// Either there's no real implementation to forward to, the caller is
	// unresolvable (nil dso_symbol, as the reference's own callers may
	// pass), or it belongs to a plugin we're currently tracking - swallow
	// the registration rather than risk a destructor firing into unmapped
	// memory after the plugin is dlclose'd.
	suppressedCount.Add(1)
	if hook := onSuppressed.Load(); hook != nil {
		(*hook)()
	}
	return 0
}
