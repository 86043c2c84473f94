//go:build linux || darwin

package dynlib

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// Library is an open shared object, opened with RTLD_NOW so missing symbols
// surface at open time rather than lazily at first call.
type Library struct {
	mu     sync.Mutex
	handle unsafe.Pointer
	path   string
}

// Open dlopens path with RTLD_NOW.
func Open(path string) (*Library, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.dlerror() // clear any pending error
	handle := C.dlopen(cPath, C.RTLD_NOW)
	if handle == nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrOpen, path, dlerrorString())
	}
	return &Library{handle: handle, path: path}, nil
}

// Sym resolves name to a function/data pointer within the library.
func (l *Library) Sym(name string) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil, ErrClosed
	}

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	C.dlerror()
	sym := C.dlsym(l.handle, cName)
	if sym == nil {
		if errStr := dlerrorString(); errStr != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrSymbol, name, errStr)
		}
	}
	return sym, nil
}

// Close dlcloses the library. Safe to call more than once; subsequent
// calls are no-ops.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil
	}
	if rc := C.dlclose(l.handle); rc != 0 {
		err := fmt.Errorf("%w: %s: %s", ErrClose, l.path, dlerrorString())
		l.handle = nil
		return err
	}
	l.handle = nil
	return nil
}

// Path returns the path this Library was opened from.
func (l *Library) Path() string { return l.path }

func dlerrorString() string {
	cErr := C.dlerror()
	if cErr == nil {
		return ""
	}
	return C.GoString(cErr)
}
