// Package dynlib wraps dlopen/dlsym/dlclose directly via cgo. It exists
// because the standard library's plugin package has no Close: once loaded,
// a .so can never be unmapped, which breaks any reload protocol built on
// "the old copy must actually go away." This is the same layer libloading
// (the reference implementation's dependency) itself wraps - dynlib just
// reaches the libc calls directly, since no Go library exposes them.
package dynlib

import "errors"

var (
	// ErrOpen is returned when dlopen fails; the message carries dlerror's
	// text.
	ErrOpen = errors.New("dynlib: open failed")

	// ErrSymbol is returned when dlsym cannot resolve a name.
	ErrSymbol = errors.New("dynlib: symbol not found")

	// ErrClose is returned when dlclose fails.
	ErrClose = errors.New("dynlib: close failed")

	// ErrClosed is returned by Sym on an already-closed Library. Close on
	// an already-closed Library is a no-op and returns nil.
	ErrClosed = errors.New("dynlib: library already closed")
)
